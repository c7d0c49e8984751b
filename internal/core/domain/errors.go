package domain

import "errors"

// Local validation errors. Screens show them inline; no request is sent.
var (
	ErrRequiredFields   = errors.New("please fill all required fields")
	ErrNoSellerContext  = errors.New("missing seller user context")
	ErrImagePermission  = errors.New("permission to access gallery is required")
	ErrNotAnImage       = errors.New("picked file is not an image")
	ErrInvalidStatus    = errors.New("invalid product status")
	ErrUnknownRole      = errors.New("unknown role")
	ErrProductNotFound  = errors.New("product not found")
	ErrActionInProgress = errors.New("another action is in progress")
	ErrNoDraft          = errors.New("no product is being edited")
)
