package domain

type OrderStatus string

const (
	OrderPending  OrderStatus = "pending"
	OrderAccepted OrderStatus = "accepted"
	OrderRejected OrderStatus = "rejected"
)

// OrderRequest mirrors the API's order request record. No workspace
// creates or lists them yet.
type OrderRequest struct {
	ID        string
	ProductID string
	BuyerID   string
	Status    OrderStatus
}
