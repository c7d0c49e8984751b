package domain

import "fmt"

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

func ParseRole(s string) (Role, error) {
	r := Role(s)
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

type User struct {
	ID    int64
	Name  string
	Email string
	Role  Role
}

type Credentials struct {
	Email    string
	Password string
}

type Registration struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// Workspace is a navigation destination of the client.
type Workspace string

const (
	WorkspaceAuth   Workspace = "Auth"
	WorkspaceBuyer  Workspace = "BuyerHome"
	WorkspaceSeller Workspace = "SellerDashboard"
	WorkspaceAdmin  Workspace = "AdminDashboard"
	WorkspaceAdd    Workspace = "AddProduct"
)

// WorkspaceFor returns the home workspace of role. Unknown roles fall back
// to the workspace of the account type picked on the auth screen.
func WorkspaceFor(role, fallback Role) Workspace {
	if w, ok := roleWorkspaces[role]; ok {
		return w
	}
	if w, ok := roleWorkspaces[fallback]; ok {
		return w
	}
	return WorkspaceBuyer
}

var roleWorkspaces = map[Role]Workspace{
	RoleBuyer:  WorkspaceBuyer,
	RoleSeller: WorkspaceSeller,
	RoleAdmin:  WorkspaceAdmin,
}

// Destination is where the client navigates after a successful auth.
type Destination struct {
	Workspace Workspace
	User      User
}
