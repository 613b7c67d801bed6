package model

const (
	RoleAdmin = "admin"
	RoleStaff = "funcionario"
)

// Principal is the authenticated staff member performing a request.
type Principal struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}
