package auth

const (
	RoleAdmin    = "admin"
	RoleHR       = "hr"
	RoleEmployee = "employee"
)

var Roles = []string{RoleAdmin, RoleHR, RoleEmployee}

// UserContext is the already-resolved caller identity handed to domain code.
type UserContext struct {
	UserID   string
	RoleName string
	Email    string
}

func ValidRole(role string) bool {
	for _, candidate := range Roles {
		if role == candidate {
			return true
		}
	}
	return false
}
