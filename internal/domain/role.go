package domain

// Role names carried in the JWT "role" claim.
const (
	RoleAdmin  = "ADMIN"
	RoleWriter = "WRITER"
	RoleReader = "READER"
)

// Roles lists every role in privilege order.
var Roles = []string{RoleAdmin, RoleWriter, RoleReader}

// Role is the public description of a role returned by GET /roles.
type Role struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ValidRole reports whether name is one of Roles.
func ValidRole(name string) bool {
	for _, r := range Roles {
		if r == name {
			return true
		}
	}
	return false
}
