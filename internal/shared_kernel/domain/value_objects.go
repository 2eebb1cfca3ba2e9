package domain

import "strconv"

// ID is the numeric identifier the upstream API uses for every entity.
type ID int64

func (i ID) String() string {
	return strconv.FormatInt(int64(i), 10)
}

// Role is the access level carried in the bearer token's role claim.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleOperator Role = "operator"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleOperator:
		return true
	}
	return false
}

// CanManage reports whether the role may mutate admin-managed entities.
// User administration stays admin-only.
func (r Role) CanManage() bool {
	return r == RoleAdmin || r == RoleManager
}
