package entity

// Role is the account kind stored on masters.user_role
type Role string

const (
	RoleMaster   Role = "master"
	RoleCustomer Role = "customer"
)

func (r Role) Valid() bool {
	return r == RoleMaster || r == RoleCustomer
}

// Gender values accepted on registration
const (
	GenderMale   = "male"
	GenderFemale = "female"
)
