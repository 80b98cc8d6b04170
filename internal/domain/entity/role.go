// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

// Role represents the principal domain a credential was issued for.
type Role string

const (
	// RoleCustomer indicates an end-customer credential.
	RoleCustomer Role = "customer"
	// RoleMerchant indicates a merchant credential.
	RoleMerchant Role = "merchant"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleMerchant:
		return true
	default:
		return false
	}
}
