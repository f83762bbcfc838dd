package model

// Principal is the authenticated identity the portal holds in its session.
type Principal struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Role       Role   `json:"role"`
	IsVerified bool   `json:"is_verified"`
}

// IsApplicant reports whether p holds the applicant role. Nil-safe.
func (p *Principal) IsApplicant() bool {
	return p != nil && p.Role.Name.IsApplicant()
}

// IsStaff reports whether p holds a staff role. Nil-safe.
func (p *Principal) IsStaff() bool {
	return p != nil && p.Role.Name.IsStaff()
}

// HasRole reports whether p holds exactly role. Nil-safe.
func (p *Principal) HasRole(role RoleName) bool {
	return p != nil && p.Role.Name == role
}
