package model

import "strings"

// RoleName is the machine name of an authorization role.
// Values outside the constants below are unknown and carry no privileges.
type RoleName string

const (
	RoleApplicant        RoleName = "applicant"
	RoleAdmissionOfficer RoleName = "admission_officer"
	RoleAdmin            RoleName = "admin"
)

// StaffRoles lists the roles allowed into the staff area.
var StaffRoles = []RoleName{RoleAdmin, RoleAdmissionOfficer}

// ParseRoleName normalizes s. It does not reject unknown values; use Known for that.
func ParseRoleName(s string) RoleName {
	return RoleName(strings.ToLower(strings.TrimSpace(s)))
}

// Known reports whether r is one of the enumerated roles.
func (r RoleName) Known() bool {
	switch r {
	case RoleApplicant, RoleAdmissionOfficer, RoleAdmin:
		return true
	}
	return false
}

func (r RoleName) IsApplicant() bool { return r == RoleApplicant }

// IsStaff is true for admins and admission officers.
func (r RoleName) IsStaff() bool {
	return r == RoleAdmin || r == RoleAdmissionOfficer
}

// Role is the role reference carried by a Principal.
type Role struct {
	ID   uint     `json:"id"`
	Name RoleName `json:"role"`
}

// RoleRecord is the persisted role row.
type RoleRecord struct {
	ID   uint     `json:"id" gorm:"primaryKey"`
	Name RoleName `json:"role" gorm:"uniqueIndex;size:50;not null"`
}

// TableName pins the table name for RoleRecord.
func (RoleRecord) TableName() string { return "roles" }
