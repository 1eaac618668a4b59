package models

import "strings"

// Role is one of a fixed set of access levels.
type Role string

const (
	RoleRessource    Role = "Ressource"
	RoleGestionnaire Role = "Gestionnaire"
	RoleSuperAdmin   Role = "Super Admin"
)

// Roles lists every valid role, in ascending privilege.
var Roles = []Role{RoleRessource, RoleGestionnaire, RoleSuperAdmin}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

type User struct {
	Base
	Nom          string `gorm:"size:100;not null" json:"nom"`
	Prenom       string `gorm:"size:100;not null" json:"prenom"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Telephone    string `gorm:"size:20" json:"telephone,omitempty"`
	Role         Role   `gorm:"size:50;not null" json:"role"`
	PasswordHash string `gorm:"column:password_hash;type:text;not null" json:"-"`
	Active       bool   `gorm:"not null" json:"active"`
}

func (User) TableName() string {
	return "users"
}

// NormalizeEmail is the single place emails are case-folded; every lookup
// and every write goes through it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
