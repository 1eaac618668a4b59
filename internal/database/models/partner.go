package models

import "strings"

// Contact is one person at a partner company. Every field is optional.
type Contact struct {
	Nom         string `json:"nom,omitempty"`
	Prenom      string `json:"prenom,omitempty"`
	Email       string `json:"email,omitempty"`
	Telephone   string `json:"telephone,omitempty"`
	Role        string `json:"role,omitempty"`
	Direction   string `json:"direction,omitempty"`
	Departement string `json:"departement,omitempty"`
}

// Partner is a business partner ("partenaire"). Contacts and activities are
// stored as JSON documents in the row rather than as child tables.
type Partner struct {
	Base
	NomCompagnie string    `gorm:"column:nom_compagnie;size:255;not null" json:"nomCompagnie"`
	Siren        string    `gorm:"size:9;uniqueIndex;not null" json:"siren"`
	NumeroTva    string    `gorm:"column:numero_tva;size:50;not null" json:"numeroTva"`
	Contacts     []Contact `gorm:"type:jsonb;serializer:json;not null" json:"contacts"`
	Activites    []string  `gorm:"type:jsonb;serializer:json;not null" json:"activites"`
	Adresse      *string   `gorm:"type:text" json:"adresse"`
	Active       bool      `gorm:"not null" json:"active"`
}

func (Partner) TableName() string {
	return "partenaires"
}

// NormalizeSiren strips all whitespace.
func NormalizeSiren(siren string) string {
	return strings.Join(strings.Fields(siren), "")
}

// NormalizeTva uppercases and strips all whitespace.
func NormalizeTva(tva string) string {
	return strings.ToUpper(strings.Join(strings.Fields(tva), ""))
}

// NormalizeActivities trims each activity and drops the empty ones.
func NormalizeActivities(activites []string) []string {
	out := make([]string, 0, len(activites))
	for _, a := range activites {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// Normalize trims every field.
func (c Contact) Normalize() Contact {
	return Contact{
		Nom:         strings.TrimSpace(c.Nom),
		Prenom:      strings.TrimSpace(c.Prenom),
		Email:       strings.TrimSpace(c.Email),
		Telephone:   strings.TrimSpace(c.Telephone),
		Role:        strings.TrimSpace(c.Role),
		Direction:   strings.TrimSpace(c.Direction),
		Departement: strings.TrimSpace(c.Departement),
	}
}

func NormalizeContacts(contacts []Contact) []Contact {
	out := make([]Contact, len(contacts))
	for i, c := range contacts {
		out[i] = c.Normalize()
	}
	return out
}
