package models

import (
	"strings"
	"time"
)

// Lead represents a prospect in the sales pipeline. Leads arrive from
// manual entry, the Facebook lead-ads webhook, or inbound WhatsApp.
type Lead struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"not null" json:"name"`
	Phone        string     `gorm:"index" json:"phone"`
	Email        string     `json:"email"`
	CNPJ         *string    `gorm:"size:18" json:"cnpj"`
	Source       string     `gorm:"size:40;default:manual;index" json:"source"`
	Stage        string     `gorm:"size:40;default:novo;index" json:"stage"`
	Notes        *string    `gorm:"type:text" json:"notes"`
	AssignedToID *uint      `gorm:"index" json:"assigned_to_id"`
	ExternalID   *string    `gorm:"size:64;uniqueIndex" json:"external_id"` // provider lead id (Facebook leadgen_id)
	LastContact  *time.Time `json:"last_contact"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Associations
	AssignedTo *User      `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
	Contracts  []Contract `gorm:"foreignKey:LeadID" json:"contracts,omitempty"`
}

// TableName specifies the table name for Lead
func (Lead) TableName() string {
	return "leads"
}

// Pipeline stage constants
const (
	LeadStageNovo            = "novo"
	LeadStageEmContato       = "em_contato"
	LeadStageProposta        = "proposta_enviada"
	LeadStageFechado         = "fechado"
	LeadStagePerdido         = "perdido"
)

// Lead source constants
const (
	LeadSourceManual   = "manual"
	LeadSourceFacebook = "facebook"
	LeadSourceWhatsApp = "whatsapp"
)

// IsOpen returns true while the lead is still being worked
func (l *Lead) IsOpen() bool {
	return l.Stage != LeadStageFechado && l.Stage != LeadStagePerdido
}

// DigitsOnlyPhone strips everything but digits from the lead's phone,
// for matching against provider chat identifiers.
func (l *Lead) DigitsOnlyPhone() string {
	return DigitsOnly(l.Phone)
}

// DigitsOnly strips every non-digit rune from s.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LeadResponse is the JSON response format for leads
type LeadResponse struct {
	ID           uint       `json:"id"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email"`
	CNPJ         *string    `json:"cnpj"`
	Source       string     `json:"source"`
	Stage        string     `json:"stage"`
	Notes        *string    `json:"notes"`
	AssignedToID *uint      `json:"assigned_to_id"`
	AssignedTo   string     `json:"assigned_to"`
	LastContact  *time.Time `json:"last_contact"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ToResponse converts Lead to LeadResponse
func (l *Lead) ToResponse() LeadResponse {
	resp := LeadResponse{
		ID:           l.ID,
		Name:         l.Name,
		Phone:        l.Phone,
		Email:        l.Email,
		CNPJ:         l.CNPJ,
		Source:       l.Source,
		Stage:        l.Stage,
		Notes:        l.Notes,
		AssignedToID: l.AssignedToID,
		LastContact:  l.LastContact,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
	if l.AssignedTo != nil {
		resp.AssignedTo = l.AssignedTo.FullName
	}
	return resp
}
