package models

import (
	"time"
)

// Reminder is a dated follow-up task for a corretor, optionally tied to a
// lead or a contract. The scheduler scans due reminders and turns them
// into notifications and e-mails.
type Reminder struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	LeadID      *uint      `gorm:"index" json:"lead_id"`
	ContractID  *uint      `gorm:"index" json:"contract_id"`
	Title       string     `gorm:"not null" json:"title"`
	Notes       *string    `gorm:"type:text" json:"notes"`
	DueAt       time.Time  `gorm:"not null;index" json:"due_at"`
	NotifiedAt  *time.Time `gorm:"index" json:"notified_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Associations
	User     User      `gorm:"foreignKey:UserID" json:"-"`
	Lead     *Lead     `gorm:"foreignKey:LeadID" json:"lead,omitempty"`
	Contract *Contract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`
}

// TableName specifies the table name for Reminder
func (Reminder) TableName() string {
	return "reminders"
}

// IsDue reports whether the reminder should fire at the given time.
func (r *Reminder) IsDue(now time.Time) bool {
	return r.CompletedAt == nil && r.NotifiedAt == nil && !r.DueAt.After(now)
}

// MarkNotified stamps the reminder as having fired.
func (r *Reminder) MarkNotified() {
	now := time.Now()
	r.NotifiedAt = &now
}

// MarkCompleted stamps the reminder as done.
func (r *Reminder) MarkCompleted() {
	now := time.Now()
	r.CompletedAt = &now
}
