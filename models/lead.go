package models

import (
	"time"

	"gorm.io/datatypes"
)

// LeadStatus is the closed set of lifecycle labels a lead can carry
type LeadStatus string

const (
	StatusContacted LeadStatus = "contacted"
	StatusResponded LeadStatus = "responded"
	StatusCompleted LeadStatus = "completed"
	StatusQuoted    LeadStatus = "quoted"
	StatusSigned    LeadStatus = "signed"
)

// DefaultLeadStatus is assigned when a lead is created without a status
const DefaultLeadStatus = StatusContacted

func (s LeadStatus) Valid() bool {
	switch s {
	case StatusContacted, StatusResponded, StatusCompleted, StatusQuoted, StatusSigned:
		return true
	}
	return false
}

// Lead represents a CRM contact with workflow position and free-form
// collected attributes. The ID is a caller-assigned business key, not a
// generated identifier.
type Lead struct {
	ID string `gorm:"primaryKey" json:"id"`

	// Defaults to true at creation when the caller omits it. No gorm
	// default tag: a default-valued bool column would swallow an explicit
	// false on insert.
	IsActive bool   `gorm:"not null" json:"is_active"`
	Origin   string `json:"origin"`

	// Assigned by the store exactly once at creation
	CreatedAt time.Time `gorm:"autoCreateTime;<-:create" json:"created_at"`

	ConversationState datatypes.JSON `json:"conversation_state"`
	CurrentStep       string         `json:"current_step"`
	CollectedData     datatypes.JSON `json:"collected_data"`
	PreviousStep      string         `json:"previous_step"`
	Name              string         `json:"name"`
	Status            *LeadStatus    `gorm:"type:varchar(32)" json:"status"`
}
