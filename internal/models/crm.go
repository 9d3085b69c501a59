// Package models defines the domain types for propdesk.
package models

import "time"

// Lead is a prospective buyer tracked through the sales pipeline.
type Lead struct {
	ID            string       `json:"id" yaml:"id"`
	Name          string       `json:"name" yaml:"name"`
	Email         string       `json:"email" yaml:"email"`
	Phone         string       `json:"phone" yaml:"phone"`
	Source        LeadSource   `json:"source" yaml:"source"`
	Status        LeadStatus   `json:"status" yaml:"status"`
	Budget        float64      `json:"budget" yaml:"budget"`
	PropertyType  PropertyType `json:"property_type" yaml:"property_type"`
	Location      string       `json:"location" yaml:"location"`
	AssignedAgent string       `json:"assigned_agent,omitempty" yaml:"assigned_agent"` // agent id, not validated
	CreatedAt     time.Time    `json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" yaml:"updated_at"`
	Notes         string       `json:"notes" yaml:"notes"`

	// CommunicationHistory is append-only and in chronological order.
	CommunicationHistory []Communication `json:"communication_history" yaml:"communication_history"`
}

// Communication is a single message exchanged with a lead.
type Communication struct {
	ID        string      `json:"id" yaml:"id"`
	Type      ChannelType `json:"type" yaml:"type"`
	Message   string      `json:"message" yaml:"message"`
	Timestamp time.Time   `json:"timestamp" yaml:"timestamp"`
	Direction Direction   `json:"direction" yaml:"direction"`
}

// Agent is a member of the sales team.
//
// LeadsAssigned and Conversions are stored counters. They are not derived
// from Lead.AssignedAgent and may disagree with it.
type Agent struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	Email         string `json:"email" yaml:"email"`
	Phone         string `json:"phone" yaml:"phone"`
	Role          Role   `json:"role" yaml:"role"`
	Avatar        string `json:"avatar,omitempty" yaml:"avatar"`
	LeadsAssigned int    `json:"leads_assigned" yaml:"leads_assigned"`
	Conversions   int    `json:"conversions" yaml:"conversions"`
	IsActive      bool   `json:"is_active" yaml:"is_active"`
}

// Property is a listing in the inventory.
type Property struct {
	ID          string       `json:"id" yaml:"id"`
	Title       string       `json:"title" yaml:"title"`
	Type        PropertyType `json:"type" yaml:"type"`
	Price       float64      `json:"price" yaml:"price"`
	Location    string       `json:"location" yaml:"location"`
	Area        float64      `json:"area" yaml:"area"`
	Bedrooms    *int         `json:"bedrooms,omitempty" yaml:"bedrooms"`
	Bathrooms   *int         `json:"bathrooms,omitempty" yaml:"bathrooms"`
	Images      []string     `json:"images" yaml:"images"`
	Description string       `json:"description" yaml:"description"`
	Features    []string     `json:"features" yaml:"features"`
	IsActive    bool         `json:"is_active" yaml:"is_active"`
	CreatedAt   time.Time    `json:"created_at" yaml:"created_at"`
}

// User is the signed-in actor.
type User struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Email  string `json:"email" yaml:"email"`
	Role   Role   `json:"role" yaml:"role"`
	Avatar string `json:"avatar,omitempty" yaml:"avatar"`
}

// Preferences holds process-wide UI settings.
type Preferences struct {
	Language      Language `json:"language" yaml:"language"`
	Notifications bool     `json:"notifications" yaml:"notifications"`
}

// DefaultPreferences returns the preferences a fresh session starts with.
func DefaultPreferences() Preferences {
	return Preferences{Language: LanguageEnglish, Notifications: true}
}
