package api

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/propdesk/internal/index"
	"github.com/starford/propdesk/internal/messaging"
	"github.com/starford/propdesk/internal/models"
	"github.com/starford/propdesk/internal/report"
	"github.com/starford/propdesk/internal/store"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// oneOf accepts empty values and the listed enum members.
func oneOf[T any](values []T) validation.Rule {
	elems := make([]any, len(values))
	for i, v := range values {
		elems[i] = v
	}
	return validation.In(elems...).Error("must be one of the allowed values")
}

// CreateLeadRequest is the request body for creating a lead.
type CreateLeadRequest struct {
	Name          string              `json:"name" example:"Priya Sharma" validate:"required"`
	Email         string              `json:"email" example:"priya@example.com" validate:"required"`
	Phone         string              `json:"phone" example:"+91 9876543210" validate:"required"`
	Source        models.LeadSource   `json:"source" example:"website"`
	Status        models.LeadStatus   `json:"status" example:"new"`
	Budget        float64             `json:"budget" example:"5000000"`
	PropertyType  models.PropertyType `json:"property_type" example:"apartment"`
	Location      string              `json:"location" example:"Gurgaon, Sector 45" validate:"required"`
	AssignedAgent string              `json:"assigned_agent,omitempty" example:"agent-1"`
	Notes         string              `json:"notes"`
}

// Validate checks the same fields the lead form requires.
func (r CreateLeadRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Email, validation.Required, validation.Match(emailRe)),
		validation.Field(&r.Phone, validation.Required),
		validation.Field(&r.Location, validation.Required),
		validation.Field(&r.Budget, validation.Min(0.0)),
		validation.Field(&r.Source, oneOf(models.LeadSources)),
		validation.Field(&r.Status, oneOf(models.LeadStatuses)),
		validation.Field(&r.PropertyType, oneOf(models.PropertyTypes)),
	)
}

// Lead converts the request to a domain lead.
func (r CreateLeadRequest) Lead() models.Lead {
	return models.Lead{
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		Source:        r.Source,
		Status:        r.Status,
		Budget:        r.Budget,
		PropertyType:  r.PropertyType,
		Location:      r.Location,
		AssignedAgent: r.AssignedAgent,
		Notes:         r.Notes,
	}
}

// UpdateLeadRequest is a partial lead update. Omitted fields are kept.
type UpdateLeadRequest struct {
	store.LeadPatch
}

// Validate rejects blanked required fields and unknown enum values.
func (r UpdateLeadRequest) Validate() error {
	p := r.LeadPatch
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.NilOrNotEmpty),
		validation.Field(&p.Email, validation.NilOrNotEmpty, validation.Match(emailRe)),
		validation.Field(&p.Phone, validation.NilOrNotEmpty),
		validation.Field(&p.Location, validation.NilOrNotEmpty),
		validation.Field(&p.Budget, validation.Min(0.0)),
		validation.Field(&p.Source, validation.NilOrNotEmpty, oneOf(models.LeadSources)),
		validation.Field(&p.Status, validation.NilOrNotEmpty, oneOf(models.LeadStatuses)),
		validation.Field(&p.PropertyType, validation.NilOrNotEmpty, oneOf(models.PropertyTypes)),
	)
}

// CreateCommunicationRequest logs a communication against a lead.
type CreateCommunicationRequest struct {
	Type      models.ChannelType `json:"type" example:"call" validate:"required"`
	Message   string             `json:"message" example:"Discussed site visit" validate:"required"`
	Direction models.Direction   `json:"direction" example:"inbound"`
	Timestamp *time.Time         `json:"timestamp,omitempty"`
}

// Validate checks the communication fields.
func (r CreateCommunicationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required, oneOf(models.ChannelTypes)),
		validation.Field(&r.Message, validation.Required),
		validation.Field(&r.Direction, oneOf([]models.Direction{models.DirectionInbound, models.DirectionOutbound})),
	)
}

// Communication converts the request to a domain communication.
func (r CreateCommunicationRequest) Communication() models.Communication {
	c := models.Communication{Type: r.Type, Message: r.Message, Direction: r.Direction}
	if r.Timestamp != nil {
		c.Timestamp = *r.Timestamp
	}
	return c
}

// SendMessageRequest is the body of the message composer.
type SendMessageRequest struct {
	Channel models.ChannelType `json:"channel" example:"whatsapp" validate:"required"`
	Message string             `json:"message" example:"Hi! Sharing the brochure." validate:"required"`
}

// Validate checks the composer fields. Channel support is enforced by the
// composer itself.
func (r SendMessageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Channel, validation.Required),
		validation.Field(&r.Message, validation.Required),
	)
}

// CreateAgentRequest is the request body for creating an agent.
type CreateAgentRequest struct {
	Name          string      `json:"name" example:"Amit Verma" validate:"required"`
	Email         string      `json:"email" example:"amit@realestate.com" validate:"required"`
	Phone         string      `json:"phone" example:"+91 9876543220" validate:"required"`
	Role          models.Role `json:"role" example:"agent"`
	Avatar        string      `json:"avatar,omitempty"`
	LeadsAssigned int         `json:"leads_assigned"`
	Conversions   int         `json:"conversions"`
	IsActive      *bool       `json:"is_active,omitempty"`
}

// Validate checks the same fields the agent form requires.
func (r CreateAgentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Email, validation.Required, validation.Match(emailRe)),
		validation.Field(&r.Phone, validation.Required),
		validation.Field(&r.Role, oneOf(models.Roles)),
		validation.Field(&r.LeadsAssigned, validation.Min(0)),
		validation.Field(&r.Conversions, validation.Min(0)),
	)
}

// Agent converts the request to a domain agent. Agents are active unless
// is_active is false.
func (r CreateAgentRequest) Agent() models.Agent {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return models.Agent{
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		Role:          r.Role,
		Avatar:        r.Avatar,
		LeadsAssigned: r.LeadsAssigned,
		Conversions:   r.Conversions,
		IsActive:      active,
	}
}

// UpdateAgentRequest is a partial agent update.
type UpdateAgentRequest struct {
	store.AgentPatch
}

// Validate rejects blanked required fields and negative counters.
func (r UpdateAgentRequest) Validate() error {
	p := r.AgentPatch
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.NilOrNotEmpty),
		validation.Field(&p.Email, validation.NilOrNotEmpty, validation.Match(emailRe)),
		validation.Field(&p.Phone, validation.NilOrNotEmpty),
		validation.Field(&p.Role, validation.NilOrNotEmpty, oneOf(models.Roles)),
		validation.Field(&p.LeadsAssigned, validation.Min(0)),
		validation.Field(&p.Conversions, validation.Min(0)),
	)
}

// CreatePropertyRequest is the request body for creating a property listing.
type CreatePropertyRequest struct {
	Title       string              `json:"title" example:"Luxury 3BHK Apartment" validate:"required"`
	Type        models.PropertyType `json:"type" example:"apartment"`
	Price       float64             `json:"price" example:"8500000"`
	Location    string              `json:"location" example:"Gurgaon, Sector 45" validate:"required"`
	Area        float64             `json:"area" example:"1650"`
	Bedrooms    *int                `json:"bedrooms,omitempty" example:"3"`
	Bathrooms   *int                `json:"bathrooms,omitempty" example:"2"`
	Images      []string            `json:"images"`
	Description string              `json:"description"`
	Features    []string            `json:"features"`
	IsActive    *bool               `json:"is_active,omitempty"`
}

// Validate checks the same fields the property form requires.
func (r CreatePropertyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Location, validation.Required),
		validation.Field(&r.Type, oneOf(models.PropertyTypes)),
		validation.Field(&r.Price, validation.Min(0.0)),
		validation.Field(&r.Area, validation.Min(0.0)),
		validation.Field(&r.Bedrooms, validation.Min(0)),
		validation.Field(&r.Bathrooms, validation.Min(0)),
	)
}

// Property converts the request to a domain property. Empty type defaults
// to apartment and listings are active unless is_active is false.
func (r CreatePropertyRequest) Property() models.Property {
	p := models.Property{
		Title:       r.Title,
		Type:        r.Type,
		Price:       r.Price,
		Location:    r.Location,
		Area:        r.Area,
		Bedrooms:    r.Bedrooms,
		Bathrooms:   r.Bathrooms,
		Images:      r.Images,
		Description: r.Description,
		Features:    r.Features,
		IsActive:    true,
	}
	if p.Type == "" {
		p.Type = models.PropertyApartment
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	return p
}

// UpdatePropertyRequest is a partial property update.
type UpdatePropertyRequest struct {
	store.PropertyPatch
}

// Validate rejects blanked required fields and negative figures.
func (r UpdatePropertyRequest) Validate() error {
	p := r.PropertyPatch
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.NilOrNotEmpty),
		validation.Field(&p.Location, validation.NilOrNotEmpty),
		validation.Field(&p.Type, validation.NilOrNotEmpty, oneOf(models.PropertyTypes)),
		validation.Field(&p.Price, validation.Min(0.0)),
		validation.Field(&p.Area, validation.Min(0.0)),
		validation.Field(&p.Bedrooms, validation.Min(0)),
		validation.Field(&p.Bathrooms, validation.Min(0)),
	)
}

// SignInRequest sets the signed-in user.
type SignInRequest struct {
	ID     string      `json:"id" example:"1"`
	Name   string      `json:"name" example:"John Doe" validate:"required"`
	Email  string      `json:"email" example:"admin@realestate.com" validate:"required"`
	Role   models.Role `json:"role" example:"admin" validate:"required"`
	Avatar string      `json:"avatar,omitempty"`
}

// Validate checks the user fields.
func (r SignInRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Email, validation.Required, validation.Match(emailRe)),
		validation.Field(&r.Role, validation.Required, oneOf(models.Roles)),
	)
}

// User converts the request to a domain user.
func (r SignInRequest) User() models.User {
	return models.User{ID: r.ID, Name: r.Name, Email: r.Email, Role: r.Role, Avatar: r.Avatar}
}

// PreferencesRequest updates UI preferences. Omitted fields are kept.
type PreferencesRequest struct {
	Language      *models.Language `json:"language,omitempty" example:"hi"`
	Notifications *bool            `json:"notifications,omitempty" example:"true"`
}

// Validate checks the language code.
func (r PreferencesRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Language, validation.NilOrNotEmpty,
			oneOf([]models.Language{models.LanguageEnglish, models.LanguageHindi})),
	)
}

// LeadListResponse wraps a filtered lead listing.
type LeadListResponse struct {
	Leads []models.Lead `json:"leads" validate:"required"`
	Total int           `json:"total" example:"5" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// BoardResponse wraps the kanban columns.
type BoardResponse struct {
	Columns []report.Column `json:"columns" validate:"required"`
}

// TemplatesResponse lists the quick message templates.
type TemplatesResponse struct {
	Templates []messaging.Template `json:"templates" validate:"required"`
}

// RecentCommunicationsResponse lists leads with recent message history.
type RecentCommunicationsResponse struct {
	Leads []report.LeadCommunications `json:"leads" validate:"required"`
}

// StatsResponse is the dashboard payload.
type StatsResponse struct {
	report.DashboardStats
	RecentLeads []models.Lead `json:"recent_leads" validate:"required"`
}
