package store

import "github.com/starford/propdesk/internal/models"

// LeadPatch is a partial lead update. Nil fields are left untouched.
// Id, timestamps and communication history cannot be patched.
type LeadPatch struct {
	Name          *string              `json:"name,omitempty"`
	Email         *string              `json:"email,omitempty"`
	Phone         *string              `json:"phone,omitempty"`
	Source        *models.LeadSource   `json:"source,omitempty"`
	Status        *models.LeadStatus   `json:"status,omitempty"`
	Budget        *float64             `json:"budget,omitempty"`
	PropertyType  *models.PropertyType `json:"property_type,omitempty"`
	Location      *string              `json:"location,omitempty"`
	AssignedAgent *string              `json:"assigned_agent,omitempty"` // "" unassigns
	Notes         *string              `json:"notes,omitempty"`
}

// Apply returns l with the patch merged over it.
func (p LeadPatch) Apply(l models.Lead) models.Lead {
	set(&l.Name, p.Name)
	set(&l.Email, p.Email)
	set(&l.Phone, p.Phone)
	set(&l.Source, p.Source)
	set(&l.Status, p.Status)
	set(&l.Budget, p.Budget)
	set(&l.PropertyType, p.PropertyType)
	set(&l.Location, p.Location)
	set(&l.AssignedAgent, p.AssignedAgent)
	set(&l.Notes, p.Notes)
	return l
}

// AgentPatch is a partial agent update.
type AgentPatch struct {
	Name          *string      `json:"name,omitempty"`
	Email         *string      `json:"email,omitempty"`
	Phone         *string      `json:"phone,omitempty"`
	Role          *models.Role `json:"role,omitempty"`
	Avatar        *string      `json:"avatar,omitempty"`
	LeadsAssigned *int         `json:"leads_assigned,omitempty"`
	Conversions   *int         `json:"conversions,omitempty"`
	IsActive      *bool        `json:"is_active,omitempty"`
}

// Apply returns a with the patch merged over it.
func (p AgentPatch) Apply(a models.Agent) models.Agent {
	set(&a.Name, p.Name)
	set(&a.Email, p.Email)
	set(&a.Phone, p.Phone)
	set(&a.Role, p.Role)
	set(&a.Avatar, p.Avatar)
	set(&a.LeadsAssigned, p.LeadsAssigned)
	set(&a.Conversions, p.Conversions)
	set(&a.IsActive, p.IsActive)
	return a
}

// PropertyPatch is a partial property update. Images and Features replace
// the whole list when present.
type PropertyPatch struct {
	Title       *string              `json:"title,omitempty"`
	Type        *models.PropertyType `json:"type,omitempty"`
	Price       *float64             `json:"price,omitempty"`
	Location    *string              `json:"location,omitempty"`
	Area        *float64             `json:"area,omitempty"`
	Bedrooms    *int                 `json:"bedrooms,omitempty"`
	Bathrooms   *int                 `json:"bathrooms,omitempty"`
	Images      []string             `json:"images,omitempty"`
	Description *string              `json:"description,omitempty"`
	Features    []string             `json:"features,omitempty"`
	IsActive    *bool                `json:"is_active,omitempty"`
}

// Apply returns p with the patch merged over it.
func (pp PropertyPatch) Apply(p models.Property) models.Property {
	set(&p.Title, pp.Title)
	set(&p.Type, pp.Type)
	set(&p.Price, pp.Price)
	set(&p.Location, pp.Location)
	set(&p.Area, pp.Area)
	if pp.Bedrooms != nil {
		v := *pp.Bedrooms
		p.Bedrooms = &v
	}
	if pp.Bathrooms != nil {
		v := *pp.Bathrooms
		p.Bathrooms = &v
	}
	if pp.Images != nil {
		p.Images = append([]string(nil), pp.Images...)
	}
	set(&p.Description, pp.Description)
	if pp.Features != nil {
		p.Features = append([]string(nil), pp.Features...)
	}
	set(&p.IsActive, pp.IsActive)
	return p
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
