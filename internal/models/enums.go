package models

// LeadSource identifies where a lead came from.
type LeadSource string

const (
	SourceWebsite     LeadSource = "website"
	SourceMagicBricks LeadSource = "magicbricks"
	Source99Acres     LeadSource = "99acres"
	SourceReferral    LeadSource = "referral"
	SourceOther       LeadSource = "other"
)

// LeadSources lists every source in display order.
var LeadSources = []LeadSource{SourceWebsite, SourceMagicBricks, Source99Acres, SourceReferral, SourceOther}

// Valid reports whether s is a known source.
func (s LeadSource) Valid() bool {
	for _, v := range LeadSources {
		if s == v {
			return true
		}
	}
	return false
}

// PropertyType is the kind of real estate a lead wants or a listing offers.
type PropertyType string

const (
	PropertyApartment  PropertyType = "apartment"
	PropertyVilla      PropertyType = "villa"
	PropertyPlot       PropertyType = "plot"
	PropertyCommercial PropertyType = "commercial"
)

// PropertyTypes lists every property type in display order.
var PropertyTypes = []PropertyType{PropertyApartment, PropertyVilla, PropertyPlot, PropertyCommercial}

// Valid reports whether t is a known property type.
func (t PropertyType) Valid() bool {
	for _, v := range PropertyTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Role is the permission level of a user or agent.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleAgent     Role = "agent"
	RoleMarketing Role = "marketing"
	RoleViewer    Role = "viewer"
)

// Roles lists every role.
var Roles = []Role{RoleAdmin, RoleAgent, RoleMarketing, RoleViewer}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, v := range Roles {
		if r == v {
			return true
		}
	}
	return false
}

// ChannelType is the medium a communication went through.
type ChannelType string

const (
	ChannelWhatsApp ChannelType = "whatsapp"
	ChannelEmail    ChannelType = "email"
	ChannelSMS      ChannelType = "sms"
	ChannelCall     ChannelType = "call"
)

// ChannelTypes lists every channel.
var ChannelTypes = []ChannelType{ChannelWhatsApp, ChannelEmail, ChannelSMS, ChannelCall}

// Valid reports whether c is a known channel.
func (c ChannelType) Valid() bool {
	for _, v := range ChannelTypes {
		if c == v {
			return true
		}
	}
	return false
}

// Direction tells whether a communication was sent or received.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionInbound || d == DirectionOutbound
}

// Language is the UI language.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
)

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	return l == LanguageEnglish || l == LanguageHindi
}
