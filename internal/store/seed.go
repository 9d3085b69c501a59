package store

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/propdesk/internal/models"
)

//go:embed seed.yaml
var demoSeed []byte

// Seed is the initial content of a store.
type Seed struct {
	User        *models.User        `yaml:"user"`
	Leads       []models.Lead       `yaml:"leads"`
	Agents      []models.Agent      `yaml:"agents"`
	Properties  []models.Property   `yaml:"properties"`
	Preferences *models.Preferences `yaml:"preferences"`
}

// ParseSeed decodes YAML seed data. Records without timestamps are stamped
// with now.
func ParseSeed(data []byte, now time.Time) (Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("store: parse seed: %w", err)
	}
	for i := range seed.Leads {
		l := &seed.Leads[i]
		if l.CreatedAt.IsZero() {
			l.CreatedAt = now
		}
		if l.UpdatedAt.IsZero() {
			l.UpdatedAt = l.CreatedAt
		}
		if l.CommunicationHistory == nil {
			l.CommunicationHistory = []models.Communication{}
		}
	}
	for i := range seed.Properties {
		p := &seed.Properties[i]
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		if p.Images == nil {
			p.Images = []string{}
		}
		if p.Features == nil {
			p.Features = []string{}
		}
	}
	return seed, nil
}

// DemoSeed returns the bundled demo data set.
func DemoSeed(now time.Time) (Seed, error) {
	return ParseSeed(demoSeed, now)
}

func (s Seed) snapshot() *Snapshot {
	snap := &Snapshot{
		User:        s.User,
		Leads:       append([]models.Lead{}, s.Leads...),
		Agents:      append([]models.Agent{}, s.Agents...),
		Properties:  append([]models.Property{}, s.Properties...),
		Preferences: models.DefaultPreferences(),
	}
	if s.Preferences != nil {
		snap.Preferences = *s.Preferences
	}
	return snap
}
