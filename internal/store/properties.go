package store

import "github.com/starford/propdesk/internal/models"

func propertyID(p models.Property) string { return p.ID }

// AddProperty appends property, generating an id and creation time when
// missing.
func (s *Store) AddProperty(property models.Property) models.Property {
	s.mutate(func(next *Snapshot) (Change, bool) {
		if property.ID == "" {
			property.ID = s.ids.NewID()
		}
		if property.CreatedAt.IsZero() {
			property.CreatedAt = s.now()
		}
		if property.Images == nil {
			property.Images = []string{}
		}
		property.Features = dedupe(property.Features)
		next.Properties = appendCopy(next.Properties, property)
		return Change{Topic: TopicPropertyCreated, ID: property.ID, Notice: success("Property added successfully!")}, true
	})
	return property
}

// UpdateProperty merges patch into the property with the given id.
func (s *Store) UpdateProperty(id string, patch PropertyPatch) (models.Property, bool) {
	var updated models.Property
	ok := s.mutate(func(next *Snapshot) (Change, bool) {
		props, last, found := replaceWhere(next.Properties, id, propertyID, func(p models.Property) models.Property {
			p = patch.Apply(p)
			if patch.Features != nil {
				p.Features = dedupe(p.Features)
			}
			return p
		})
		if !found {
			return Change{}, false
		}
		next.Properties = props
		updated = last
		return Change{Topic: TopicPropertyUpdated, ID: id, Notice: success("Property updated successfully!")}, true
	})
	return updated, ok
}

// DeleteProperty removes every property with the given id.
func (s *Store) DeleteProperty(id string) int {
	var removed int
	s.mutate(func(next *Snapshot) (Change, bool) {
		next.Properties, removed = removeWhere(next.Properties, id, propertyID)
		if removed == 0 {
			return Change{}, false
		}
		return Change{Topic: TopicPropertyDeleted, ID: id, Notice: success("Property deleted successfully!")}, true
	})
	return removed
}

// ReplaceProperties swaps the whole listing inventory.
func (s *Store) ReplaceProperties(props []models.Property) {
	s.mutate(func(next *Snapshot) (Change, bool) {
		next.Properties = append([]models.Property{}, props...)
		return Change{Topic: TopicPropertiesReplaced}, true
	})
}

// dedupe drops repeated features, keeping the first occurrence.
func dedupe(features []string) []string {
	out := make([]string, 0, len(features))
	seen := make(map[string]struct{}, len(features))
	for _, f := range features {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
