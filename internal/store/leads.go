package store

import (
	"time"

	"github.com/starford/propdesk/internal/models"
)

func leadID(l models.Lead) string { return l.ID }

func lastModified(l models.Lead) time.Time {
	if l.UpdatedAt.Before(l.CreatedAt) {
		return l.CreatedAt
	}
	return l.UpdatedAt
}

// AddLead appends lead and returns the stored record. An empty id is
// generated, zero timestamps are set to now and a nil history becomes empty.
// Ids supplied by the caller are not checked for uniqueness.
func (s *Store) AddLead(lead models.Lead) models.Lead {
	s.mutate(func(next *Snapshot) (Change, bool) {
		if lead.ID == "" {
			lead.ID = s.ids.NewID()
		}
		if lead.CreatedAt.IsZero() {
			lead.CreatedAt = s.now()
		}
		if lead.UpdatedAt.IsZero() {
			lead.UpdatedAt = lead.CreatedAt
		}
		if lead.CommunicationHistory == nil {
			lead.CommunicationHistory = []models.Communication{}
		} else {
			lead.CommunicationHistory = append([]models.Communication(nil), lead.CommunicationHistory...)
		}
		next.Leads = appendCopy(next.Leads, lead)
		return Change{Topic: TopicLeadCreated, ID: lead.ID, Notice: success("Lead added successfully!")}, true
	})
	return lead
}

// UpdateLead merges patch into the lead with the given id and refreshes its
// UpdatedAt. It reports false and changes nothing when the id is unknown.
func (s *Store) UpdateLead(id string, patch LeadPatch) (models.Lead, bool) {
	var updated models.Lead
	ok := s.mutate(func(next *Snapshot) (Change, bool) {
		leads, last, found := replaceWhere(next.Leads, id, leadID, func(l models.Lead) models.Lead {
			merged := patch.Apply(l)
			merged.UpdatedAt = s.touch(lastModified(l))
			return merged
		})
		if !found {
			return Change{}, false
		}
		next.Leads = leads
		updated = last
		return Change{Topic: TopicLeadUpdated, ID: id, Notice: success("Lead updated successfully!")}, true
	})
	return updated, ok
}

// DeleteLead removes every lead with the given id and returns how many were
// removed. Agents and other leads are untouched.
func (s *Store) DeleteLead(id string) int {
	var removed int
	s.mutate(func(next *Snapshot) (Change, bool) {
		next.Leads, removed = removeWhere(next.Leads, id, leadID)
		if removed == 0 {
			return Change{}, false
		}
		return Change{Topic: TopicLeadDeleted, ID: id, Notice: success("Lead deleted successfully!")}, true
	})
	return removed
}

// AddCommunication appends c to the history of the lead with the given id.
// An empty id is generated and a zero timestamp is set to now. The lead's
// UpdatedAt is refreshed. Unknown leads are left alone and false is returned.
func (s *Store) AddCommunication(leadIDValue string, c models.Communication) (models.Lead, bool) {
	var updated models.Lead
	ok := s.mutate(func(next *Snapshot) (Change, bool) {
		if c.ID == "" {
			c.ID = s.ids.NewID()
		}
		if c.Timestamp.IsZero() {
			c.Timestamp = s.now()
		}
		leads, last, found := replaceWhere(next.Leads, leadIDValue, leadID, func(l models.Lead) models.Lead {
			l.CommunicationHistory = appendCopy(l.CommunicationHistory, c)
			l.UpdatedAt = s.touch(lastModified(l))
			return l
		})
		if !found {
			return Change{}, false
		}
		next.Leads = leads
		updated = last
		return Change{Topic: TopicCommunicationCreated, ID: leadIDValue, Notice: success("Message sent successfully!")}, true
	})
	return updated, ok
}

// ReplaceLeads swaps the whole lead collection.
func (s *Store) ReplaceLeads(leads []models.Lead) {
	s.mutate(func(next *Snapshot) (Change, bool) {
		next.Leads = append([]models.Lead{}, leads...)
		return Change{Topic: TopicLeadsReplaced}, true
	})
}
