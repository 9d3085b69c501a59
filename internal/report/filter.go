// Package report derives views from a store snapshot: filtered lead lists,
// dashboard statistics, analytics breakdowns and the kanban board.
package report

import (
	"sort"
	"strings"

	"github.com/starford/propdesk/internal/models"
)

// StatusAll matches every lead status.
const StatusAll = "all"

// Filter selects leads for list views and exports.
type Filter struct {
	// Search matches name and email case-insensitively and phone as typed.
	Search string
	// Status is a lead status, "all" or empty.
	Status string
}

// Match reports whether l passes the filter.
func (f Filter) Match(l models.Lead) bool {
	if f.Status != "" && f.Status != StatusAll && string(l.Status) != f.Status {
		return false
	}
	if f.Search == "" {
		return true
	}
	term := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(l.Name), term) ||
		strings.Contains(strings.ToLower(l.Email), term) ||
		strings.Contains(l.Phone, f.Search)
}

// Apply returns the leads matching f in collection order.
func (f Filter) Apply(leads []models.Lead) []models.Lead {
	out := make([]models.Lead, 0, len(leads))
	for _, l := range leads {
		if f.Match(l) {
			out = append(out, l)
		}
	}
	return out
}

// RecentLeads returns up to n leads, newest first by creation time. Ties
// keep collection order.
func RecentLeads(leads []models.Lead, n int) []models.Lead {
	out := append([]models.Lead(nil), leads...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
