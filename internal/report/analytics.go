package report

import (
	"github.com/starford/propdesk/internal/models"
)

// Count is one bucket of a breakdown.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// AgentPerformance summarises one agent on the analytics page.
type AgentPerformance struct {
	AgentID        string `json:"agent_id"`
	Name           string `json:"name"`
	IsActive       bool   `json:"is_active"`
	LeadsAssigned  int    `json:"leads_assigned"`
	Conversions    int    `json:"conversions"`
	ConversionRate int    `json:"conversion_rate"`
	// CurrentLeads counts leads whose AssignedAgent is this agent. It is
	// reported next to the stored counters, which it does not update.
	CurrentLeads int `json:"current_leads"`
}

// Analytics is the analytics page payload.
type Analytics struct {
	BySource       []Count            `json:"by_source"`
	ByPropertyType []Count            `json:"by_property_type"`
	ByStatus       []Count            `json:"by_status"`
	Agents         []AgentPerformance `json:"agents"`
	// Unassigned counts leads without an agent or pointing at an agent that
	// no longer exists.
	Unassigned int `json:"unassigned"`
}

// Analyze builds the analytics breakdowns. Buckets follow enum order and
// include zero counts; values outside the enums are appended at the end.
func Analyze(leads []models.Lead, agents []models.Agent) Analytics {
	a := Analytics{
		BySource:       countBy(leads, models.LeadSources, func(l models.Lead) models.LeadSource { return l.Source }),
		ByPropertyType: countBy(leads, models.PropertyTypes, func(l models.Lead) models.PropertyType { return l.PropertyType }),
		ByStatus:       countBy(leads, models.LeadStatuses, func(l models.Lead) models.LeadStatus { return l.Status }),
	}

	perAgent := make(map[string]int, len(agents))
	for _, l := range leads {
		perAgent[l.AssignedAgent]++
	}

	known := 0
	a.Agents = make([]AgentPerformance, 0, len(agents))
	for _, ag := range agents {
		a.Agents = append(a.Agents, AgentPerformance{
			AgentID:        ag.ID,
			Name:           ag.Name,
			IsActive:       ag.IsActive,
			LeadsAssigned:  ag.LeadsAssigned,
			Conversions:    ag.Conversions,
			ConversionRate: percent(ag.Conversions, ag.LeadsAssigned),
			CurrentLeads:   perAgent[ag.ID],
		})
		known += perAgent[ag.ID]
	}
	a.Unassigned = len(leads) - known
	return a
}

func countBy[K ~string](leads []models.Lead, order []K, key func(models.Lead) K) []Count {
	counts := make(map[K]int, len(order))
	var extra []K
	for _, l := range leads {
		k := key(l)
		if _, seen := counts[k]; !seen && !contains(order, k) {
			extra = append(extra, k)
		}
		counts[k]++
	}
	out := make([]Count, 0, len(order)+len(extra))
	for _, k := range append(append([]K(nil), order...), extra...) {
		out = append(out, Count{Key: string(k), Count: counts[k]})
	}
	return out
}

func contains[K comparable](list []K, v K) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
