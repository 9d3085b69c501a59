package report

import "github.com/starford/propdesk/internal/models"

// Column is one status lane of the kanban board.
type Column struct {
	Status models.LeadStatus `json:"status"`
	Leads  []models.Lead     `json:"leads"`
}

// Board groups leads into one column per status in pipeline order. Leads
// with an unknown status are left out.
func Board(leads []models.Lead) []Column {
	cols := make([]Column, len(models.LeadStatuses))
	idx := make(map[models.LeadStatus]int, len(cols))
	for i, st := range models.LeadStatuses {
		cols[i] = Column{Status: st, Leads: []models.Lead{}}
		idx[st] = i
	}
	for _, l := range leads {
		if i, ok := idx[l.Status]; ok {
			cols[i].Leads = append(cols[i].Leads, l)
		}
	}
	return cols
}
