package report

import "github.com/starford/propdesk/internal/models"

// LeadCommunications summarises one lead's message history.
type LeadCommunications struct {
	LeadID       string                 `json:"lead_id"`
	Name         string                 `json:"name"`
	MessageCount int                    `json:"message_count"`
	Latest       []models.Communication `json:"latest"`
}

// RecentCommunications returns the first n leads, in collection order, that
// have any history. Each entry carries the lead's last perLead messages,
// oldest first.
func RecentCommunications(leads []models.Lead, n, perLead int) []LeadCommunications {
	out := []LeadCommunications{}
	for _, l := range leads {
		if len(out) >= n {
			break
		}
		h := l.CommunicationHistory
		if len(h) == 0 {
			continue
		}
		tail := h[max(0, len(h)-max(perLead, 0)):]
		out = append(out, LeadCommunications{
			LeadID:       l.ID,
			Name:         l.Name,
			MessageCount: len(h),
			Latest:       append([]models.Communication{}, tail...),
		})
	}
	return out
}
