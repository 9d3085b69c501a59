package report

import (
	"math"

	"github.com/starford/propdesk/internal/models"
)

// DashboardStats are the headline numbers on the dashboard.
type DashboardStats struct {
	TotalLeads     int     `json:"total_leads"`
	NewLeads       int     `json:"new_leads"`
	Conversions    int     `json:"conversions"`
	Revenue        float64 `json:"revenue"`
	ConversionRate int     `json:"conversion_rate"` // percent, rounded
}

// Stats computes dashboard numbers. A closed lead counts as a conversion
// and contributes its budget to revenue.
func Stats(leads []models.Lead) DashboardStats {
	st := DashboardStats{TotalLeads: len(leads)}
	for _, l := range leads {
		switch l.Status {
		case models.StatusNew:
			st.NewLeads++
		case models.StatusClosed:
			st.Conversions++
			st.Revenue += l.Budget
		}
	}
	st.ConversionRate = percent(st.Conversions, st.TotalLeads)
	return st
}

// percent returns round(part/whole*100), or 0 for an empty whole.
func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
