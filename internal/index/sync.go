package index

import (
	"log/slog"

	"github.com/starford/propdesk/internal/models"
)

// Sync brings the index up to date with leads:
//   - new/changed leads are upserted
//   - leads no longer present are deleted from the index
//
// When the same id appears more than once the last occurrence wins.
func Sync(db LeadIndex, leads []models.Lead, logger *slog.Logger) error {
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	live := make(map[string]struct{}, len(leads))
	for _, l := range leads {
		live[l.ID] = struct{}{}

		if checksums[l.ID] == rowChecksum(l) {
			continue
		}
		if err := db.UpsertLead(l); err != nil {
			logger.Warn("sync: index failed", slog.String("lead_id", l.ID), slog.String("error", err.Error()))
			continue
		}
		checksums[l.ID] = rowChecksum(l)
		logger.Debug("sync: indexed", slog.String("lead_id", l.ID))
	}

	// Remove stale entries.
	for id := range checksums {
		if _, ok := live[id]; !ok {
			if err := db.DeleteLead(id); err != nil {
				logger.Warn("sync: delete failed", slog.String("lead_id", id), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("lead_id", id))
			}
		}
	}

	return nil
}
