// Package messaging implements the outbound message composer. Nothing is
// delivered: a send waits a short cosmetic delay and records the message
// in the lead's communication history.
package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/propdesk/internal/apperr"
	"github.com/starford/propdesk/internal/models"
)

// DefaultDelay is the simulated send latency.
const DefaultDelay = time.Second

// Recorder appends communications to a lead. *store.Store satisfies it.
type Recorder interface {
	AddCommunication(leadID string, c models.Communication) (models.Lead, bool)
}

// Composer sends messages to leads.
type Composer struct {
	rec    Recorder
	delay  time.Duration
	logger *slog.Logger
}

// NewComposer creates a composer. A negative delay is treated as zero.
func NewComposer(rec Recorder, delay time.Duration, logger *slog.Logger) *Composer {
	if delay < 0 {
		delay = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{rec: rec, delay: delay, logger: logger}
}

// Channels lists the channel types the composer can send on.
var Channels = []models.ChannelType{models.ChannelWhatsApp, models.ChannelEmail, models.ChannelSMS}

// Send records an outbound message to leadID after the configured delay.
// It returns the communication as stored. The message is trimmed; empty
// messages and channels outside Channels are rejected with
// apperr.ErrInvalidInput. An unknown lead yields apperr.ErrNotFound.
func (c *Composer) Send(ctx context.Context, leadID string, channel models.ChannelType, message string) (models.Communication, error) {
	message = strings.TrimSpace(message)
	if leadID == "" || message == "" {
		return models.Communication{}, fmt.Errorf("messaging: lead and message are required: %w", apperr.ErrInvalidInput)
	}
	if !sendable(channel) {
		return models.Communication{}, fmt.Errorf("messaging: cannot send on %q: %w", channel, apperr.ErrInvalidInput)
	}

	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return models.Communication{}, ctx.Err()
		case <-timer.C:
		}
	}

	lead, ok := c.rec.AddCommunication(leadID, models.Communication{
		Type:      channel,
		Message:   message,
		Direction: models.DirectionOutbound,
	})
	if !ok {
		return models.Communication{}, fmt.Errorf("messaging: lead %s: %w", leadID, apperr.ErrNotFound)
	}
	sent := lead.CommunicationHistory[len(lead.CommunicationHistory)-1]
	c.logger.Info("message recorded",
		slog.String("lead_id", leadID),
		slog.String("channel", string(channel)),
		slog.String("communication_id", sent.ID))
	return sent, nil
}

func sendable(ch models.ChannelType) bool {
	for _, c := range Channels {
		if c == ch {
			return true
		}
	}
	return false
}
