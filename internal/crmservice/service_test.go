package crmservice

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/propdesk/internal/apperr"
	"github.com/starford/propdesk/internal/index"
	"github.com/starford/propdesk/internal/messaging"
	"github.com/starford/propdesk/internal/models"
	"github.com/starford/propdesk/internal/report"
	"github.com/starford/propdesk/internal/store"
)

func newService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := index.Open(index.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := store.New(store.WithIDGenerator(&store.CounterGenerator{Prefix: "id"}))
	svc, err := New(st, db, messaging.NewComposer(st, 0, logger), logger, opts...)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func statusPtr(s models.LeadStatus) *models.LeadStatus { return &s }

func TestCreateLeadDefaults(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	l, err := svc.CreateLead(ctx, models.Lead{Name: "Priya"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, l.Status)
	assert.Equal(t, models.SourceOther, l.Source)
	assert.Equal(t, models.PropertyApartment, l.PropertyType)

	_, err = svc.CreateLead(ctx, models.Lead{Name: "  "})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestUnknownIDsMapToNotFound(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.GetLead(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.UpdateLead(ctx, "missing", store.LeadPatch{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.UpdateLeadStatus(ctx, "missing", models.StatusClosed)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteLead(ctx, "missing"), apperr.ErrNotFound)
	_, err = svc.LogCommunication(ctx, "missing", models.Communication{Type: models.ChannelCall, Message: "hi"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.SendMessage(ctx, "missing", models.ChannelEmail, "hi")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteAgent(ctx, "missing"), apperr.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteProperty(ctx, "missing"), apperr.ErrNotFound)
	_, err = svc.CurrentUser(ctx)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStatusTransitionsPermissiveByDefault(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	l, _ := svc.CreateLead(ctx, models.Lead{Name: "A", Status: models.StatusClosed})

	got, err := svc.UpdateLeadStatus(ctx, l.ID, models.StatusNew)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, got.Status)
}

func TestStrictStatusTransitions(t *testing.T) {
	svc := newService(t, WithStrictTransitions(true))
	ctx := context.Background()
	l, _ := svc.CreateLead(ctx, models.Lead{Name: "A"})

	_, err := svc.UpdateLead(ctx, l.ID, store.LeadPatch{Status: statusPtr(models.StatusScheduled)})
	require.NoError(t, err)

	_, err = svc.UpdateLead(ctx, l.ID, store.LeadPatch{Status: statusPtr(models.StatusContacted)})
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	_, err = svc.UpdateLeadStatus(ctx, l.ID, models.StatusLost)
	require.NoError(t, err)
	_, err = svc.UpdateLeadStatus(ctx, l.ID, models.StatusClosed)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	_, err = svc.UpdateLeadStatus(ctx, l.ID, "archived")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestSearchFollowsStoreChanges(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	l, _ := svc.CreateLead(ctx, models.Lead{Name: "Priya Sharma", Notes: "sea facing"})
	res, err := svc.SearchLeads(ctx, "sea", 10)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, l.ID, res[0].ID)

	_, err = svc.LogCommunication(ctx, l.ID, models.Communication{Type: models.ChannelCall, Message: "asked about parking"})
	require.NoError(t, err)
	res, _ = svc.SearchLeads(ctx, "parking", 10)
	assert.Len(t, res, 1)

	require.NoError(t, svc.DeleteLead(ctx, l.ID))
	res, _ = svc.SearchLeads(ctx, "sea", 10)
	assert.Empty(t, res)

	_, err = svc.SearchLeads(ctx, " ", 10)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestSearchIndexesSeededLeads(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := index.Open(index.MemoryDSN)
	require.NoError(t, err)
	defer db.Close()

	seed, err := store.DemoSeed(time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	st := store.New(store.WithSeed(seed))
	svc, err := New(st, db, messaging.NewComposer(st, 0, logger), logger)
	require.NoError(t, err)
	defer svc.Close()

	n, err := db.Count()
	require.NoError(t, err)
	assert.Equal(t, len(st.Snapshot().Leads), n)
}

func TestSendMessage(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	l, _ := svc.CreateLead(ctx, models.Lead{Name: "A"})

	c, err := svc.SendMessage(ctx, l.ID, models.ChannelWhatsApp, "  Hello  ")
	require.NoError(t, err)
	assert.Equal(t, "Hello", c.Message)
	assert.Equal(t, models.DirectionOutbound, c.Direction)

	got, _ := svc.GetLead(ctx, l.ID)
	require.Len(t, got.CommunicationHistory, 1)
}

func TestExportAndImportCSV(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newService(t, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	sum, err := svc.ImportCSV(strings.NewReader("Name,Status\nA,new\nB,closed\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Imported)

	name, content := svc.ExportCSV(ctx, report.Filter{Status: "closed"})
	assert.Equal(t, "leads_2024-03-01.csv", name)
	assert.Equal(t, 2, len(strings.Split(content, "\n")))
	assert.Contains(t, content, `"B"`)

	_, err = svc.ImportCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestPreferences(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	hi := models.LanguageHindi
	off := false

	p, err := svc.UpdatePreferences(ctx, &hi, &off)
	require.NoError(t, err)
	assert.Equal(t, models.Preferences{Language: models.LanguageHindi, Notifications: false}, p)

	bad := models.Language("fr")
	_, err = svc.UpdatePreferences(ctx, &bad, nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestSession(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.SignIn(ctx, models.User{ID: "u1", Name: "John Doe", Role: models.RoleAdmin})
	require.NoError(t, err)
	u, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", u.Name)

	svc.Logout(ctx)
	_, err = svc.CurrentUser(ctx)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteAgentLeavesAssignment(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	a, err := svc.CreateAgent(ctx, models.Agent{Name: "Amit"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAgent, a.Role)
	l, _ := svc.CreateLead(ctx, models.Lead{Name: "A", AssignedAgent: a.ID})

	require.NoError(t, svc.DeleteAgent(ctx, a.ID))
	got, _ := svc.GetLead(ctx, l.ID)
	assert.Equal(t, a.ID, got.AssignedAgent)
}
