package invite

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/docstore"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/docstore/sqlitestore"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/models"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/store"
)

type fakeMailer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeMailer) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

var when = time.Date(2024, 9, 3, 14, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*Service, *store.Stores, *fakeMailer) {
	t.Helper()
	gw, err := sqlitestore.Open(filepath.Join(t.TempDir(), "gtd.db"))
	require.NoError(t, err)
	t.Cleanup(func() { gw.Close() })
	stores := store.New(gw, nil)
	mailer := &fakeMailer{}
	svc := NewService(stores.NextActions, mailer, "gtd@example.com", zerolog.Nop())
	svc.now = func() time.Time { return when.Add(-time.Hour) }
	return svc, stores, mailer
}

func TestSendScheduledAction(t *testing.T) {
	svc, s, mailer := setup(t)
	ctx := context.Background()

	id, err := s.NextActions.Create(ctx, "u1", models.NextAction{
		Title:             "Dentist",
		Status:            models.ActionScheduled,
		ScheduledDate:     models.Ptr(when),
		EstimatedDuration: models.Ptr(45),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Send(ctx, "u1", id, []string{"ada@example.com", "bob@example.com"}))
	require.Len(t, mailer.sent, 2)

	var buf bytes.Buffer
	_, err = mailer.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "ada@example.com")
	assert.Contains(t, buf.String(), "Scheduled: Dentist")
	assert.Contains(t, buf.String(), "text/calendar")

	a, err := s.NextActions.Get(ctx, "u1", id)
	require.NoError(t, err)
	require.NotNil(t, a.CalendarInviteSent)
	assert.True(t, *a.CalendarInviteSent)
	assert.Equal(t, "ada@example.com", *a.UserEmail)
}

func TestSendPrerequisites(t *testing.T) {
	svc, s, mailer := setup(t)
	ctx := context.Background()

	queued, err := s.NextActions.Create(ctx, "u1", models.NextAction{Title: "Not yet"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Send(ctx, "u1", queued, []string{"ada@example.com"}), ErrPrerequisite)
	assert.ErrorIs(t, svc.Send(ctx, "u1", queued, nil), ErrPrerequisite)
	assert.ErrorIs(t, svc.Send(ctx, "u1", queued, []string{"not-an-address"}), ErrPrerequisite)
	assert.ErrorIs(t, svc.Send(ctx, "u1", "missing", []string{"ada@example.com"}), docstore.ErrNotFound)
	assert.Empty(t, mailer.sent)
}

func TestSendFailureLeavesActionUntouched(t *testing.T) {
	svc, s, mailer := setup(t)
	mailer.err = errors.New("smtp down")
	ctx := context.Background()

	id, err := s.NextActions.Create(ctx, "u1", models.NextAction{
		Title: "Review", Status: models.ActionScheduled, ScheduledDate: models.Ptr(when),
	})
	require.NoError(t, err)

	assert.Error(t, svc.Send(ctx, "u1", id, []string{"ada@example.com"}))
	a, err := s.NextActions.Get(ctx, "u1", id)
	require.NoError(t, err)
	assert.Nil(t, a.CalendarInviteSent)
}

func TestCalendar(t *testing.T) {
	a := models.NextAction{
		Title:         "Budget review",
		Status:        models.ActionScheduled,
		ScheduledDate: models.Ptr(when),
		Context:       models.Ptr("office"),
	}
	a.ID = "na1"
	out := Calendar(a, "gtd@example.com", []string{"ada@example.com"}, when)
	out = strings.ReplaceAll(out, "\r\n ", "")

	assert.Contains(t, out, "METHOD:REQUEST")
	assert.Contains(t, out, "UID:na1@mygtd")
	assert.Contains(t, out, "SUMMARY:Budget review")
	assert.Contains(t, out, "DTSTART:20240903T140000Z")
	assert.Contains(t, out, "DTEND:20240903T143000Z", "default duration is 30 minutes")
	assert.Contains(t, out, "mailto:ada@example.com")
}
