// Package invite mails iCalendar invitations for scheduled next actions.
package invite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/config"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/logging"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/models"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/store"
)

// ErrPrerequisite is returned when an invite cannot be built from the
// request or the action.
var ErrPrerequisite = errors.New("calendar invite prerequisites not met")

const defaultDuration = 30 * time.Minute

// Mailer delivers messages. *gomail.Dialer implements it.
type Mailer interface {
	DialAndSend(m ...*gomail.Message) error
}

// NewDialer returns an SMTP mailer for cfg.
func NewDialer(cfg config.SMTPConfig) *gomail.Dialer {
	return gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
}

type Service struct {
	actions *store.NextActionStore
	mailer  Mailer
	from    string
	logger  zerolog.Logger
	now     func() time.Time
}

func NewService(actions *store.NextActionStore, mailer Mailer, from string, logger zerolog.Logger) *Service {
	return &Service{actions: actions, mailer: mailer, from: from, logger: logger, now: time.Now}
}

func prerequisite(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPrerequisite, fmt.Sprintf(format, args...))
}

// Send mails an invite for the action to every address and records that it
// was sent.
func (s *Service) Send(ctx context.Context, userID, actionID string, emails []string) error {
	if len(emails) == 0 {
		return prerequisite("at least one email address is required")
	}
	for _, e := range emails {
		if _, err := mail.ParseAddress(e); err != nil {
			return prerequisite("invalid email address %q", e)
		}
	}
	action, err := s.actions.Get(ctx, userID, actionID)
	if err != nil {
		return err
	}
	if action.Status != models.ActionScheduled || action.ScheduledDate == nil {
		return prerequisite("action must be SCHEDULED with a scheduled date")
	}

	calendar := Calendar(action, s.from, emails, s.now())
	msgs := make([]*gomail.Message, 0, len(emails))
	for _, to := range emails {
		msgs = append(msgs, s.message(action, to, calendar))
	}
	if err := s.mailer.DialAndSend(msgs...); err != nil {
		return fmt.Errorf("send calendar invite: %w", err)
	}

	if err := s.actions.Update(ctx, userID, actionID, &models.NextActionPatch{
		CalendarInviteSent: models.Ptr(true),
		UserEmail:          models.Ptr(emails[0]),
	}); err != nil {
		return err
	}
	logging.LogEvent(s.logger, "calendar_invite_sent", userID, map[string]interface{}{
		"nextActionId": actionID,
		"recipients":   len(emails),
	})
	return nil
}

func (s *Service) message(a models.NextAction, to, calendar string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Scheduled: "+a.Title)
	m.SetBody("text/plain", fmt.Sprintf("%s\n\nScheduled for %s.", a.Title, a.ScheduledDate.UTC().Format(time.RFC1123)))
	m.AddAlternative("text/calendar; method=REQUEST; charset=UTF-8", calendar)
	m.Attach("invite.ics",
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := io.WriteString(w, calendar)
			return err
		}),
		gomail.SetHeader(map[string][]string{"Content-Type": {"text/calendar; method=REQUEST"}}),
	)
	return m
}

// Calendar renders a REQUEST calendar with one event for the action.
func Calendar(a models.NextAction, organizer string, attendees []string, stamp time.Time) string {
	start := a.ScheduledDate.UTC()
	duration := defaultDuration
	if a.EstimatedDuration != nil && *a.EstimatedDuration > 0 {
		duration = time.Duration(*a.EstimatedDuration) * time.Minute
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodRequest)
	cal.SetProductId("-//myGTD//Next Actions//EN")

	event := cal.AddEvent(a.ID + "@mygtd")
	event.SetDtStampTime(stamp.UTC())
	event.SetStartAt(start)
	event.SetEndAt(start.Add(duration))
	event.SetSummary(a.Title)
	if a.Description != nil {
		event.SetDescription(*a.Description)
	}
	if a.Context != nil {
		event.SetLocation(*a.Context)
	}
	if organizer != "" {
		event.SetOrganizer("mailto:" + organizer)
	}
	for _, e := range attendees {
		event.AddAttendee("mailto:"+e,
			ics.CalendarUserTypeIndividual,
			ics.ParticipationStatusNeedsAction,
			ics.ParticipationRoleReqParticipant,
			ics.WithRSVP(true),
		)
	}
	return cal.Serialize()
}
