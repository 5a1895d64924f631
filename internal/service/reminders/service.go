// Package reminders sends each caseworker a digest of the next business
// day's appointments on weekday mornings.
package reminders

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/maysotoledo/agenda-epc/internal/calendar"
	"github.com/maysotoledo/agenda-epc/internal/config"
	"github.com/maysotoledo/agenda-epc/internal/metrics"
	"github.com/maysotoledo/agenda-epc/internal/models"
	"github.com/maysotoledo/agenda-epc/internal/notify"
	"github.com/maysotoledo/agenda-epc/internal/repository"
	"github.com/maysotoledo/agenda-epc/pkg/logger"
)

// Service schedules the daily reminder digest.
type Service struct {
	cfg      *config.RemindersConfig
	location *time.Location
	events   *repository.EventRepository
	users    *repository.UserRepository
	notifier notify.Notifier
	log      *logger.Logger
	cron     *cron.Cron
}

// NewService creates a new reminder service.
func NewService(
	cfg *config.RemindersConfig,
	location *time.Location,
	events *repository.EventRepository,
	users *repository.UserRepository,
	notifier notify.Notifier,
	log *logger.Logger,
) *Service {
	return &Service{
		cfg:      cfg,
		location: location,
		events:   events,
		users:    users,
		notifier: notifier,
		log:      log,
	}
}

// Start registers and starts the cron job.
func (s *Service) Start() error {
	if !s.cfg.Enabled {
		s.log.Info().Msg("Reminders are disabled in configuration")
		return nil
	}

	cronExpr, err := s.buildCronExpression()
	if err != nil {
		return fmt.Errorf("failed to build cron expression: %w", err)
	}

	s.cron = cron.New(cron.WithLocation(s.location))
	if _, err := s.cron.AddFunc(cronExpr, s.runDigest); err != nil {
		return fmt.Errorf("failed to register reminder job: %w", err)
	}
	s.cron.Start()

	s.log.Info().
		Str("schedule", cronExpr).
		Str("timezone", s.location.String()).
		Msg("Reminder scheduler started")

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.log.Info().Msg("Reminder scheduler stopped")
	}
}

// buildCronExpression turns the HH:MM config into a weekday cron expression.
func (s *Service) buildCronExpression() (string, error) {
	parts := strings.Split(s.cfg.Time, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time format %q, expected HH:MM", s.cfg.Time)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour %q", parts[0])
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute %q", parts[1])
	}

	return fmt.Sprintf("%d %d * * 1-5", minute, hour), nil
}

// runDigest notifies every caseworker who has appointments on the next
// business day.
func (s *Service) runDigest() {
	day := nextBusinessDay(time.Now().In(s.location))
	metrics.RemindersLastRun.SetToCurrentTime()

	caseworkers, err := s.users.ListWithTag(models.RoleTagEPC)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list caseworkers for reminder digest")
		return
	}

	sent := 0
	for _, user := range caseworkers {
		events, err := s.events.ListByUserBetween(user.ID, day, day.AddDate(0, 0, 1))
		if err != nil {
			s.log.Error().Err(err).Uint("user_id", user.ID).Msg("Failed to list events for reminder digest")
			continue
		}
		if len(events) == 0 {
			continue
		}

		if err := s.notifier.Notify(user.ID, "Appointments for "+day.Format("02/01/2006"), digestBody(events)); err != nil {
			s.log.Error().Err(err).Uint("user_id", user.ID).Msg("Failed to deliver reminder digest")
			continue
		}
		sent++
	}

	s.log.Info().
		Str("day", day.Format("2006-01-02")).
		Int("notified", sent).
		Msg("Reminder digest completed")
}

func digestBody(events []models.Event) string {
	var b strings.Builder
	for i := range events {
		e := &events[i]
		fmt.Fprintf(&b, "%s  %s (case %s)\n", e.StartsAt.Format("15:04"), e.SubjectName, e.CaseNumber)
	}
	return strings.TrimRight(b.String(), "\n")
}

func nextBusinessDay(now time.Time) time.Time {
	day := calendar.DayOf(now).AddDate(0, 0, 1)
	for !calendar.IsBusinessDay(day) {
		day = day.AddDate(0, 0, 1)
	}
	return day
}
