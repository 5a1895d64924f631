// Package events implements the conflict-free booking engine for caseworker
// agendas.
//
// A slot candidate walks a fixed decision chain: business day, not blocked,
// hour in the free-slot set. The availability pre-check runs inside the same
// transaction as the insert, and the partial unique index on active events
// is the last line of defense against concurrent bookings of the same slot.
package events

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/maysotoledo/agenda-epc/internal/calendar"
	"github.com/maysotoledo/agenda-epc/internal/domain"
	"github.com/maysotoledo/agenda-epc/internal/metrics"
	"github.com/maysotoledo/agenda-epc/internal/models"
	"github.com/maysotoledo/agenda-epc/internal/notify"
	"github.com/maysotoledo/agenda-epc/internal/repository"
	"github.com/maysotoledo/agenda-epc/internal/roles"
	"github.com/maysotoledo/agenda-epc/pkg/logger"
)

// Service is the event scheduler.
type Service struct {
	db        *repository.DB
	events    *repository.EventRepository
	blockages *repository.BlockageRepository
	users     *repository.UserRepository
	roles     roles.Provider
	notifier  notify.Notifier
	log       *logger.Logger
}

// NewService creates a new event scheduler.
func NewService(
	db *repository.DB,
	events *repository.EventRepository,
	blockages *repository.BlockageRepository,
	users *repository.UserRepository,
	rolesProvider roles.Provider,
	notifier notify.Notifier,
	log *logger.Logger,
) *Service {
	return &Service{
		db:        db,
		events:    events,
		blockages: blockages,
		users:     users,
		roles:     rolesProvider,
		notifier:  notifier,
		log:       log,
	}
}

// CreateInput carries the fields of a new booking.
type CreateInput struct {
	UserID      uint
	StartsAt    time.Time
	SubjectName string
	CaseNumber  string
}

// EditInput carries the mutable fields of a booking. Nil fields keep their
// current value.
type EditInput struct {
	StartsAt    *time.Time
	SubjectName *string
	CaseNumber  *string
}

// Create books a new one-hour event.
func (s *Service) Create(input CreateInput, actorID uint) (*models.Event, error) {
	startsAt := truncateToHour(input.StartsAt)
	if !calendar.IsBaseHour(startsAt.Hour()) {
		return nil, domain.New(domain.KindInvalidRange, "%s is not a bookable hour", calendar.SlotLabel(startsAt.Hour()))
	}

	event := &models.Event{
		UserID:      input.UserID,
		StartsAt:    startsAt,
		EndsAt:      startsAt.Add(calendar.SlotDuration),
		SubjectName: input.SubjectName,
		CaseNumber:  input.CaseNumber,
		Status:      models.EventStatusPending,
		CreatedBy:   actorID,
		UpdatedBy:   actorID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.assertSchedulable(tx, input.UserID, startsAt, 0); err != nil {
			return err
		}
		return s.events.WithTx(tx).Create(event)
	})
	if err != nil {
		s.countFailure("create", err)
		return nil, err
	}

	metrics.BookingsTotal.WithLabelValues("create", "ok").Inc()
	s.log.Info().
		Uint("event_id", event.ID).
		Uint("user_id", event.UserID).
		Time("starts_at", event.StartsAt).
		Uint("actor_id", actorID).
		Msg("Event created")

	s.notifyOwner(event, actorID, "Appointment created")
	return event, nil
}

// Edit reschedules an event or updates its subject fields. The target day is
// always re-validated, even when only non-time fields change.
func (s *Service) Edit(eventID uint, input EditInput, actorID uint) (*models.Event, error) {
	event, err := s.events.GetByID(eventID)
	if err != nil {
		return nil, err
	}

	startsAt := event.StartsAt
	if input.StartsAt != nil {
		startsAt = truncateToHour(*input.StartsAt)
		if !calendar.IsBaseHour(startsAt.Hour()) {
			return nil, domain.New(domain.KindInvalidRange, "%s is not a bookable hour", calendar.SlotLabel(startsAt.Hour()))
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.assertSchedulable(tx, event.UserID, startsAt, event.ID); err != nil {
			return err
		}

		event.StartsAt = startsAt
		event.EndsAt = startsAt.Add(calendar.SlotDuration)
		if input.SubjectName != nil {
			event.SubjectName = *input.SubjectName
		}
		if input.CaseNumber != nil {
			event.CaseNumber = *input.CaseNumber
		}
		event.UpdatedBy = actorID

		return s.events.WithTx(tx).Save(event)
	})
	if err != nil {
		s.countFailure("edit", err)
		return nil, err
	}

	metrics.BookingsTotal.WithLabelValues("edit", "ok").Inc()
	s.log.Info().
		Uint("event_id", event.ID).
		Uint("user_id", event.UserID).
		Time("starts_at", event.StartsAt).
		Uint("actor_id", actorID).
		Msg("Event updated")

	s.notifyOwner(event, actorID, "Appointment updated")
	return event, nil
}

// Cancel soft-deletes an event, freeing its slot. A second cancel fails with
// AlreadyCancelled rather than being silently ignored.
func (s *Service) Cancel(eventID uint, actorID uint) error {
	event, err := s.events.GetByIDAny(eventID)
	if err != nil {
		return err
	}
	if event.IsCancelled() {
		return domain.New(domain.KindAlreadyCancelled, "event %d is already cancelled", eventID)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.events.WithTx(tx).Cancel(event, actorID)
	})
	if err != nil {
		s.countFailure("cancel", err)
		return err
	}

	metrics.BookingsTotal.WithLabelValues("cancel", "ok").Inc()
	s.log.Info().
		Uint("event_id", event.ID).
		Uint("user_id", event.UserID).
		Uint("actor_id", actorID).
		Msg("Event cancelled")

	s.notifyOwner(event, actorID, "Appointment cancelled")
	return nil
}

// Restore brings a cancelled event back, re-validating slot uniqueness at
// restore time.
func (s *Service) Restore(eventID uint, actorID uint) (*models.Event, error) {
	event, err := s.events.GetByIDAny(eventID)
	if err != nil {
		return nil, err
	}
	if !event.IsCancelled() {
		return nil, domain.New(domain.KindNotCancelled, "event %d is not cancelled", eventID)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.events.WithTx(tx)
		booked, err := repo.BookedHours(event.UserID, calendar.DayOf(event.StartsAt), event.ID)
		if err != nil {
			return err
		}
		for _, h := range booked {
			if h == event.Hour() {
				return domain.New(domain.KindSlotTaken, "slot %s on %s is occupied by another event",
					calendar.SlotLabel(event.Hour()), event.StartsAt.Format("2006-01-02"))
			}
		}
		return repo.Restore(event, actorID)
	})
	if err != nil {
		s.countFailure("restore", err)
		return nil, err
	}

	event, err = s.events.GetByID(eventID)
	if err != nil {
		return nil, err
	}

	metrics.BookingsTotal.WithLabelValues("restore", "ok").Inc()
	s.log.Info().
		Uint("event_id", event.ID).
		Uint("user_id", event.UserID).
		Uint("actor_id", actorID).
		Msg("Event restored")

	return event, nil
}

// SetStatus records the caseworker's outcome for an event. A reason is
// required when the status is unfulfilled. When the actor is the event's own
// caseworker, admins are notified of the change.
func (s *Service) SetStatus(eventID uint, status, reason string, actorID uint) (*models.Event, error) {
	if !models.ValidEventStatus(status) {
		return nil, domain.New(domain.KindInvalidRange, "unknown status %q", status)
	}
	if status == models.EventStatusUnfulfilled && reason == "" {
		return nil, domain.New(domain.KindInvalidRange, "a reason is required when marking an event unfulfilled")
	}

	event, err := s.events.GetByID(eventID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	event.Status = status
	event.StatusReason = reason
	event.StatusAt = &now
	event.StatusUpdatedBy = &actorID
	event.UpdatedBy = actorID

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.events.WithTx(tx).Save(event)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("event_id", event.ID).
		Str("status", status).
		Uint("actor_id", actorID).
		Msg("Event status updated")

	s.notifyAdminsOnStatus(event, actorID)
	return event, nil
}

// FreeSlots computes the bookable hours of a user's day: empty on weekends
// and blocked days, otherwise the catalogue minus the hours already booked.
func (s *Service) FreeSlots(userID uint, day time.Time) ([]int, error) {
	day = calendar.DayOf(day)
	if !calendar.IsBusinessDay(day) {
		return nil, nil
	}

	blockage, err := s.blockages.Get(userID, day)
	if err != nil {
		return nil, err
	}
	if blockage != nil {
		return nil, nil
	}

	booked, err := s.events.BookedHours(userID, day, 0)
	if err != nil {
		return nil, err
	}
	return calendar.AvailableSlots(day, booked), nil
}

// Get retrieves an active event by ID.
func (s *Service) Get(eventID uint) (*models.Event, error) {
	return s.events.GetByID(eventID)
}

// ListAgenda returns the user's active events with starts_at in [from, to).
func (s *Service) ListAgenda(userID uint, from, to time.Time) ([]models.Event, error) {
	return s.events.ListByUserBetween(userID, from, to)
}

// ActiveCount returns the user's total number of active events.
func (s *Service) ActiveCount(userID uint) (int64, error) {
	return s.events.CountActive(userID)
}

// assertSchedulable runs the day-level decision chain and the free-hour
// check inside the booking transaction.
func (s *Service) assertSchedulable(tx *gorm.DB, userID uint, startsAt time.Time, excludeEventID uint) error {
	day := calendar.DayOf(startsAt)

	if !calendar.IsBusinessDay(day) {
		return domain.New(domain.KindUnschedulableDay, "%s is a weekend; appointments are business days only (Monday to Friday)",
			day.Format("2006-01-02"))
	}

	blockage, err := s.blockages.WithTx(tx).Get(userID, day)
	if err != nil {
		return err
	}
	if blockage != nil {
		reason := blockage.Reason
		if reason == "" {
			reason = "no reason given"
		}
		return domain.New(domain.KindUnschedulableDay, "%s is blocked for this caseworker: %s",
			day.Format("2006-01-02"), reason)
	}

	booked, err := s.events.WithTx(tx).BookedHours(userID, day, excludeEventID)
	if err != nil {
		return err
	}
	for _, h := range booked {
		if h == startsAt.Hour() {
			return domain.New(domain.KindSlotTaken, "slot %s on %s is already booked",
				calendar.SlotLabel(startsAt.Hour()), day.Format("2006-01-02"))
		}
	}
	return nil
}

// notifyOwner notifies the event's caseworker, suppressed when the actor is
// the owner. Delivery failures are logged and dropped.
func (s *Service) notifyOwner(event *models.Event, actorID uint, title string) {
	if event.UserID == actorID {
		return
	}

	body := fmt.Sprintf("By: %s\nDate/Time: %s\nSubject: %s\nCase: %s",
		s.actorName(actorID),
		event.StartsAt.Format("02/01/2006 15:04"),
		event.SubjectName,
		event.CaseNumber,
	)

	if err := s.notifier.Notify(event.UserID, title, body); err != nil {
		metrics.NotificationsTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Uint("user_id", event.UserID).Msg("Failed to deliver notification")
		return
	}
	metrics.NotificationsTotal.WithLabelValues("ok").Inc()
}

// notifyAdminsOnStatus notifies admins of a status change made by the
// event's own caseworker.
func (s *Service) notifyAdminsOnStatus(event *models.Event, actorID uint) {
	if actorID != event.UserID {
		return
	}

	caps, err := s.roles.Capabilities(actorID)
	if err != nil || !caps.HasTag(models.RoleTagEPC) {
		return
	}

	adminIDs, err := s.roles.AdminIDs()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to resolve admins for status notification")
		return
	}

	body := fmt.Sprintf("By: %s\nDate/Time: %s\nStatus: %s\nReason: %s",
		s.actorName(actorID),
		event.StartsAt.Format("02/01/2006 15:04"),
		event.Status,
		orDash(event.StatusReason),
	)

	for _, adminID := range adminIDs {
		if err := s.notifier.Notify(adminID, "Appointment status updated", body); err != nil {
			metrics.NotificationsTotal.WithLabelValues("error").Inc()
			s.log.Error().Err(err).Uint("user_id", adminID).Msg("Failed to deliver status notification")
			continue
		}
		metrics.NotificationsTotal.WithLabelValues("ok").Inc()
	}
}

func (s *Service) actorName(actorID uint) string {
	user, err := s.users.GetByID(actorID)
	if err != nil {
		return fmt.Sprintf("user %d", actorID)
	}
	return user.Name
}

func (s *Service) countFailure(action string, err error) {
	if domain.IsKind(err, domain.KindSlotTaken) {
		metrics.SlotConflictsTotal.Inc()
	}
	metrics.BookingsTotal.WithLabelValues(action, "rejected").Inc()
}

func truncateToHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
