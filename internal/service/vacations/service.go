// Package vacations validates and persists yearly vacation periods.
package vacations

import (
	"time"

	"gorm.io/gorm"

	"github.com/maysotoledo/agenda-epc/internal/calendar"
	"github.com/maysotoledo/agenda-epc/internal/config"
	"github.com/maysotoledo/agenda-epc/internal/domain"
	"github.com/maysotoledo/agenda-epc/internal/models"
	"github.com/maysotoledo/agenda-epc/internal/repository"
	"github.com/maysotoledo/agenda-epc/internal/roles"
	"github.com/maysotoledo/agenda-epc/pkg/logger"
)

// Service is the vacation allocator.
type Service struct {
	db        *repository.DB
	vacations *repository.VacationRepository
	roles     roles.Provider
	cfg       *config.VacationConfig
	log       *logger.Logger
}

// NewService creates a new vacation service.
func NewService(
	db *repository.DB,
	vacations *repository.VacationRepository,
	rolesProvider roles.Provider,
	cfg *config.VacationConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		db:        db,
		vacations: vacations,
		roles:     rolesProvider,
		cfg:       cfg,
		log:       log,
	}
}

// Period is a normalized proposed vacation range.
type Period struct {
	StartDate time.Time
	EndDate   time.Time
	Year      int
}

// Propose normalizes a proposed period. When quantityDays is positive the
// end date is derived from it (start + quantity - 1); otherwise the explicit
// end date is used. Periods never cross a year boundary.
func (s *Service) Propose(start time.Time, quantityDays int, end time.Time) (Period, error) {
	if start.IsZero() {
		return Period{}, domain.New(domain.KindInvalidRange, "a start date is required")
	}
	start = calendar.DayOf(start)

	switch {
	case quantityDays > 0:
		end = start.AddDate(0, 0, quantityDays-1)
	case quantityDays < 0:
		return Period{}, domain.New(domain.KindInvalidRange, "day count must be at least 1")
	case end.IsZero():
		return Period{}, domain.New(domain.KindInvalidRange, "an end date or a day count is required")
	default:
		end = calendar.DayOf(end)
	}

	if end.Before(start) {
		return Period{}, domain.New(domain.KindInvalidRange, "end date %s precedes start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	if start.Year() != end.Year() {
		return Period{}, domain.New(domain.KindCrossesYearBoundary,
			"vacations cannot cross the year; create a separate period in the next year")
	}

	return Period{StartDate: start, EndDate: end, Year: start.Year()}, nil
}

// Create validates and persists a new vacation period. Non-admin actors may
// only create periods for themselves.
func (s *Service) Create(userID uint, startDate, endDate time.Time, actorID uint) (*models.VacationPeriod, error) {
	if err := s.authorize(userID, actorID); err != nil {
		return nil, err
	}

	normalized, err := s.Propose(startDate, 0, endDate)
	if err != nil {
		return nil, err
	}

	period := &models.VacationPeriod{
		UserID:    userID,
		StartDate: normalized.StartDate,
		EndDate:   normalized.EndDate,
		Year:      normalized.Year,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.validateLimits(tx, userID, normalized, period.Days(), 0); err != nil {
			return err
		}
		return s.vacations.WithTx(tx).Create(period)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("period_id", period.ID).
		Uint("user_id", userID).
		Str("start", period.StartDate.Format("2006-01-02")).
		Str("end", period.EndDate.Format("2006-01-02")).
		Uint("actor_id", actorID).
		Msg("Vacation period created")

	return period, nil
}

// Edit validates and updates an existing period, excluding the record itself
// from all overlap and quota counts. Non-admin actors may only edit their own
// records and cannot reassign them.
func (s *Service) Edit(periodID, userID uint, startDate, endDate time.Time, actorID uint) (*models.VacationPeriod, error) {
	period, err := s.vacations.GetByID(periodID)
	if err != nil {
		return nil, err
	}

	caps, err := s.roles.Capabilities(actorID)
	if err != nil {
		return nil, err
	}
	if !caps.IsAdmin {
		if period.UserID != actorID {
			return nil, domain.New(domain.KindForbidden, "you can only edit your own vacation periods")
		}
		// Non-admins cannot move the record to another user.
		userID = actorID
	}

	normalized, err := s.Propose(startDate, 0, endDate)
	if err != nil {
		return nil, err
	}

	newDays := calendar.DaysInclusive(normalized.StartDate, normalized.EndDate)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.validateLimits(tx, userID, normalized, newDays, period.ID); err != nil {
			return err
		}

		period.UserID = userID
		period.StartDate = normalized.StartDate
		period.EndDate = normalized.EndDate
		period.Year = normalized.Year
		return s.vacations.WithTx(tx).Save(period)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("period_id", period.ID).
		Uint("user_id", period.UserID).
		Str("start", period.StartDate.Format("2006-01-02")).
		Str("end", period.EndDate.Format("2006-01-02")).
		Uint("actor_id", actorID).
		Msg("Vacation period updated")

	return period, nil
}

// Delete removes a period. Non-admin actors may only delete their own.
func (s *Service) Delete(periodID uint, actorID uint) error {
	period, err := s.vacations.GetByID(periodID)
	if err != nil {
		return err
	}
	if err := s.authorize(period.UserID, actorID); err != nil {
		return err
	}

	if err := s.vacations.Delete(periodID); err != nil {
		return err
	}

	s.log.Info().
		Uint("period_id", periodID).
		Uint("user_id", period.UserID).
		Uint("actor_id", actorID).
		Msg("Vacation period deleted")

	return nil
}

// ListByUser returns all periods of a user, newest first.
func (s *Service) ListByUser(userID uint) ([]models.VacationPeriod, error) {
	return s.vacations.ListByUser(userID)
}

// ListForYear returns the user's periods in the given year.
func (s *Service) ListForYear(userID uint, year int) ([]models.VacationPeriod, error) {
	return s.vacations.ListForYear(userID, year, 0)
}

// authorize rejects non-admin actors targeting another user's records.
func (s *Service) authorize(userID, actorID uint) error {
	if userID == actorID {
		return nil
	}
	caps, err := s.roles.Capabilities(actorID)
	if err != nil {
		return err
	}
	if !caps.IsAdmin {
		return domain.New(domain.KindForbidden, "you can only manage your own vacation periods")
	}
	return nil
}
