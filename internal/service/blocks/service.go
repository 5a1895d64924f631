// Package blocks manages admin-imposed day blockages for caseworkers.
// Weekends are never persisted: the calendar rules block them implicitly.
package blocks

import (
	"time"

	"gorm.io/gorm"

	"github.com/maysotoledo/agenda-epc/internal/calendar"
	"github.com/maysotoledo/agenda-epc/internal/domain"
	"github.com/maysotoledo/agenda-epc/internal/metrics"
	"github.com/maysotoledo/agenda-epc/internal/models"
	"github.com/maysotoledo/agenda-epc/internal/repository"
	"github.com/maysotoledo/agenda-epc/pkg/logger"
)

// Service is the blockage registry.
type Service struct {
	db        *repository.DB
	blockages *repository.BlockageRepository
	log       *logger.Logger
}

// NewService creates a new blockage service.
func NewService(db *repository.DB, blockages *repository.BlockageRepository, log *logger.Logger) *Service {
	return &Service{
		db:        db,
		blockages: blockages,
		log:       log,
	}
}

// BlockDay blocks a single day for the user. Re-blocking an already blocked
// day updates its reason.
func (s *Service) BlockDay(userID uint, day time.Time, reason string, actorID uint) (*models.Blockage, error) {
	blockage, err := s.blockages.Upsert(userID, calendar.DayOf(day), reason, actorID)
	if err != nil {
		return nil, err
	}

	metrics.BlockagesTotal.WithLabelValues("block").Inc()
	s.log.Info().
		Uint("user_id", userID).
		Str("day", blockage.Day.Format("2006-01-02")).
		Uint("actor_id", actorID).
		Msg("Blocked day")

	return blockage, nil
}

// UnblockDay removes the blockage for a single day. When reasonFilter is
// non-empty only a blockage carrying that exact reason is removed. Reports
// whether anything was removed.
func (s *Service) UnblockDay(userID uint, day time.Time, reasonFilter string) (bool, error) {
	removed, err := s.blockages.Delete(userID, calendar.DayOf(day), reasonFilter)
	if err != nil {
		return false, err
	}

	if removed {
		metrics.BlockagesTotal.WithLabelValues("unblock").Inc()
		s.log.Info().
			Uint("user_id", userID).
			Str("day", calendar.DayOf(day).Format("2006-01-02")).
			Msg("Unblocked day")
	}
	return removed, nil
}

// BlockRange blocks every business day in [start, end] inclusive, skipping
// weekends. All-or-nothing: a failure mid-range rolls back every upsert.
// Returns the number of days processed.
func (s *Service) BlockRange(userID uint, start, end time.Time, reason string, actorID uint) (int, error) {
	start, end = calendar.DayOf(start), calendar.DayOf(end)
	if end.Before(start) {
		return 0, domain.New(domain.KindInvalidRange, "end date %s precedes start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	count := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.blockages.WithTx(tx)
		for _, day := range calendar.BusinessDaysBetween(start, end) {
			if _, err := repo.Upsert(userID, day, reason, actorID); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	metrics.BlockagesTotal.WithLabelValues("block").Add(float64(count))
	s.log.Info().
		Uint("user_id", userID).
		Str("start", start.Format("2006-01-02")).
		Str("end", end.Format("2006-01-02")).
		Int("days", count).
		Msg("Blocked range")

	return count, nil
}

// UnblockRange removes blockages over the business days in [start, end]
// inclusive, optionally filtered by exact reason. All-or-nothing. Returns
// the number of blockages removed.
func (s *Service) UnblockRange(userID uint, start, end time.Time, reasonFilter string) (int, error) {
	start, end = calendar.DayOf(start), calendar.DayOf(end)
	if end.Before(start) {
		return 0, domain.New(domain.KindInvalidRange, "end date %s precedes start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	count := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.blockages.WithTx(tx)
		for _, day := range calendar.BusinessDaysBetween(start, end) {
			removed, err := repo.Delete(userID, day, reasonFilter)
			if err != nil {
				return err
			}
			if removed {
				count++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	metrics.BlockagesTotal.WithLabelValues("unblock").Add(float64(count))
	s.log.Info().
		Uint("user_id", userID).
		Str("start", start.Format("2006-01-02")).
		Str("end", end.Format("2006-01-02")).
		Int("removed", count).
		Msg("Unblocked range")

	return count, nil
}

// IsBlocked reports whether the day carries a blockage for the user.
func (s *Service) IsBlocked(userID uint, day time.Time) (bool, error) {
	blockage, err := s.blockages.Get(userID, calendar.DayOf(day))
	if err != nil {
		return false, err
	}
	return blockage != nil, nil
}

// Blockage returns the blockage row for the day, or nil when the day is open.
func (s *Service) Blockage(userID uint, day time.Time) (*models.Blockage, error) {
	return s.blockages.Get(userID, calendar.DayOf(day))
}

// BlockedDaysInRange returns the user's blocked days in [start, end] inclusive.
func (s *Service) BlockedDaysInRange(userID uint, start, end time.Time) ([]time.Time, error) {
	return s.blockages.DaysInRange(userID, calendar.DayOf(start), calendar.DayOf(end))
}

// ListInRange returns the blockage rows in [start, end] inclusive.
func (s *Service) ListInRange(userID uint, start, end time.Time) ([]models.Blockage, error) {
	return s.blockages.ListInRange(userID, calendar.DayOf(start), calendar.DayOf(end))
}
