package vacations

import (
	"gorm.io/gorm"

	"github.com/maysotoledo/agenda-epc/internal/domain"
	"github.com/maysotoledo/agenda-epc/internal/metrics"
)

// validateLimits runs the allocation rules in fixed order, first failure
// wins: period count, annual quota, self overlap, protected-tag collision.
// excludeID removes the record being edited from every count.
func (s *Service) validateLimits(tx *gorm.DB, userID uint, p Period, newDays int, excludeID uint) error {
	repo := s.vacations.WithTx(tx)

	existing, err := repo.ListForYear(userID, p.Year, excludeID)
	if err != nil {
		return err
	}

	// 1) At most N periods per year.
	if len(existing) >= s.cfg.MaxPeriodsPerYear {
		metrics.VacationRejectionsTotal.WithLabelValues("period_limit").Inc()
		return domain.New(domain.KindPeriodLimitExceeded,
			"limit reached: vacations may be split into at most %d periods per year", s.cfg.MaxPeriodsPerYear)
	}

	// 2) At most N days per year in total.
	used := 0
	for i := range existing {
		used += existing[i].Days()
	}
	if used+newDays > s.cfg.AnnualQuotaDays {
		remaining := s.cfg.AnnualQuotaDays - used
		if remaining < 0 {
			remaining = 0
		}
		metrics.VacationRejectionsTotal.WithLabelValues("annual_quota").Inc()
		return domain.QuotaExceeded(used, remaining)
	}

	// 3) No overlap with the user's own periods.
	overlaps, err := repo.HasOverlap(userID, p.StartDate, p.EndDate, excludeID)
	if err != nil {
		return err
	}
	if overlaps {
		metrics.VacationRejectionsTotal.WithLabelValues("self_overlap").Inc()
		return domain.New(domain.KindSelfOverlap,
			"this period overlaps another vacation period already registered for this user")
	}

	// 4) Holders of a protected role tag may never overlap each other.
	caps, err := s.roles.Capabilities(userID)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil
		}
		return err
	}

	for _, tag := range s.cfg.ProtectedTags {
		if !caps.HasTag(tag) {
			continue
		}

		peerIDs, err := s.roles.UserIDsWithTag(tag)
		if err != nil {
			return err
		}

		others := peerIDs[:0]
		for _, id := range peerIDs {
			if id != userID {
				others = append(others, id)
			}
		}
		if len(others) == 0 {
			continue
		}

		collides, err := repo.HasOverlapAmong(others, p.StartDate, p.EndDate, excludeID)
		if err != nil {
			return err
		}
		if collides {
			metrics.VacationRejectionsTotal.WithLabelValues("role_collision").Inc()
			return domain.New(domain.KindRoleCollision,
				"vacations on the same days are not allowed for users sharing the %q duty", tag)
		}
	}

	return nil
}
