package vacations

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/maysotoledo/agenda-epc/internal/config"
	"github.com/maysotoledo/agenda-epc/internal/domain"
	"github.com/maysotoledo/agenda-epc/internal/models"
	"github.com/maysotoledo/agenda-epc/internal/repository"
	"github.com/maysotoledo/agenda-epc/internal/roles"
	"github.com/maysotoledo/agenda-epc/pkg/logger"
)

type vacationEnv struct {
	svc   *Service
	db    *gorm.DB
	alice *models.User
	bob   *models.User
	admin *models.User
}

func setupVacationService(t *testing.T) *vacationEnv {
	t.Helper()

	// A plain ":memory:" DSN gives every pool connection its own empty
	// database; a named shared-cache DSN keeps all connections of this
	// test on one database without sharing state across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	db := &repository.DB{DB: gdb}
	require.NoError(t, db.AutoMigrate())

	// alice and bob share the on-call duty tag; carol does not appear here.
	alice := &models.User{
		Name:  "alice",
		Email: "alice@example.com",
		Tags:  []models.UserRoleTag{{Tag: models.RoleTagEPC}, {Tag: models.RoleTagEPCPlantao}},
	}
	bob := &models.User{
		Name:  "bob",
		Email: "bob@example.com",
		Tags:  []models.UserRoleTag{{Tag: models.RoleTagEPC}, {Tag: models.RoleTagEPCPlantao}},
	}
	admin := &models.User{Name: "root", Email: "root@example.com", IsAdmin: true}
	for _, u := range []*models.User{alice, bob, admin} {
		require.NoError(t, gdb.Create(u).Error)
	}

	users := repository.NewUserRepository(db)
	cfg := &config.VacationConfig{
		AnnualQuotaDays:   30,
		MaxPeriodsPerYear: 3,
		ProtectedTags:     []string{models.RoleTagEPCPlantao, models.RoleTagIPCPlantao},
	}

	svc := NewService(
		db,
		repository.NewVacationRepository(db),
		roles.NewDBProvider(users),
		cfg,
		logger.New("error", "json", "stdout"),
	)

	return &vacationEnv{svc: svc, db: gdb, alice: alice, bob: bob, admin: admin}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPropose(t *testing.T) {
	env := setupVacationService(t)

	t.Run("quantity derives the end date", func(t *testing.T) {
		p, err := env.svc.Propose(date(2025, time.March, 10), 10, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, date(2025, time.March, 19), p.EndDate)
		assert.Equal(t, 2025, p.Year)
	})

	t.Run("single day", func(t *testing.T) {
		p, err := env.svc.Propose(date(2025, time.March, 10), 1, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, p.StartDate, p.EndDate)
	})

	t.Run("explicit end date", func(t *testing.T) {
		p, err := env.svc.Propose(date(2025, time.March, 10), 0, date(2025, time.March, 14))
		require.NoError(t, err)
		assert.Equal(t, date(2025, time.March, 14), p.EndDate)
	})

	t.Run("missing start", func(t *testing.T) {
		_, err := env.svc.Propose(time.Time{}, 5, time.Time{})
		assert.Equal(t, domain.KindInvalidRange, domain.KindOf(err))
	})

	t.Run("negative quantity", func(t *testing.T) {
		_, err := env.svc.Propose(date(2025, time.March, 10), -1, time.Time{})
		assert.Equal(t, domain.KindInvalidRange, domain.KindOf(err))
	})

	t.Run("neither end nor quantity", func(t *testing.T) {
		_, err := env.svc.Propose(date(2025, time.March, 10), 0, time.Time{})
		assert.Equal(t, domain.KindInvalidRange, domain.KindOf(err))
	})

	t.Run("inverted range", func(t *testing.T) {
		_, err := env.svc.Propose(date(2025, time.March, 10), 0, date(2025, time.March, 1))
		assert.Equal(t, domain.KindInvalidRange, domain.KindOf(err))
	})

	t.Run("year boundary", func(t *testing.T) {
		_, err := env.svc.Propose(date(2025, time.December, 28), 10, time.Time{})
		assert.Equal(t, domain.KindCrossesYearBoundary, domain.KindOf(err))
	})
}

func TestCreateVacation(t *testing.T) {
	env := setupVacationService(t)

	period, err := env.svc.Create(env.alice.ID, date(2025, time.March, 10), date(2025, time.March, 19), env.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, period.Days())
	assert.Equal(t, 2025, period.Year)
}

func TestAnnualQuota(t *testing.T) {
	env := setupVacationService(t)

	// 20 days used, 11 more requested: 31 > 30.
	_, err := env.svc.Create(env.alice.ID, date(2025, time.March, 1), date(2025, time.March, 20), env.alice.ID)
	require.NoError(t, err)

	_, err = env.svc.Create(env.alice.ID, date(2025, time.June, 1), date(2025, time.June, 11), env.alice.ID)
	require.Error(t, err)
	assert.Equal(t, domain.KindAnnualQuotaExceeded, domain.KindOf(err))

	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, 20, derr.DaysUsed)
	assert.Equal(t, 10, derr.DaysRemaining)

	// Exactly the remaining 10 days still fit.
	_, err = env.svc.Create(env.alice.ID, date(2025, time.June, 1), date(2025, time.June, 10), env.alice.ID)
	assert.NoError(t, err)
}

func TestAnnualQuotaSinglePeriod(t *testing.T) {
	env := setupVacationService(t)

	// 31 days in one go is over the quota even with nothing used yet.
	_, err := env.svc.Create(env.alice.ID, date(2025, time.January, 1), date(2025, time.January, 31), env.alice.ID)
	require.Error(t, err)
	assert.Equal(t, domain.KindAnnualQuotaExceeded, domain.KindOf(err))

	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, 0, derr.DaysUsed)
	assert.Equal(t, 30, derr.DaysRemaining)
}

func TestPeriodLimit(t *testing.T) {
	env := setupVacationService(t)

	for month := time.March; month < time.June; month++ {
		_, err := env.svc.Create(env.alice.ID, date(2025, month, 1), date(2025, month, 5), env.alice.ID)
		require.NoError(t, err)
	}

	_, err := env.svc.Create(env.alice.ID, date(2025, time.July, 1), date(2025, time.July, 2), env.alice.ID)
	require.Error(t, err)
	assert.Equal(t, domain.KindPeriodLimitExceeded, domain.KindOf(err))

	// The next year starts with a fresh budget.
	_, err = env.svc.Create(env.alice.ID, date(2026, time.January, 5), date(2026, time.January, 9), env.alice.ID)
	assert.NoError(t, err)
}

func TestSelfOverlap(t *testing.T) {
	env := setupVacationService(t)

	_, err := env.svc.Create(env.alice.ID, date(2025, time.March, 10), date(2025, time.March, 19), env.alice.ID)
	require.NoError(t, err)

	_, err = env.svc.Create(env.alice.ID, date(2025, time.March, 15), date(2025, time.March, 19), env.alice.ID)
	require.Error(t, err)
	assert.Equal(t, domain.KindSelfOverlap, domain.KindOf(err))

	// Sharing only an endpoint still overlaps: ranges are inclusive.
	_, err = env.svc.Create(env.alice.ID, date(2025, time.March, 19), date(2025, time.March, 22), env.alice.ID)
	require.Error(t, err)
	assert.Equal(t, domain.KindSelfOverlap, domain.KindOf(err))

	_, err = env.svc.Create(env.alice.ID, date(2025, time.March, 20), date(2025, time.March, 22), env.alice.ID)
	assert.NoError(t, err)
}

func TestRoleCollision(t *testing.T) {
	env := setupVacationService(t)

	_, err := env.svc.Create(env.alice.ID, date(2025, time.March, 10), date(2025, time.March, 19), env.alice.ID)
	require.NoError(t, err)

	// bob shares the on-call tag, so his vacation may not overlap alice's.
	_, err = env.svc.Create(env.bob.ID, date(2025, time.March, 15), date(2025, time.March, 20), env.bob.ID)
	require.Error(t, err)
	assert.Equal(t, domain.KindRoleCollision, domain.KindOf(err))

	// Disjoint periods are fine.
	_, err = env.svc.Create(env.bob.ID, date(2025, time.March, 20), date(2025, time.March, 25), env.bob.ID)
	assert.NoError(t, err)
}

func TestAuthorization(t *testing.T) {
	env := setupVacationService(t)

	// A non-admin cannot create vacations for someone else.
	_, err := env.svc.Create(env.alice.ID, date(2025, time.March, 10), date(2025, time.March, 12), env.bob.ID)
	require.Error(t, err)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	// An admin can.
	_, err = env.svc.Create(env.alice.ID, date(2025, time.March, 10), date(2025, time.March, 12), env.admin.ID)
	assert.NoError(t, err)
}

func TestEditExcludesItself(t *testing.T) {
	env := setupVacationService(t)

	period, err := env.svc.Create(env.alice.ID, date(2025, time.March, 10), date(2025, time.March, 19), env.alice.ID)
	require.NoError(t, err)

	// Shifting the same period by a few days must not collide with itself.
	edited, err := env.svc.Edit(period.ID, env.alice.ID, date(2025, time.March, 12), date(2025, time.March, 21), env.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.March, 12), edited.StartDate)
	assert.Equal(t, 10, edited.Days())
}

func TestEditAuthorization(t *testing.T) {
	env := setupVacationService(t)

	period, err := env.svc.Create(env.alice.ID, date(2025, time.March, 10), date(2025, time.March, 12), env.alice.ID)
	require.NoError(t, err)

	_, err = env.svc.Edit(period.ID, env.alice.ID, date(2025, time.April, 1), date(2025, time.April, 3), env.bob.ID)
	require.Error(t, err)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	// Non-admin owners cannot hand the period to another user.
	edited, err := env.svc.Edit(period.ID, env.bob.ID, date(2025, time.April, 1), date(2025, time.April, 3), env.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, env.alice.ID, edited.UserID)
}

func TestDeleteVacation(t *testing.T) {
	env := setupVacationService(t)

	period, err := env.svc.Create(env.alice.ID, date(2025, time.March, 10), date(2025, time.March, 12), env.alice.ID)
	require.NoError(t, err)

	err = env.svc.Delete(period.ID, env.bob.ID)
	require.Error(t, err)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	require.NoError(t, env.svc.Delete(period.ID, env.alice.ID))

	err = env.svc.Delete(period.ID, env.alice.ID)
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	// Deleting frees the quota for a new period.
	_, err = env.svc.Create(env.alice.ID, date(2025, time.March, 10), date(2025, time.March, 12), env.alice.ID)
	assert.NoError(t, err)
}

func TestListForYear(t *testing.T) {
	env := setupVacationService(t)

	_, err := env.svc.Create(env.alice.ID, date(2025, time.March, 10), date(2025, time.March, 12), env.alice.ID)
	require.NoError(t, err)
	_, err = env.svc.Create(env.alice.ID, date(2026, time.January, 5), date(2026, time.January, 9), env.alice.ID)
	require.NoError(t, err)

	periods, err := env.svc.ListForYear(env.alice.ID, 2025)
	require.NoError(t, err)
	require.Len(t, periods, 1)
	assert.Equal(t, 2025, periods[0].Year)

	all, err := env.svc.ListByUser(env.alice.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
