//nolint:noctx // Test file uses http.NewRequest for simplicity
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/maysotoledo/agenda-epc/internal/cache"
	"github.com/maysotoledo/agenda-epc/internal/config"
	"github.com/maysotoledo/agenda-epc/internal/models"
	"github.com/maysotoledo/agenda-epc/internal/notify"
	"github.com/maysotoledo/agenda-epc/internal/repository"
	"github.com/maysotoledo/agenda-epc/internal/roles"
	"github.com/maysotoledo/agenda-epc/internal/service/blocks"
	"github.com/maysotoledo/agenda-epc/internal/service/events"
	"github.com/maysotoledo/agenda-epc/internal/service/vacations"
	"github.com/maysotoledo/agenda-epc/pkg/logger"
)

type apiEnv struct {
	router *gin.Engine
	owner  *models.User
	admin  *models.User
}

func setupAPI(t *testing.T, slotCache *cache.AvailabilityCache) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// A plain ":memory:" DSN gives every pool connection its own empty
	// database; a named shared-cache DSN keeps all connections of this
	// test on one database without sharing state across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	db := &repository.DB{DB: gdb}
	require.NoError(t, db.AutoMigrate())

	owner := &models.User{
		Name:  "alice",
		Email: "alice@example.com",
		Tags:  []models.UserRoleTag{{Tag: models.RoleTagEPC}},
	}
	admin := &models.User{Name: "root", Email: "root@example.com", IsAdmin: true}
	require.NoError(t, gdb.Create(owner).Error)
	require.NoError(t, gdb.Create(admin).Error)

	log := logger.New("error", "json", "stdout")
	users := repository.NewUserRepository(db)
	blockages := repository.NewBlockageRepository(db)
	rolesProvider := roles.NewDBProvider(users)
	notifier := notify.NewLogNotifier(log)

	eventService := events.NewService(db, repository.NewEventRepository(db), blockages, users, rolesProvider, notifier, log)
	blockService := blocks.NewService(db, blockages, log)
	vacationService := vacations.NewService(
		db,
		repository.NewVacationRepository(db),
		rolesProvider,
		&config.VacationConfig{AnnualQuotaDays: 30, MaxPeriodsPerYear: 3},
		log,
	)

	handler := NewHandler(eventService, blockService, vacationService, slotCache, time.UTC, log)
	cfg := &config.Config{}
	router := NewRouter(cfg, db, handler)

	return &apiEnv{router: router, owner: owner, admin: admin}
}

func (e *apiEnv) do(t *testing.T, method, path string, actorID uint, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if actorID != 0 {
		req.Header.Set("X-Actor-ID", fmt.Sprintf("%d", actorID))
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCreateEventEndpoint(t *testing.T) {
	env := setupAPI(t, nil)

	body := gin.H{
		"user_id":      env.owner.ID,
		"starts_at":    "2025-06-02T09:00:00Z",
		"subject_name": "John Doe",
		"case_number":  "2025.0001",
	}

	w := env.do(t, http.MethodPost, "/api/v1/events", env.admin.ID, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// The same slot conflicts with a 409 carrying the failure kind.
	w = env.do(t, http.MethodPost, "/api/v1/events", env.admin.ID, body)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "slot_taken", decode(t, w)["kind"])
}

func TestCreateEventRequiresActor(t *testing.T) {
	env := setupAPI(t, nil)

	w := env.do(t, http.MethodPost, "/api/v1/events", 0, gin.H{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateEventWeekend(t *testing.T) {
	env := setupAPI(t, nil)

	w := env.do(t, http.MethodPost, "/api/v1/events", env.admin.ID, gin.H{
		"user_id":      env.owner.ID,
		"starts_at":    "2025-06-07T09:00:00Z",
		"subject_name": "John Doe",
		"case_number":  "2025.0001",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "unschedulable_day", decode(t, w)["kind"])
}

func TestCancelEventEndpoint(t *testing.T) {
	env := setupAPI(t, nil)

	w := env.do(t, http.MethodPost, "/api/v1/events", env.admin.ID, gin.H{
		"user_id":      env.owner.ID,
		"starts_at":    "2025-06-02T09:00:00Z",
		"subject_name": "John Doe",
		"case_number":  "2025.0001",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decode(t, w)
	eventID := uint(resp["event"].(map[string]any)["id"].(float64))

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/events/%d", eventID), env.admin.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// A second cancel is a conflict, not a silent success.
	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/events/%d", eventID), env.admin.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestVacationQuotaPayload(t *testing.T) {
	env := setupAPI(t, nil)

	w := env.do(t, http.MethodPost, "/api/v1/vacations", env.owner.ID, gin.H{
		"user_id":    env.owner.ID,
		"start_date": "2025-03-01",
		"end_date":   "2025-03-20",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/v1/vacations", env.owner.ID, gin.H{
		"user_id":       env.owner.ID,
		"start_date":    "2025-06-01",
		"quantity_days": 11,
	})
	require.Equal(t, http.StatusConflict, w.Code)

	resp := decode(t, w)
	assert.Equal(t, "annual_quota_exceeded", resp["kind"])
	assert.Equal(t, float64(20), resp["days_used"])
	assert.Equal(t, float64(10), resp["days_remaining"])
}

func TestGetFreeSlotsEndpoint(t *testing.T) {
	env := setupAPI(t, nil)

	w := env.do(t, http.MethodGet,
		fmt.Sprintf("/api/v1/users/%d/slots?date=2025-06-02", env.owner.ID), env.owner.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	slots := resp["slots"].([]any)
	require.Len(t, slots, 8)
	assert.Equal(t, "08:00", slots[0])
	assert.Equal(t, false, resp["cached"])
}

func TestGetFreeSlotsCached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	slotCache := cache.NewAvailabilityCacheWithClient(client, 30*time.Second, logger.New("error", "json", "stdout"))

	env := setupAPI(t, slotCache)
	path := fmt.Sprintf("/api/v1/users/%d/slots?date=2025-06-02", env.owner.ID)

	w := env.do(t, http.MethodGet, path, env.owner.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["cached"])

	// Second read is served from the cache.
	w = env.do(t, http.MethodGet, path, env.owner.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["cached"])

	// Booking the day invalidates the entry.
	w = env.do(t, http.MethodPost, "/api/v1/events", env.owner.ID, gin.H{
		"user_id":      env.owner.ID,
		"starts_at":    "2025-06-02T09:00:00Z",
		"subject_name": "John Doe",
		"case_number":  "2025.0001",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, path, env.owner.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, false, resp["cached"])
	assert.Len(t, resp["slots"].([]any), 7)
}

func TestGetAgendaEndpoint(t *testing.T) {
	env := setupAPI(t, nil)

	for _, startsAt := range []string{"2025-06-02T09:00:00Z", "2025-06-03T14:00:00Z"} {
		w := env.do(t, http.MethodPost, "/api/v1/events", env.owner.ID, gin.H{
			"user_id":      env.owner.ID,
			"starts_at":    startsAt,
			"subject_name": "John Doe",
			"case_number":  "2025.0001",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	// The window is inclusive on both dates; only the first event falls in it.
	w := env.do(t, http.MethodGet,
		fmt.Sprintf("/api/v1/users/%d/agenda?from=2025-06-02&to=2025-06-02", env.owner.ID), env.owner.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, float64(1), resp["total"])
	assert.Equal(t, float64(2), resp["active_total"])
}

func TestBlockEndpoints(t *testing.T) {
	env := setupAPI(t, nil)

	w := env.do(t, http.MethodPost, "/api/v1/blocks", env.admin.ID, gin.H{
		"user_id": env.owner.ID,
		"day":     "2025-06-02",
		"reason":  "training",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// A blocked day has no bookable slots.
	w = env.do(t, http.MethodGet,
		fmt.Sprintf("/api/v1/users/%d/slots?date=2025-06-02", env.owner.ID), env.owner.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["slots"])
}
