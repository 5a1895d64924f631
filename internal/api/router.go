package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maysotoledo/agenda-epc/internal/config"
	"github.com/maysotoledo/agenda-epc/internal/repository"
)

// NewRouter assembles the gin engine with all routes.
func NewRouter(cfg *config.Config, db *repository.DB, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/events", handler.CreateEvent)
		v1.PUT("/events/:id", handler.EditEvent)
		v1.DELETE("/events/:id", handler.CancelEvent)
		v1.POST("/events/:id/restore", handler.RestoreEvent)
		v1.PUT("/events/:id/status", handler.SetEventStatus)

		v1.POST("/blocks", handler.BlockDay)
		v1.DELETE("/blocks", handler.UnblockDay)
		v1.POST("/blocks/range", handler.BlockRange)
		v1.DELETE("/blocks/range", handler.UnblockRange)

		v1.POST("/vacations", handler.CreateVacation)
		v1.PUT("/vacations/:id", handler.EditVacation)
		v1.DELETE("/vacations/:id", handler.DeleteVacation)

		v1.GET("/users/:id/agenda", handler.GetAgenda)
		v1.GET("/users/:id/slots", handler.GetFreeSlots)
		v1.GET("/users/:id/blocks", handler.GetBlockedDays)
		v1.GET("/users/:id/vacations", handler.GetVacations)
	}

	return router
}
