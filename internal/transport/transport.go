package transport

import (
	"net/http"
	"time"

	"github.com/ds124wfegd/showcaller/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Shows  *ShowHandler
	Calls  *CallHandler
	Groups *GroupHandler
	Alerts *AlertHandler
}

// HealthFunc reports the state of a dependency; nil error means healthy.
type HealthFunc func() error

// StatsFunc reports the state of a background worker.
type StatsFunc func() map[string]interface{}

type Health struct {
	Checks  map[string]HealthFunc
	Workers map[string]StatsFunc
}

func InitRoutes(h *Handlers, timeout time.Duration, health Health) *gin.Engine {

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(timeout))

	// API routes
	api := router.Group("/api/v1")
	{
		shows := api.Group("/shows")
		{
			shows.POST("", h.Shows.CreateShow)
			shows.GET("", h.Shows.GetAllShows)
			shows.GET("/:id", h.Shows.GetShow)
			shows.PUT("/:id", h.Shows.UpdateShow)
			shows.DELETE("/:id", h.Shows.DeleteShow)
			shows.GET("/:id/calls", h.Shows.GetShowCalls)
			shows.GET("/:id/groups", h.Shows.GetShowGroups)
		}

		calls := api.Group("/calls")
		{
			calls.POST("", h.Calls.CreateCall)
			calls.GET("/:id", h.Calls.GetCall)
			calls.PUT("/:id", h.Calls.UpdateCall)
			calls.DELETE("/:id", h.Calls.DeleteCall)
		}

		groups := api.Group("/groups")
		{
			groups.POST("", h.Groups.CreateGroup)
			groups.GET("", h.Groups.GetAllGroups)
			groups.DELETE("/:id", h.Groups.DeleteGroup)
		}

		alerts := api.Group("/alerts")
		{
			alerts.GET("/banners", h.Alerts.GetBanners)
			alerts.DELETE("/banners/:id", h.Alerts.DismissBanner)
			alerts.GET("/countdowns", h.Alerts.GetCountdowns)
			alerts.GET("/permission", h.Alerts.GetPermission)
			alerts.POST("/permission", h.Alerts.RequestPermission)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		deps := gin.H{}
		for name, check := range health.Checks {
			if err := check(); err != nil {
				deps[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			deps[name] = "ok"
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		workers := gin.H{}
		for name, stats := range health.Workers {
			workers[name] = stats()
		}

		c.JSON(status, gin.H{
			"status":       state,
			"dependencies": deps,
			"workers":      workers,
			"timestamp":    time.Now().UTC(),
		})
	})

	return router
}
