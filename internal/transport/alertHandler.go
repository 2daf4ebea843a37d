package transport

import (
	"context"
	"net/http"

	"github.com/ds124wfegd/showcaller/internal/entity"
	"github.com/ds124wfegd/showcaller/internal/permission"

	"github.com/gin-gonic/gin"
)

type BannerBoard interface {
	Active() []entity.Banner
	Dismiss(id string) bool
}

type CountdownBoard interface {
	Board() []entity.Countdown
}

type PermissionGate interface {
	State() permission.State
	RequestPermission(ctx context.Context) (bool, error)
}

type AlertHandler struct {
	banners    BannerBoard
	countdowns CountdownBoard
	gate       PermissionGate
}

func NewAlertHandler(banners BannerBoard, countdowns CountdownBoard, gate PermissionGate) *AlertHandler {
	return &AlertHandler{
		banners:    banners,
		countdowns: countdowns,
		gate:       gate,
	}
}

func (h *AlertHandler) GetBanners(c *gin.Context) {
	banners := h.banners.Active()
	if banners == nil {
		banners = []entity.Banner{}
	}
	c.JSON(http.StatusOK, banners)
}

func (h *AlertHandler) DismissBanner(c *gin.Context) {
	if !h.banners.Dismiss(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "banner not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AlertHandler) GetCountdowns(c *gin.Context) {
	board := h.countdowns.Board()
	if board == nil {
		board = []entity.Countdown{}
	}
	c.JSON(http.StatusOK, board)
}

func (h *AlertHandler) GetPermission(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": h.gate.State()})
}

// RequestPermission prompts once; later calls return the settled answer.
func (h *AlertHandler) RequestPermission(c *gin.Context) {
	granted, err := h.gate.RequestPermission(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "state": h.gate.State()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"granted": granted,
		"state":   h.gate.State(),
	})
}
