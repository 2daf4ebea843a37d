package transport

import (
	"net/http"

	"github.com/ds124wfegd/showcaller/internal/service"

	"github.com/gin-gonic/gin"
)

type ShowHandler struct {
	showService  service.ShowService
	callService  service.CallService
	groupService service.GroupService
}

func NewShowHandler(services *service.Services) *ShowHandler {
	return &ShowHandler{
		showService:  services.Shows,
		callService:  services.Calls,
		groupService: services.Groups,
	}
}

func (h *ShowHandler) CreateShow(c *gin.Context) {
	var req service.CreateShowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	show, err := h.showService.CreateShow(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, show)
}

func (h *ShowHandler) GetShow(c *gin.Context) {
	id, ok := parseID(c, "show")
	if !ok {
		return
	}

	show, err := h.showService.GetShow(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, show)
}

func (h *ShowHandler) GetAllShows(c *gin.Context) {
	shows, err := h.showService.GetAllShows(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, shows)
}

func (h *ShowHandler) UpdateShow(c *gin.Context) {
	id, ok := parseID(c, "show")
	if !ok {
		return
	}

	var req service.UpdateShowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	show, err := h.showService.UpdateShow(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, show)
}

func (h *ShowHandler) DeleteShow(c *gin.Context) {
	id, ok := parseID(c, "show")
	if !ok {
		return
	}

	if err := h.showService.DeleteShow(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ShowHandler) GetShowCalls(c *gin.Context) {
	id, ok := parseID(c, "show")
	if !ok {
		return
	}

	calls, err := h.callService.GetShowCalls(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, calls)
}

func (h *ShowHandler) GetShowGroups(c *gin.Context) {
	id, ok := parseID(c, "show")
	if !ok {
		return
	}

	groups, err := h.groupService.GetShowGroups(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, groups)
}
