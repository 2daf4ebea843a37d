package transport

import (
	"net/http"

	"github.com/ds124wfegd/showcaller/internal/service"

	"github.com/gin-gonic/gin"
)

type CallHandler struct {
	callService service.CallService
}

func NewCallHandler(callService service.CallService) *CallHandler {
	return &CallHandler{callService: callService}
}

func (h *CallHandler) CreateCall(c *gin.Context) {
	var req service.CreateCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	call, err := h.callService.CreateCall(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, call)
}

func (h *CallHandler) GetCall(c *gin.Context) {
	id, ok := parseID(c, "call")
	if !ok {
		return
	}

	call, err := h.callService.GetCall(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, call)
}

func (h *CallHandler) UpdateCall(c *gin.Context) {
	id, ok := parseID(c, "call")
	if !ok {
		return
	}

	var req service.UpdateCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	call, err := h.callService.UpdateCall(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, call)
}

func (h *CallHandler) DeleteCall(c *gin.Context) {
	id, ok := parseID(c, "call")
	if !ok {
		return
	}

	if err := h.callService.DeleteCall(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
