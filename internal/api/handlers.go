package api

import (
	"errors"
	"net/http"
	"strconv"

	"broadcast/internal/models"
	"broadcast/internal/service"

	"github.com/gin-gonic/gin"
)

const defaultEventsLimit = 50

type Handler struct {
	Scheduler *service.Scheduler
	Service   *service.BroadcastService
}

func NewAPIHandler(scheduler *service.Scheduler, service *service.BroadcastService) *Handler {
	return &Handler{
		Scheduler: scheduler,
		Service:   service,
	}
}

// RegisterRoutes mounts the chat server API on r.
func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.GET("/", h.Welcome)

	a := r.Group("/api", requireAuthentication)
	{
		a.POST("/broadcast/", h.Broadcast)
		a.GET("/rooms/", h.ListRooms)
		a.POST("/rooms/", h.AddRoom)
		a.DELETE("/rooms/:room", h.RemoveRoom)
		a.GET("/events/", h.ListEvents)
	}

	v1 := r.Group("/api/v1", requireAuthentication)
	{
		v1.POST("/debug/start", h.StartDebug)
		v1.POST("/debug/stop", h.StopDebug)
	}
}

// requireAuthentication guards the protected routes. Every caller is trusted for now.
func requireAuthentication(c *gin.Context) {
	c.Next()
}

func (h *Handler) Welcome(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to chat server")
}

func (h *Handler) Broadcast(c *gin.Context) {
	var req models.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Msg == "" {
		c.String(http.StatusBadRequest, "No message provided")
		return
	}
	if _, err := h.Service.Broadcast(c.Request.Context(), req.Msg); err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			c.String(http.StatusBadRequest, "No message provided")
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.String(http.StatusCreated, "Message sent to all rooms")
}

func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.Service.ActiveRooms(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *Handler) AddRoom(c *gin.Context) {
	var req models.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	room, err := h.Service.AddRoom(c.Request.Context(), req.Room)
	if err != nil {
		if errors.Is(err, service.ErrEmptyRoom) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"room": room})
}

func (h *Handler) RemoveRoom(c *gin.Context) {
	err := h.Service.RemoveRoom(c.Request.Context(), c.Param("room"))
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, service.ErrEmptyRoom), errors.Is(err, service.ErrMainRoom):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *Handler) ListEvents(c *gin.Context) {
	limit := defaultEventsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	events, err := h.Service.ListEvents(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *Handler) StartDebug(c *gin.Context) {
	if h.Scheduler.IsRunning() {
		c.JSON(http.StatusOK, gin.H{"message": "Debug broadcaster already running"})
		return
	}
	if err := h.Scheduler.Start(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Debug broadcaster started"})
}

func (h *Handler) StopDebug(c *gin.Context) {
	if !h.Scheduler.IsRunning() {
		c.JSON(http.StatusOK, gin.H{"message": "Debug broadcaster already stopped"})
		return
	}
	_ = h.Scheduler.Stop()
	c.JSON(http.StatusOK, gin.H{"message": "Debug broadcaster stopped"})
}
