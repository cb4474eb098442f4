package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/roomly/service-booking/internal/application"
	"github.com/roomly/service-booking/internal/middleware"
	"github.com/roomly/service-booking/internal/response"
)

// RoomHandler handles HTTP requests for the public room catalog.
type RoomHandler struct {
	service *application.RoomService
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(service *application.RoomService) *RoomHandler {
	return &RoomHandler{service: service}
}

// RegisterRoutes registers public room routes on the given router group.
func (h *RoomHandler) RegisterRoutes(r *gin.RouterGroup) {
	rooms := r.Group("/api/v1/rooms")
	rooms.Use(middleware.IdentityMiddleware())
	{
		rooms.GET("", h.ListRooms)
		rooms.GET("/:id", h.GetRoom)
	}
}

// ListRooms handles GET /api/v1/rooms. Supports ?min_capacity=N filtering;
// only operational rooms are listed.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	if raw := c.Query("min_capacity"); raw != "" {
		minCapacity, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(c, "min_capacity must be an integer")
			return
		}
		rooms, err := h.service.ListRoomsByCapacity(c.Request.Context(), minCapacity)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, rooms)
		return
	}

	rooms, err := h.service.ListRooms(c.Request.Context(), false)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, rooms)
}

// GetRoom handles GET /api/v1/rooms/:id.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}

	room, err := h.service.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, room)
}
