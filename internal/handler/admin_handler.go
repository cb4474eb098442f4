package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/roomly/service-booking/internal/application"
	"github.com/roomly/service-booking/internal/middleware"
	"github.com/roomly/service-booking/internal/response"
)

// AdminHandler handles administrative booking, catalog and reporting routes.
type AdminHandler struct {
	bookings  *application.BookingService
	rooms     *application.RoomService
	dashboard *application.DashboardService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	bookings *application.BookingService,
	rooms *application.RoomService,
	dashboard *application.DashboardService,
) *AdminHandler {
	return &AdminHandler{bookings: bookings, rooms: rooms, dashboard: dashboard}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.IdentityMiddleware(), middleware.RequireAdmin())
	{
		admin.GET("/bookings", h.ListBookings)
		admin.PATCH("/bookings/:id/status", h.UpdateBookingStatus)
		admin.GET("/stats/dashboard", h.Dashboard)

		admin.GET("/rooms", h.ListRooms)
		admin.POST("/rooms", h.CreateRoom)
		admin.PUT("/rooms/:id", h.UpdateRoom)
		admin.DELETE("/rooms/:id", h.DeleteRoom)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	bookings, total, err := h.bookings.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, bookings, total, page, limit)
}

// UpdateBookingStatus handles PATCH /api/v1/admin/bookings/:id/status.
func (h *AdminHandler) UpdateBookingStatus(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.bookings.UpdateBookingStatus(c.Request.Context(), bookingID, body.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Dashboard handles GET /api/v1/admin/stats/dashboard.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.dashboard.GetDashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// ListRooms handles GET /api/v1/admin/rooms, including non-operational rooms.
func (h *AdminHandler) ListRooms(c *gin.Context) {
	rooms, err := h.rooms.ListRooms(c.Request.Context(), true)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, rooms)
}

// CreateRoom handles POST /api/v1/admin/rooms.
func (h *AdminHandler) CreateRoom(c *gin.Context) {
	var req application.SaveRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	room, err := h.rooms.CreateRoom(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, room)
}

// UpdateRoom handles PUT /api/v1/admin/rooms/:id.
func (h *AdminHandler) UpdateRoom(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}

	var req application.SaveRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	room, err := h.rooms.UpdateRoom(c.Request.Context(), roomID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, room)
}

// DeleteRoom handles DELETE /api/v1/admin/rooms/:id.
func (h *AdminHandler) DeleteRoom(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}

	if err := h.rooms.DeleteRoom(c.Request.Context(), roomID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
