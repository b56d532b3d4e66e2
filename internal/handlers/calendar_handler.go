package handlers

import (
	"net/http"

	"dealflow_backend/internal/auth"
	"dealflow_backend/internal/middleware"
	"dealflow_backend/internal/services"
	"dealflow_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type CalendarHandler struct {
	*BaseHandler
	calendarService services.CalendarService
}

func NewCalendarHandler(base *BaseHandler, calendarService services.CalendarService) *CalendarHandler {
	return &CalendarHandler{
		BaseHandler:     base,
		calendarService: calendarService,
	}
}

func (h *CalendarHandler) RegisterRoutes(r *gin.RouterGroup) {
	// Google redirects here without our bearer token; the signed state identifies the user.
	r.GET("/calendar/callback", h.Callback)

	cal := r.Group("/calendar")
	cal.Use(middleware.AuthMiddleware(), middleware.RequirePermission(auth.PermCalendarConnect))
	{
		cal.GET("", h.GetStatus)
		cal.GET("/connect", h.Connect)
		cal.DELETE("", h.Disconnect)
	}
}

func (h *CalendarHandler) Connect(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	url, err := h.calendarService.ConnectURL(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CalendarConnectResponse{AuthURL: url})
}

func (h *CalendarHandler) Callback(c *gin.Context) {
	if reason := c.Query("error"); reason != "" {
		c.JSON(http.StatusBadRequest, gin.H{"connected": false, "error": reason})
		return
	}

	userID, err := h.calendarService.CompleteConnection(c.Request.Context(), c.Query("state"), c.Query("code"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"connected": true, "user_id": userID})
}

func (h *CalendarHandler) GetStatus(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	status, err := h.calendarService.Status(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *CalendarHandler) Disconnect(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.calendarService.Disconnect(c.Request.Context(), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
