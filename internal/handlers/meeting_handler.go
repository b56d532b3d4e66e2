package handlers

import (
	"net/http"

	"dealflow_backend/internal/auth"
	"dealflow_backend/internal/middleware"
	"dealflow_backend/internal/models"
	"dealflow_backend/internal/services"
	"dealflow_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type MeetingHandler struct {
	*BaseHandler
	meetingService services.MeetingService
}

func NewMeetingHandler(base *BaseHandler, meetingService services.MeetingService) *MeetingHandler {
	return &MeetingHandler{
		BaseHandler:    base,
		meetingService: meetingService,
	}
}

func (h *MeetingHandler) RegisterRoutes(r *gin.RouterGroup) {
	meetings := r.Group("/meetings")
	meetings.Use(middleware.AuthMiddleware(), middleware.RequirePermission(auth.PermMeetingsRead))
	{
		meetings.GET("", h.ListMeetings)
		meetings.GET("/requests", h.ListRequests)
		meetings.PATCH("/requests/:id/status", h.UpdateRequestStatus)
		meetings.POST("/:id/calendar-sync", h.RetryCalendarSync)
	}
}

func (h *MeetingHandler) ListMeetings(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	meetings, err := h.meetingService.ListMeetings(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"meetings": meetings,
		"total":    len(meetings),
	})
}

func (h *MeetingHandler) ListRequests(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	requests, err := h.meetingService.ListRequests(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"total":    len(requests),
	})
}

func (h *MeetingHandler) UpdateRequestStatus(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateRequestStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	request, err := h.meetingService.UpdateRequestStatus(c.Request.Context(), userID, c.Param("id"), req.Status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, request)
}

func (h *MeetingHandler) RetryCalendarSync(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	isAdmin := CurrentRole(c) == models.UserRoleAdmin
	result, err := h.meetingService.RetryCalendarSync(c.Request.Context(), userID, isAdmin, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
