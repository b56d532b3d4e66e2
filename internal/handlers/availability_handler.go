package handlers

import (
	"net/http"
	"time"

	"dealflow_backend/internal/auth"
	"dealflow_backend/internal/middleware"
	"dealflow_backend/internal/services"
	"dealflow_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	*BaseHandler
	availabilityService services.AvailabilityService
}

func NewAvailabilityHandler(base *BaseHandler, availabilityService services.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{
		BaseHandler:         base,
		availabilityService: availabilityService,
	}
}

func (h *AvailabilityHandler) RegisterRoutes(r *gin.RouterGroup) {
	availability := r.Group("/availability")
	availability.Use(middleware.AuthMiddleware(), middleware.RequirePermission(auth.PermAvailabilityEdit))
	{
		availability.GET("", h.GetAvailability)
		availability.PUT("", h.SetAvailability)
		availability.GET("/overlap/:userId", h.GetOverlap)
	}
}

func (h *AvailabilityHandler) GetAvailability(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	windows, err := h.availabilityService.GetWindows(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"windows": windows})
}

func (h *AvailabilityHandler) SetAvailability(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SetAvailabilityRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	windows, err := h.availabilityService.SetWindows(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"windows": windows})
}

func (h *AvailabilityHandler) GetOverlap(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	slot, err := h.availabilityService.FindOverlap(c.Request.Context(), userID, c.Param("userId"), time.Now())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"found": slot != nil,
		"slot":  slot,
	})
}
