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

type SchedulingHandler struct {
	*BaseHandler
	userService      services.UserService
	schedulerService services.SchedulerService
}

func NewSchedulingHandler(base *BaseHandler, userService services.UserService, schedulerService services.SchedulerService) *SchedulingHandler {
	return &SchedulingHandler{
		BaseHandler:      base,
		userService:      userService,
		schedulerService: schedulerService,
	}
}

func (h *SchedulingHandler) RegisterRoutes(r *gin.RouterGroup) {
	scheduling := r.Group("/scheduling")
	scheduling.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleInvestor, models.UserRoleCompany))
	{
		scheduling.GET("/opt-in", h.GetOptIn)
		scheduling.PUT("/opt-in", h.SetOptIn)
	}

	admin := r.Group("/admin/scheduler")
	admin.Use(middleware.AuthMiddleware(), middleware.RequirePermission(auth.PermSchedulerAdmin))
	{
		admin.POST("/run", h.RunScheduler)
		admin.GET("/potential-matches", h.GetPotentialMatches)
		admin.POST("/pairs", h.SchedulePair)
	}
}

func (h *SchedulingHandler) GetOptIn(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"enabled": user.AutoArrangeOptIn})
}

func (h *SchedulingHandler) SetOptIn(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.OptInRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.SetAutoArrangeOptIn(c.Request.Context(), userID, *req.Enabled)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"enabled": user.AutoArrangeOptIn})
}

// --- Admin ---

func (h *SchedulingHandler) RunScheduler(c *gin.Context) {
	summary := h.schedulerService.RunScheduler(c.Request.Context())
	c.JSON(http.StatusOK, summary)
}

func (h *SchedulingHandler) GetPotentialMatches(c *gin.Context) {
	matches, err := h.schedulerService.FindPotentialMatches(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"matches": matches,
		"total":   len(matches),
	})
}

func (h *SchedulingHandler) SchedulePair(c *gin.Context) {
	var req dto.SchedulePairRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	result, err := h.schedulerService.ScheduleAutoMeeting(c.Request.Context(), req.InvestorID, req.CompanyID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	status := http.StatusOK
	if result.Status == dto.AutoMeetingScheduled {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}
