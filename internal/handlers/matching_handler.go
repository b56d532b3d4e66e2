package handlers

import (
	"net/http"

	"dealflow_backend/internal/auth"
	"dealflow_backend/internal/middleware"
	"dealflow_backend/internal/services"
	"dealflow_backend/internal/services/dto"
	"dealflow_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type MatchingHandler struct {
	*BaseHandler
	matchingService services.MatchingService
}

func NewMatchingHandler(base *BaseHandler, matchingService services.MatchingService) *MatchingHandler {
	return &MatchingHandler{
		BaseHandler:     base,
		matchingService: matchingService,
	}
}

func (h *MatchingHandler) RegisterRoutes(r *gin.RouterGroup) {
	matching := r.Group("/matching")
	matching.Use(middleware.AuthMiddleware(), middleware.RequirePermission(auth.PermMatchingRead))
	{
		matching.GET("/recommendations", h.GetRecommendations)
		matching.GET("/compatibility", h.GetCompatibility)
	}

	admin := r.Group("/admin/matching")
	admin.Use(middleware.AuthMiddleware(), middleware.RequirePermission(auth.PermCacheAdmin))
	{
		admin.POST("/cache/invalidate", h.InvalidateCache)
		admin.DELETE("/cache", h.ClearCache)
	}
}

func (h *MatchingHandler) GetRecommendations(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var criteria dto.RecommendationCriteria
	if !h.BindAndValidate_Query(c, &criteria) {
		return
	}
	if criteria.Limit <= 0 || criteria.Limit > 100 {
		criteria.Limit = 20
	}

	companies, err := h.matchingService.RecommendCompanies(c.Request.Context(), userID, criteria)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"companies": companies,
		"total":     len(companies),
	})
}

func (h *MatchingHandler) GetCompatibility(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	companyID := c.Query("company_id")
	if companyID == "" {
		apperrors.HandleError(c, apperrors.NewBadRequestError("company_id is required"))
		return
	}

	result, err := h.matchingService.GetCompatibility(c.Request.Context(), userID, companyID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// --- Admin ---

func (h *MatchingHandler) InvalidateCache(c *gin.Context) {
	var req dto.InvalidateCacheRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	if req.InvestorUserID == "" && req.CompanyUserID == "" {
		apperrors.HandleError(c, apperrors.NewBadRequestError("investor_user_id or company_user_id is required"))
		return
	}

	removed := 0
	if req.InvestorUserID != "" {
		removed += h.matchingService.InvalidateInvestor(req.InvestorUserID)
	}
	if req.CompanyUserID != "" {
		removed += h.matchingService.InvalidateCompany(req.CompanyUserID)
	}

	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h *MatchingHandler) ClearCache(c *gin.Context) {
	h.matchingService.ClearCache()
	c.Status(http.StatusNoContent)
}
