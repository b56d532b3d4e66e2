package dto

import (
	"time"

	"dealflow_backend/internal/algorithms"
)

// ========================
// Matching DTOs
// ========================

// RankedCompany is one company annotated with its score for an investor.
type RankedCompany struct {
	CompanyUserID string                `json:"company_user_id"`
	ProfileID     string                `json:"profile_id"`
	Name          string                `json:"name"`
	Sector        string                `json:"sector,omitempty"`
	Stage         string                `json:"stage,omitempty"`
	CapitalSought string                `json:"capital_sought,omitempty"`
	HQLocation    string                `json:"hq_location,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	MatchScore    algorithms.MatchScore `json:"match_score"`
}

type RecommendationCriteria struct {
	Limit    int `form:"limit"`
	MinScore int `form:"min_score"`
}

type CompatibilityResult struct {
	InvestorUserID string                `json:"investor_user_id"`
	CompanyUserID  string                `json:"company_user_id"`
	Score          algorithms.MatchScore `json:"score"`
}

type InvalidateCacheRequest struct {
	InvestorUserID string `json:"investor_user_id"`
	CompanyUserID  string `json:"company_user_id"`
}
