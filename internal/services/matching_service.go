package services

import (
	"context"
	"errors"
	"sort"

	"dealflow_backend/internal/algorithms"
	"dealflow_backend/internal/cache"
	"dealflow_backend/internal/logger"
	"dealflow_backend/internal/models"
	"dealflow_backend/internal/repositories"
	"dealflow_backend/internal/services/dto"
	"dealflow_backend/pkg/apperrors"
)

const defaultRecommendationLimit = 20

type MatchingService interface {
	// CalculateMatch scores one pair, served from cache within the TTL.
	CalculateMatch(ctx context.Context, investor *models.InvestorProfile, company *models.CompanyProfile) algorithms.MatchScore
	// BatchCalculateMatches ranks companies by overall score, ties newest first.
	BatchCalculateMatches(ctx context.Context, investor *models.InvestorProfile, companies []models.CompanyProfile) []dto.RankedCompany

	RecommendCompanies(ctx context.Context, investorUserID string, criteria dto.RecommendationCriteria) ([]dto.RankedCompany, error)
	GetCompatibility(ctx context.Context, investorUserID, companyUserID string) (*dto.CompatibilityResult, error)

	InvalidateInvestor(investorUserID string) int
	InvalidateCompany(companyUserID string) int
	ClearCache()
}

type matchingService struct {
	profileRepo repositories.ProfileRepository
	scores      cache.ScoreCache
	weights     algorithms.Weights
}

func NewMatchingService(profileRepo repositories.ProfileRepository, scores cache.ScoreCache) MatchingService {
	if scores == nil {
		scores = cache.NewMemoryScoreCache(cache.DefaultTTL, nil)
	}
	return &matchingService{
		profileRepo: profileRepo,
		scores:      scores,
		weights:     algorithms.DefaultWeights,
	}
}

func (s *matchingService) CalculateMatch(ctx context.Context, investor *models.InvestorProfile, company *models.CompanyProfile) algorithms.MatchScore {
	// Unsaved profiles have no identity to key the cache on.
	if investor == nil || company == nil || investor.UserID == "" || company.UserID == "" {
		return algorithms.CalculateMatchScoreWithWeights(investor, company, s.weights)
	}

	key := cache.Key(investor.UserID, company.UserID)
	if score, ok := s.scores.Get(key); ok {
		return score
	}

	score := algorithms.CalculateMatchScoreWithWeights(investor, company, s.weights)
	s.scores.Set(key, score)
	return score
}

func (s *matchingService) BatchCalculateMatches(ctx context.Context, investor *models.InvestorProfile, companies []models.CompanyProfile) []dto.RankedCompany {
	ranked := make([]dto.RankedCompany, 0, len(companies))
	for i := range companies {
		co := &companies[i]
		ranked = append(ranked, dto.RankedCompany{
			CompanyUserID: co.UserID,
			ProfileID:     co.ID,
			Name:          co.Name,
			Sector:        co.Sector,
			Stage:         co.Stage,
			CapitalSought: co.CapitalSought,
			HQLocation:    co.HQLocation,
			CreatedAt:     co.CreatedAt,
			MatchScore:    s.CalculateMatch(ctx, investor, co),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].MatchScore.Overall != ranked[j].MatchScore.Overall {
			return ranked[i].MatchScore.Overall > ranked[j].MatchScore.Overall
		}
		return ranked[i].CreatedAt.After(ranked[j].CreatedAt)
	})
	return ranked
}

func (s *matchingService) RecommendCompanies(ctx context.Context, investorUserID string, criteria dto.RecommendationCriteria) ([]dto.RankedCompany, error) {
	investor, err := s.profileRepo.FindInvestorProfileByUserID(ctx, investorUserID)
	if err != nil {
		return nil, handleProfileError(err)
	}

	companies, err := s.profileRepo.ListCompanyProfiles(ctx)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	limit := criteria.Limit
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}

	ranked := s.BatchCalculateMatches(ctx, investor, companies)
	out := make([]dto.RankedCompany, 0, limit)
	for _, rc := range ranked {
		if rc.MatchScore.Overall < criteria.MinScore {
			// sorted descending, nothing further qualifies
			break
		}
		out = append(out, rc)
		if len(out) == limit {
			break
		}
	}

	logger.CtxDebug(ctx, "recommendations computed",
		"investor_user_id", investorUserID, "candidates", len(companies), "returned", len(out))
	return out, nil
}

func (s *matchingService) GetCompatibility(ctx context.Context, investorUserID, companyUserID string) (*dto.CompatibilityResult, error) {
	investor, err := s.profileRepo.FindInvestorProfileByUserID(ctx, investorUserID)
	if err != nil {
		return nil, handleProfileError(err)
	}
	company, err := s.profileRepo.FindCompanyProfileByUserID(ctx, companyUserID)
	if err != nil {
		return nil, handleProfileError(err)
	}

	return &dto.CompatibilityResult{
		InvestorUserID: investorUserID,
		CompanyUserID:  companyUserID,
		Score:          s.CalculateMatch(ctx, investor, company),
	}, nil
}

func (s *matchingService) InvalidateInvestor(investorUserID string) int {
	return s.scores.DeleteWhere(cache.InvestorPrefix(investorUserID))
}

func (s *matchingService) InvalidateCompany(companyUserID string) int {
	return s.scores.DeleteWhere(cache.CompanySuffix(companyUserID))
}

func (s *matchingService) ClearCache() {
	s.scores.Clear()
}

func handleProfileError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrInvestorProfileNotFound):
		return apperrors.ErrInvestorProfileNotFound
	case errors.Is(err, repositories.ErrCompanyProfileNotFound):
		return apperrors.ErrCompanyProfileNotFound
	default:
		return apperrors.InternalError(err)
	}
}
