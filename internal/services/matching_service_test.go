package services

import (
	"context"
	"testing"
	"time"

	"dealflow_backend/internal/cache"
	"dealflow_backend/internal/models"
	"dealflow_backend/internal/repositories"
	"dealflow_backend/internal/services/dto"
	"dealflow_backend/internal/testutil"
	"dealflow_backend/pkg/apperrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saasInvestor(userID string) *models.InvestorProfile {
	p := &models.InvestorProfile{UserID: userID, Firm: "Northwind Capital"}
	p.SetSectors([]string{"SaaS"})
	p.SetStages([]string{"Series A"})
	p.SetGeographies([]string{"United States"})
	lo, hi := decimal.NewFromInt(1_000_000), decimal.NewFromInt(5_000_000)
	p.SetCheckSize(&lo, &hi)
	return p
}

func strongCompany(userID string) *models.CompanyProfile {
	return &models.CompanyProfile{
		UserID:        userID,
		Name:          "Ledgerly",
		Sector:        "SaaS",
		Stage:         "Series A",
		CapitalSought: "$2M",
		HQLocation:    "San Francisco, USA",
	}
}

func weakCompany(userID string) *models.CompanyProfile {
	return &models.CompanyProfile{
		UserID:        userID,
		Name:          "Fieldgrow",
		Sector:        "Agriculture",
		Stage:         "Seed",
		CapitalSought: "$500k",
	}
}

func TestCalculateMatchServesCachedScore(t *testing.T) {
	svc := NewMatchingService(nil, cache.NewMemoryScoreCache(time.Hour, nil))
	ctx := context.Background()
	inv := saasInvestor("inv-1")
	co := strongCompany("co-1")

	first := svc.CalculateMatch(ctx, inv, co)
	assert.GreaterOrEqual(t, first.Overall, 95)

	co.Sector = "Mining"
	assert.Equal(t, first, svc.CalculateMatch(ctx, inv, co))

	assert.Equal(t, 1, svc.InvalidateCompany("co-1"))
	fresh := svc.CalculateMatch(ctx, inv, co)
	assert.Less(t, fresh.Overall, first.Overall)

	assert.Equal(t, 1, svc.InvalidateInvestor("inv-1"))
	assert.Equal(t, 0, svc.InvalidateInvestor("inv-1"))
}

func TestCalculateMatchSkipsCacheForUnsavedProfiles(t *testing.T) {
	scores := cache.NewMemoryScoreCache(time.Hour, nil)
	svc := NewMatchingService(nil, scores)
	ctx := context.Background()

	inv := &models.InvestorProfile{Firm: "Northwind Capital"}
	inv.SetSectors([]string{"SaaS"})

	saas := svc.CalculateMatch(ctx, inv, &models.CompanyProfile{Sector: "SaaS"})
	agri := svc.CalculateMatch(ctx, inv, &models.CompanyProfile{Sector: "Agriculture"})

	assert.Equal(t, 100.0, saas.Factors.Sector)
	assert.Equal(t, 20.0, agri.Factors.Sector)
	assert.Less(t, agri.Overall, saas.Overall)
	_, cached := scores.Get(cache.Key("", ""))
	assert.False(t, cached)
}

func TestBatchCalculateMatchesOrdersByScoreThenRecency(t *testing.T) {
	svc := NewMatchingService(nil, nil)
	inv := saasInvestor("inv-1")

	older := strongCompany("co-old")
	older.ID, older.CreatedAt = "p-old", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := strongCompany("co-new")
	newer.ID, newer.CreatedAt = "p-new", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	weak := weakCompany("co-weak")
	weak.ID, weak.CreatedAt = "p-weak", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	ranked := svc.BatchCalculateMatches(context.Background(), inv, []models.CompanyProfile{*weak, *older, *newer})
	require.Len(t, ranked, 3)
	assert.Equal(t, "co-new", ranked[0].CompanyUserID)
	assert.Equal(t, "co-old", ranked[1].CompanyUserID)
	assert.Equal(t, "co-weak", ranked[2].CompanyUserID)
	assert.Equal(t, ranked[0].MatchScore.Overall, ranked[1].MatchScore.Overall)
}

func TestRecommendCompanies(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	profiles := repositories.NewProfileRepository(db)
	svc := NewMatchingService(profiles, nil)

	invUser := testutil.CreateUser(t, db, models.UserRoleInvestor, false)
	strongUser := testutil.CreateUser(t, db, models.UserRoleCompany, false)
	weakUser := testutil.CreateUser(t, db, models.UserRoleCompany, false)
	require.NoError(t, profiles.SaveInvestorProfile(ctx, saasInvestor(invUser.ID)))
	require.NoError(t, profiles.SaveCompanyProfile(ctx, strongCompany(strongUser.ID)))
	require.NoError(t, profiles.SaveCompanyProfile(ctx, weakCompany(weakUser.ID)))

	all, err := svc.RecommendCompanies(ctx, invUser.ID, dto.RecommendationCriteria{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, strongUser.ID, all[0].CompanyUserID)

	filtered, err := svc.RecommendCompanies(ctx, invUser.ID, dto.RecommendationCriteria{MinScore: 60})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Ledgerly", filtered[0].Name)

	limited, err := svc.RecommendCompanies(ctx, invUser.ID, dto.RecommendationCriteria{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = svc.RecommendCompanies(ctx, strongUser.ID, dto.RecommendationCriteria{})
	assert.ErrorIs(t, err, apperrors.ErrInvestorProfileNotFound)
}

func TestGetCompatibility(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	profiles := repositories.NewProfileRepository(db)
	svc := NewMatchingService(profiles, nil)

	invUser := testutil.CreateUser(t, db, models.UserRoleInvestor, false)
	coUser := testutil.CreateUser(t, db, models.UserRoleCompany, false)
	require.NoError(t, profiles.SaveInvestorProfile(ctx, saasInvestor(invUser.ID)))

	_, err := svc.GetCompatibility(ctx, invUser.ID, coUser.ID)
	assert.ErrorIs(t, err, apperrors.ErrCompanyProfileNotFound)

	require.NoError(t, profiles.SaveCompanyProfile(ctx, strongCompany(coUser.ID)))
	res, err := svc.GetCompatibility(ctx, invUser.ID, coUser.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Score.Overall, 95)
	assert.Equal(t, coUser.ID, res.CompanyUserID)
}
