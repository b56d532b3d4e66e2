// Package algorithms holds the pure investor/company compatibility scoring.
// Nothing here touches storage or caches; every missing input degrades to a
// neutral factor score instead of an error.
package algorithms

import (
	"math"
	"regexp"
	"strings"

	"dealflow_backend/internal/models"

	"github.com/shopspring/decimal"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

type FactorScores struct {
	Sector       float64 `json:"sector"`
	Stage        float64 `json:"stage"`
	TicketSize   float64 `json:"ticketSize"`
	Geography    float64 `json:"geography"`
	InvestorType float64 `json:"investorType"`
}

type MatchScore struct {
	Overall    int          `json:"overall"`
	Factors    FactorScores `json:"factors"`
	Confidence Confidence   `json:"confidence"`
}

// Weights must sum to 1.0.
type Weights struct {
	Sector       float64 `json:"sector"`
	Stage        float64 `json:"stage"`
	TicketSize   float64 `json:"ticket_size"`
	Geography    float64 `json:"geography"`
	InvestorType float64 `json:"investor_type"`
}

var DefaultWeights = Weights{
	Sector:       0.30,
	Stage:        0.25,
	TicketSize:   0.25,
	Geography:    0.15,
	InvestorType: 0.05,
}

// stageLadder orders funding stages from earliest to latest.
var stageLadder = []string{"seed", "series a", "series b", "growth", "late stage"}

// Capture groups: amount, unit.
var capitalPattern = regexp.MustCompile(`(?i)\$?\s*(\d+(?:\.\d+)?)\s*(million|thousand|m|k)?\b`)

// countryAliases folds common spellings onto one name before geography comparison.
var countryAliases = map[string]string{
	"usa":                      "united states",
	"us":                       "united states",
	"u.s.":                     "united states",
	"u.s.a.":                   "united states",
	"united states of america": "united states",
	"america":                  "united states",
	"uk":                       "united kingdom",
	"u.k.":                     "united kingdom",
	"great britain":            "united kingdom",
	"england":                  "united kingdom",
	"uae":                      "united arab emirates",
}

// CalculateMatchScore scores one investor against one company.
func CalculateMatchScore(investor *models.InvestorProfile, company *models.CompanyProfile) MatchScore {
	return CalculateMatchScoreWithWeights(investor, company, DefaultWeights)
}

func CalculateMatchScoreWithWeights(investor *models.InvestorProfile, company *models.CompanyProfile, w Weights) MatchScore {
	if investor == nil {
		investor = &models.InvestorProfile{}
	}
	if company == nil {
		company = &models.CompanyProfile{}
	}

	factors := FactorScores{
		Sector:       clamp(SectorScore(investor.GetSectors(), company.Sector)),
		Stage:        clamp(StageScore(investor.GetStages(), company.Stage)),
		TicketSize:   clamp(TicketSizeScore(investor.CheckSizeMin, investor.CheckSizeMax, company.CapitalSought)),
		Geography:    clamp(GeographyScore(investor.GetGeographies(), company.HQLocation)),
		InvestorType: clamp(InvestorTypeScore(company.GetPreferredInvestorTypes(), investor.Firm)),
	}

	weighted := factors.Sector*w.Sector +
		factors.Stage*w.Stage +
		factors.TicketSize*w.TicketSize +
		factors.Geography*w.Geography +
		factors.InvestorType*w.InvestorType

	return MatchScore{
		Overall:    int(clamp(math.Round(weighted))),
		Factors:    factors,
		Confidence: confidence(investor, company),
	}
}

// SectorScore uses the best score across the investor's sectors.
func SectorScore(investorSectors []string, companySector string) float64 {
	co := normalize(companySector)
	sectors := nonEmpty(investorSectors)
	if co == "" || len(sectors) == 0 {
		return 50
	}

	best := 20.0
	for _, s := range sectors {
		switch {
		case s == co:
			return 100
		case strings.Contains(s, co) || strings.Contains(co, s):
			best = math.Max(best, 75)
		}
	}
	return best
}

func StageScore(investorStages []string, companyStage string) float64 {
	co := normalize(companyStage)
	stages := nonEmpty(investorStages)
	if co == "" || len(stages) == 0 {
		return 60
	}

	for _, s := range stages {
		if s == co {
			return 100
		}
	}

	coIdx := stageIndex(co)
	if coIdx < 0 {
		return 50
	}

	minDist := -1
	for _, s := range stages {
		idx := stageIndex(s)
		if idx < 0 {
			continue
		}
		d := idx - coIdx
		if d < 0 {
			d = -d
		}
		if minDist < 0 || d < minDist {
			minDist = d
		}
	}

	switch {
	case minDist < 0:
		return 50
	case minDist <= 1:
		return 90
	case minDist <= 2:
		return 60
	default:
		return 30
	}
}

// TicketSizeScore compares the amount sought with the investor's check range.
// A half-open range is checked against its present bound only.
func TicketSizeScore(min, max decimal.NullDecimal, capitalSought string) float64 {
	if !min.Valid && !max.Valid {
		return 60
	}

	amount, ok := ParseCapitalAmount(capitalSought)
	if !ok || !amount.IsPositive() {
		return 50
	}

	hundred := decimal.NewFromInt(100)
	if min.Valid && amount.LessThan(min.Decimal) {
		if !min.Decimal.IsPositive() {
			return 100
		}
		ratio, _ := amount.Div(min.Decimal).Mul(hundred).Float64()
		return math.Max(30, ratio)
	}
	if max.Valid && amount.GreaterThan(max.Decimal) {
		ratio, _ := max.Decimal.Div(amount).Mul(hundred).Float64()
		return math.Max(30, ratio)
	}
	return 100
}

func GeographyScore(investorGeographies []string, hqLocation string) float64 {
	hq := normalize(hqLocation)
	geos := nonEmpty(investorGeographies)

	if hq == "" || len(geos) == 0 {
		return 50
	}

	hqTerms := locationTerms(hq)
	for _, g := range geos {
		if strings.Contains(hq, g) || strings.Contains(g, hq) {
			return 100
		}
		canonical := canonicalCountry(g)
		for _, term := range hqTerms {
			if term == canonical {
				return 100
			}
		}
	}
	return 50
}

func InvestorTypeScore(preferredTypes []string, firm string) float64 {
	prefs := nonEmpty(preferredTypes)
	if len(prefs) == 0 {
		return 70
	}

	f := normalize(firm)
	if f == "" {
		return 60
	}
	for _, p := range prefs {
		if strings.Contains(f, p) || strings.Contains(p, f) {
			return 100
		}
	}
	return 60
}

// ParseCapitalAmount reads the first amount in free text such as "$2M",
// "500k" or "1,250,000". ok is false when no amount is present.
func ParseCapitalAmount(text string) (decimal.Decimal, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if cleaned == "" {
		return decimal.Zero, false
	}

	m := capitalPattern.FindStringSubmatch(cleaned)
	if m == nil {
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(m[1])
	if err != nil {
		return decimal.Zero, false
	}

	switch strings.ToLower(m[2]) {
	case "m", "million":
		amount = amount.Mul(decimal.NewFromInt(1_000_000))
	case "k", "thousand":
		amount = amount.Mul(decimal.NewFromInt(1_000))
	}
	return amount, true
}

// confidence is the share of the seven tracked inputs that are present.
func confidence(investor *models.InvestorProfile, company *models.CompanyProfile) Confidence {
	present := 0
	for _, ok := range []bool{
		len(nonEmpty(investor.GetSectors())) > 0,
		len(nonEmpty(investor.GetStages())) > 0,
		investor.CheckSizeMin.Valid && investor.CheckSizeMax.Valid,
		len(nonEmpty(investor.GetGeographies())) > 0,
		normalize(company.Sector) != "",
		normalize(company.Stage) != "",
		normalize(company.CapitalSought) != "",
	} {
		if ok {
			present++
		}
	}

	ratio := float64(present) / 7
	switch {
	case ratio >= 0.75:
		return ConfidenceHigh
	case ratio >= 0.5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func stageIndex(stage string) int {
	for i, s := range stageLadder {
		if s == stage {
			return i
		}
	}
	return -1
}

// locationTerms splits "San Francisco, USA" into canonical parts.
func locationTerms(hq string) []string {
	parts := strings.Split(hq, ",")
	terms := make([]string, 0, len(parts)+1)
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			terms = append(terms, canonicalCountry(p))
		}
	}
	return append(terms, canonicalCountry(hq))
}

func canonicalCountry(s string) string {
	if c, ok := countryAliases[s]; ok {
		return c
	}
	return s
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if n := normalize(v); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
