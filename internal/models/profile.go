package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// InvestorProfile is owned by an investor user. Firm is the only required field;
// everything else may be empty and the matcher degrades to neutral scores.
type InvestorProfile struct {
	BaseModel
	UserID       string              `gorm:"uniqueIndex;not null" json:"user_id"`
	Firm         string              `gorm:"not null" json:"firm"`
	Sectors      datatypes.JSON      `json:"sectors"`     // ["SaaS", "Fintech"]
	Stages       datatypes.JSON      `json:"stages"`      // ["Seed", "Series A"]
	Geographies  datatypes.JSON      `json:"geographies"` // ["United States"]
	CheckSizeMin decimal.NullDecimal `gorm:"type:numeric(20,2)" json:"check_size_min"`
	CheckSizeMax decimal.NullDecimal `gorm:"type:numeric(20,2)" json:"check_size_max"`
}

func (p *InvestorProfile) GetSectors() []string     { return decodeStrings(p.Sectors) }
func (p *InvestorProfile) GetStages() []string      { return decodeStrings(p.Stages) }
func (p *InvestorProfile) GetGeographies() []string { return decodeStrings(p.Geographies) }

func (p *InvestorProfile) SetSectors(v []string)     { p.Sectors = encodeStrings(v) }
func (p *InvestorProfile) SetStages(v []string)      { p.Stages = encodeStrings(v) }
func (p *InvestorProfile) SetGeographies(v []string) { p.Geographies = encodeStrings(v) }

// SetCheckSize sets both bounds; pass nil to clear one.
func (p *InvestorProfile) SetCheckSize(min, max *decimal.Decimal) {
	p.CheckSizeMin = toNull(min)
	p.CheckSizeMax = toNull(max)
}

// CompanyProfile is owned by a company user.
type CompanyProfile struct {
	BaseModel
	UserID                 string         `gorm:"uniqueIndex;not null" json:"user_id"`
	Name                   string         `json:"name"`
	Sector                 string         `json:"sector"`
	Stage                  string         `json:"stage"`
	CapitalSought          string         `json:"capital_sought"` // free text, e.g. "$2M"
	HQLocation             string         `json:"hq_location"`
	PreferredInvestorTypes datatypes.JSON `json:"preferred_investor_types"`
}

func (p *CompanyProfile) GetPreferredInvestorTypes() []string {
	return decodeStrings(p.PreferredInvestorTypes)
}

func (p *CompanyProfile) SetPreferredInvestorTypes(v []string) {
	p.PreferredInvestorTypes = encodeStrings(v)
}

func decodeStrings(raw datatypes.JSON) []string {
	var out []string
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return out
}

func encodeStrings(v []string) datatypes.JSON {
	if v == nil {
		v = []string{}
	}
	data, _ := json.Marshal(v)
	return datatypes.JSON(data)
}

func toNull(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
