package model

// EntitySummary is the smallest rendering of any node.
type EntitySummary struct {
	Model          Kind   `json:"model"`
	UUID           string `json:"uuid"`
	Name           string `json:"name"`
	Differentiator string `json:"differentiator,omitempty"`
}

// MaterialSummary renders a material together with whatever hierarchy
// context the caller chose to populate.
type MaterialSummary struct {
	UUID           string            `json:"uuid"`
	Name           string            `json:"name"`
	Differentiator string            `json:"differentiator,omitempty"`
	Format         string            `json:"format,omitempty"`
	Year           int               `json:"year,omitempty"`
	SurMaterial    *MaterialSummary  `json:"surMaterial,omitempty"`
	SubMaterials   []MaterialSummary `json:"subMaterials,omitempty"`
}

type VenueSummary struct {
	UUID           string         `json:"uuid"`
	Name           string         `json:"name"`
	Differentiator string         `json:"differentiator,omitempty"`
	SurVenue       *VenueSummary  `json:"surVenue,omitempty"`
	SubVenues      []VenueSummary `json:"subVenues,omitempty"`
}

type ProductionSummary struct {
	UUID           string              `json:"uuid"`
	Name           string              `json:"name"`
	Subtitle       string              `json:"subtitle,omitempty"`
	StartDate      string              `json:"startDate,omitempty"`
	EndDate        string              `json:"endDate,omitempty"`
	Venue          *VenueSummary       `json:"venue,omitempty"`
	SurProduction  *ProductionSummary  `json:"surProduction,omitempty"`
	SubProductions []ProductionSummary `json:"subProductions,omitempty"`
}

type WritingCreditView struct {
	Name       string          `json:"name,omitempty"`
	CreditType string          `json:"creditType,omitempty"`
	Entities   []EntitySummary `json:"entities"`
}

type CharacterView struct {
	UUID        string `json:"uuid"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Qualifier   string `json:"qualifier,omitempty"`
}

type CharacterGroupView struct {
	Name       string          `json:"name,omitempty"`
	Characters []CharacterView `json:"characters"`
}

type MaterialShow struct {
	UUID                       string               `json:"uuid"`
	Name                       string               `json:"name"`
	Differentiator             string               `json:"differentiator,omitempty"`
	Subtitle                   string               `json:"subtitle,omitempty"`
	Format                     string               `json:"format,omitempty"`
	Year                       int                  `json:"year,omitempty"`
	WritingCredits             []WritingCreditView  `json:"writingCredits"`
	OriginalVersionMaterial    *MaterialSummary     `json:"originalVersionMaterial,omitempty"`
	SubsequentVersionMaterials []MaterialSummary    `json:"subsequentVersionMaterials"`
	SourcingMaterials          []MaterialSummary    `json:"sourcingMaterials"`
	SurMaterial                *MaterialSummary     `json:"surMaterial,omitempty"`
	SubMaterials               []MaterialSummary    `json:"subMaterials"`
	CharacterGroups            []CharacterGroupView `json:"characterGroups"`
	Productions                []ProductionSummary  `json:"productions"`
	Awards                     []Award              `json:"awards"`
}

type RoleView struct {
	Name          string         `json:"name"`
	Character     *EntitySummary `json:"character,omitempty"`
	CharacterName string         `json:"characterName,omitempty"`
	Qualifier     string         `json:"qualifier,omitempty"`
	IsAlternate   bool           `json:"isAlternate,omitempty"`
}

type CastMemberView struct {
	UUID           string     `json:"uuid"`
	Name           string     `json:"name"`
	Differentiator string     `json:"differentiator,omitempty"`
	Roles          []RoleView `json:"roles"`
}

type ProductionShow struct {
	UUID           string              `json:"uuid"`
	Name           string              `json:"name"`
	Subtitle       string              `json:"subtitle,omitempty"`
	StartDate      string              `json:"startDate,omitempty"`
	PressDate      string              `json:"pressDate,omitempty"`
	EndDate        string              `json:"endDate,omitempty"`
	Material       *MaterialSummary    `json:"material,omitempty"`
	Venue          *VenueSummary       `json:"venue,omitempty"`
	SurProduction  *ProductionSummary  `json:"surProduction,omitempty"`
	SubProductions []ProductionSummary `json:"subProductions"`
	Cast           []CastMemberView    `json:"cast"`
	Awards         []Award             `json:"awards"`
}

type VenueShow struct {
	UUID           string              `json:"uuid"`
	Name           string              `json:"name"`
	Differentiator string              `json:"differentiator,omitempty"`
	SurVenue       *VenueSummary       `json:"surVenue,omitempty"`
	SubVenues      []VenueSummary      `json:"subVenues"`
	Productions    []ProductionSummary `json:"productions"`
}

// CreditedMaterial is a material crediting a person or company.
type CreditedMaterial struct {
	MaterialSummary
	CreditName string `json:"creditName,omitempty"`
	CreditType string `json:"creditType,omitempty"`
}

type CastCredit struct {
	ProductionSummary
	Roles []RoleView `json:"roles"`
}

// PersonShow is shared by people and companies; Productions stays empty
// for companies.
type PersonShow struct {
	Model          Kind               `json:"model"`
	UUID           string             `json:"uuid"`
	Name           string             `json:"name"`
	Differentiator string             `json:"differentiator,omitempty"`
	Materials      []CreditedMaterial `json:"materials"`
	Productions    []CastCredit       `json:"productions,omitempty"`
	Awards         []Award            `json:"awards"`
}

type DepictingMaterial struct {
	MaterialSummary
	DisplayName string `json:"displayName,omitempty"`
	Qualifier   string `json:"qualifier,omitempty"`
}

type CharacterShow struct {
	UUID           string              `json:"uuid"`
	Name           string              `json:"name"`
	Differentiator string              `json:"differentiator,omitempty"`
	Materials      []DepictingMaterial `json:"materials"`
}

type CeremonySummary struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

type AwardShow struct {
	UUID           string            `json:"uuid"`
	Name           string            `json:"name"`
	Differentiator string            `json:"differentiator,omitempty"`
	Ceremonies     []CeremonySummary `json:"ceremonies"`
}

type AwardCeremonyShow struct {
	UUID       string          `json:"uuid"`
	Name       string          `json:"name"`
	Award      *EntitySummary  `json:"award,omitempty"`
	Categories []AwardCategory `json:"categories"`
}
