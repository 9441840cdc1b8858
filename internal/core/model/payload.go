package model

// Ref is a soft reference to another entity by natural key. UUID is filled
// in on edit views once the reference has been resolved.
type Ref struct {
	UUID           string `json:"uuid,omitempty"`
	Name           string `json:"name"`
	Differentiator string `json:"differentiator,omitempty"`
}

// IsZero reports whether the reference was left blank.
func (r Ref) IsZero() bool {
	return r.Name == "" && r.Differentiator == ""
}

// UUIDRef references an entity that has no natural key (productions).
type UUIDRef struct {
	UUID string `json:"uuid"`
}

// Entity is the payload for kinds that carry only a natural key:
// people, companies, characters and awards.
type Entity struct {
	UUID           string `json:"uuid,omitempty"`
	Name           string `json:"name"`
	Differentiator string `json:"differentiator,omitempty"`
}

type Material struct {
	UUID                    string           `json:"uuid,omitempty"`
	Name                    string           `json:"name"`
	Differentiator          string           `json:"differentiator,omitempty"`
	Subtitle                string           `json:"subtitle,omitempty"`
	Format                  string           `json:"format,omitempty"`
	Year                    int              `json:"year,omitempty"`
	OriginalVersionMaterial Ref              `json:"originalVersionMaterial"`
	WritingCredits          []WritingCredit  `json:"writingCredits"`
	SubMaterials            []Ref            `json:"subMaterials"`
	CharacterGroups         []CharacterGroup `json:"characterGroups"`
}

type WritingCredit struct {
	Name       string          `json:"name,omitempty"`
	CreditType string          `json:"creditType,omitempty"`
	Entities   []WritingEntity `json:"entities"`
}

// WritingEntity is a credited person, company or (source) material.
type WritingEntity struct {
	Model          Kind   `json:"model"`
	UUID           string `json:"uuid,omitempty"`
	Name           string `json:"name"`
	Differentiator string `json:"differentiator,omitempty"`
}

func (e WritingEntity) Ref() Ref {
	return Ref{UUID: e.UUID, Name: e.Name, Differentiator: e.Differentiator}
}

type CharacterGroup struct {
	Name       string               `json:"name,omitempty"`
	Characters []CharacterDepiction `json:"characters"`
}

// CharacterDepiction names a character as a material presents it. When
// UnderlyingName is set the character node is named by it and Name becomes
// the display-name override.
type CharacterDepiction struct {
	UUID           string `json:"uuid,omitempty"`
	Name           string `json:"name"`
	UnderlyingName string `json:"underlyingName,omitempty"`
	Differentiator string `json:"differentiator,omitempty"`
	Qualifier      string `json:"qualifier,omitempty"`
}

// NodeName is the name of the character node the depiction resolves to.
func (c CharacterDepiction) NodeName() string {
	if c.UnderlyingName != "" {
		return c.UnderlyingName
	}
	return c.Name
}

type Production struct {
	UUID           string       `json:"uuid,omitempty"`
	Name           string       `json:"name"`
	Subtitle       string       `json:"subtitle,omitempty"`
	StartDate      string       `json:"startDate,omitempty"`
	PressDate      string       `json:"pressDate,omitempty"`
	EndDate        string       `json:"endDate,omitempty"`
	Material       Ref          `json:"material"`
	Venue          Ref          `json:"venue"`
	SubProductions []UUIDRef    `json:"subProductions"`
	Cast           []CastMember `json:"cast"`
}

type CastMember struct {
	UUID           string `json:"uuid,omitempty"`
	Name           string `json:"name"`
	Differentiator string `json:"differentiator,omitempty"`
	Roles          []Role `json:"roles"`
}

type Role struct {
	Name                    string `json:"name"`
	CharacterName           string `json:"characterName,omitempty"`
	CharacterDifferentiator string `json:"characterDifferentiator,omitempty"`
	Qualifier               string `json:"qualifier,omitempty"`
	IsAlternate             bool   `json:"isAlternate,omitempty"`
}

type Venue struct {
	UUID           string `json:"uuid,omitempty"`
	Name           string `json:"name"`
	Differentiator string `json:"differentiator,omitempty"`
	SubVenues      []Ref  `json:"subVenues"`
}

type AwardCeremony struct {
	UUID       string          `json:"uuid,omitempty"`
	Name       string          `json:"name"`
	Award      Ref             `json:"award"`
	Categories []CategoryInput `json:"categories"`
}

type CategoryInput struct {
	Name        string            `json:"name"`
	Nominations []NominationInput `json:"nominations"`
}

type NominationInput struct {
	IsWinner    bool            `json:"isWinner,omitempty"`
	CustomType  string          `json:"customType,omitempty"`
	Entities    []NomineeEntity `json:"entities"`
	Productions []UUIDRef       `json:"productions"`
	Materials   []Ref           `json:"materials"`
}

// NomineeEntity is a nominated person or company. Members lists the people
// nominated as part of a company nomination.
type NomineeEntity struct {
	Model          Kind   `json:"model"`
	UUID           string `json:"uuid,omitempty"`
	Name           string `json:"name"`
	Differentiator string `json:"differentiator,omitempty"`
	Members        []Ref  `json:"members,omitempty"`
}

func (e NomineeEntity) Ref() Ref {
	return Ref{UUID: e.UUID, Name: e.Name, Differentiator: e.Differentiator}
}
