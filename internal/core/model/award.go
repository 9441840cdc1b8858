package model

// Award groups every nomination found for a subject under the award that
// presented it.
type Award struct {
	UUID           string                `json:"uuid"`
	Name           string                `json:"name"`
	Differentiator string                `json:"differentiator,omitempty"`
	Ceremonies     []AwardCeremonyResult `json:"ceremonies"`
}

type AwardCeremonyResult struct {
	UUID       string          `json:"uuid"`
	Name       string          `json:"name"`
	Categories []AwardCategory `json:"categories"`
}

type AwardCategory struct {
	Name        string       `json:"name"`
	Nominations []Nomination `json:"nominations"`
}

// Nomination is one entry in a category. The Recipient* fields explain how
// the subject relates to the nomination; they hold only the hierarchy and
// lineage nodes that were traversed to reach it.
type Nomination struct {
	IsWinner    bool                `json:"isWinner"`
	Type        string              `json:"type"`
	Entities    []NominatedEntity   `json:"entities"`
	Productions []ProductionSummary `json:"productions"`
	Materials   []MaterialSummary   `json:"materials"`

	RecipientMaterials                  []MaterialSummary   `json:"recipientMaterials,omitempty"`
	RecipientProductions                []ProductionSummary `json:"recipientProductions,omitempty"`
	RecipientSubsequentVersionMaterials []MaterialSummary   `json:"recipientSubsequentVersionMaterials,omitempty"`
	RecipientSourcingMaterials          []MaterialSummary   `json:"recipientSourcingMaterials,omitempty"`
}

// NominatedEntity is a nominated person or company. Members is populated
// only for companies whose nomination lists specific people.
type NominatedEntity struct {
	Model          Kind            `json:"model"`
	UUID           string          `json:"uuid"`
	Name           string          `json:"name"`
	Differentiator string          `json:"differentiator,omitempty"`
	Members        []EntitySummary `json:"members,omitempty"`
}

// Nomination type labels used when no custom type is given.
const (
	NominationTypeWinner     = "Winner"
	NominationTypeNomination = "Nomination"
)

// NominationType derives the displayed type of a nomination.
func NominationType(isWinner bool, customType string) string {
	if customType != "" {
		return customType
	}
	if isWinner {
		return NominationTypeWinner
	}
	return NominationTypeNomination
}
