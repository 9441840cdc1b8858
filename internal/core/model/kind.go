package model

import "fmt"

// Kind is the closed set of node kinds the graph holds.
type Kind string

const (
	KindMaterial              Kind = "MATERIAL"
	KindProduction            Kind = "PRODUCTION"
	KindVenue                 Kind = "VENUE"
	KindPerson                Kind = "PERSON"
	KindCompany               Kind = "COMPANY"
	KindCharacter             Kind = "CHARACTER"
	KindAward                 Kind = "AWARD"
	KindAwardCeremony         Kind = "AWARD_CEREMONY"
	KindAwardCeremonyCategory Kind = "AWARD_CEREMONY_CATEGORY"
)

// Kinds lists every node kind in declaration order.
var Kinds = []Kind{
	KindMaterial,
	KindProduction,
	KindVenue,
	KindPerson,
	KindCompany,
	KindCharacter,
	KindAward,
	KindAwardCeremony,
	KindAwardCeremonyCategory,
}

var kindLabels = map[Kind]string{
	KindMaterial:              "Material",
	KindProduction:            "Production",
	KindVenue:                 "Venue",
	KindPerson:                "Person",
	KindCompany:               "Company",
	KindCharacter:             "Character",
	KindAward:                 "Award",
	KindAwardCeremony:         "AwardCeremony",
	KindAwardCeremonyCategory: "AwardCeremonyCategory",
}

// Label is the node label used by graph stores.
func (k Kind) Label() string {
	return kindLabels[k]
}

func (k Kind) Valid() bool {
	_, ok := kindLabels[k]
	return ok
}

// HasNaturalKey reports whether nodes of this kind are unique by
// (name, differentiator). Productions, ceremonies and categories are
// addressed by uuid only.
func (k Kind) HasNaturalKey() bool {
	switch k {
	case KindMaterial, KindVenue, KindPerson, KindCompany, KindCharacter, KindAward:
		return true
	}
	return false
}

// KindFromLabel maps a store label back to its Kind.
func KindFromLabel(label string) (Kind, error) {
	for k, l := range kindLabels {
		if l == label {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown node label %q", label)
}

// ParseKind validates a kind name received from outside the process.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown kind %q", s)
	}
	return k, nil
}
