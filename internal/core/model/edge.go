package model

// EdgeType is the closed set of relationship types.
type EdgeType string

const (
	EdgeHasSubMaterial      EdgeType = "HAS_SUB_MATERIAL"
	EdgeSubsequentVersionOf EdgeType = "SUBSEQUENT_VERSION_OF"
	EdgeUsesSourceMaterial  EdgeType = "USES_SOURCE_MATERIAL"
	EdgeHasWritingEntity    EdgeType = "HAS_WRITING_ENTITY"
	EdgeDepicts             EdgeType = "DEPICTS"
	EdgeHasSubProduction    EdgeType = "HAS_SUB_PRODUCTION"
	EdgePlaysAt             EdgeType = "PLAYS_AT"
	EdgeProductionOf        EdgeType = "PRODUCTION_OF"
	EdgeHasCastMember       EdgeType = "HAS_CAST_MEMBER"
	EdgeHasSubVenue         EdgeType = "HAS_SUB_VENUE"
	EdgePresentedAt         EdgeType = "PRESENTED_AT"
	EdgePresentsCategory    EdgeType = "PRESENTS_CATEGORY"
	EdgeHasNominee          EdgeType = "HAS_NOMINEE"
)

// EdgeTypes lists every relationship type.
var EdgeTypes = []EdgeType{
	EdgeHasSubMaterial,
	EdgeSubsequentVersionOf,
	EdgeUsesSourceMaterial,
	EdgeHasWritingEntity,
	EdgeDepicts,
	EdgeHasSubProduction,
	EdgePlaysAt,
	EdgeProductionOf,
	EdgeHasCastMember,
	EdgeHasSubVenue,
	EdgePresentedAt,
	EdgePresentsCategory,
	EdgeHasNominee,
}

func (t EdgeType) Valid() bool {
	for _, et := range EdgeTypes {
		if et == t {
			return true
		}
	}
	return false
}

// Node property keys beyond uuid/name/differentiator.
const (
	PropSubtitle  = "subtitle"
	PropFormat    = "format"
	PropYear      = "year"
	PropStartDate = "startDate"
	PropPressDate = "pressDate"
	PropEndDate   = "endDate"
)

// Edge property keys.
const (
	PropCreditName           = "credit"
	PropCreditType           = "creditType"
	PropCreditPosition       = "creditPosition"
	PropEntityPosition       = "entityPosition"
	PropGroupName            = "group"
	PropGroupPosition        = "groupPosition"
	PropDisplayName          = "displayName"
	PropQualifier            = "qualifier"
	PropCastMemberPosition   = "castMemberPosition"
	PropRolePosition         = "rolePosition"
	PropRoleName             = "roleName"
	PropCharacterName        = "characterName"
	PropCharacterDiff        = "characterDifferentiator"
	PropIsAlternate          = "isAlternate"
	PropNominationPosition   = "nominationPosition"
	PropIsWinner             = "isWinner"
	PropCustomType           = "customType"
	PropNominatedCompanyUUID = "nominatedCompanyUuid"
)

// Writing credit types.
const (
	CreditTypeNonSpecificSourceMaterial = "NON_SPECIFIC_SOURCE_MATERIAL"
	CreditTypeRightsGrantor             = "RIGHTS_GRANTOR"
)

// ValidCreditType reports whether ct is one of the accepted credit types;
// the empty string is a plain writing credit.
func ValidCreditType(ct string) bool {
	switch ct {
	case "", CreditTypeNonSpecificSourceMaterial, CreditTypeRightsGrantor:
		return true
	}
	return false
}
