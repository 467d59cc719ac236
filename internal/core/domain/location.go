package domain

import "strings"

// Level is a tier of the administrative hierarchy.
type Level int

const (
	LevelInvalid Level = iota
	LevelCountry
	LevelCity
	LevelDistrict
	LevelWard
	LevelCivilGroup
)

// Collection names, one per level.
const (
	CollectionCountry    = "country"
	CollectionCity       = "city"
	CollectionDistrict   = "district"
	CollectionWard       = "ward"
	CollectionCivilGroup = "civil_group"
)

// Code lengths of the levels that are identified by length alone.
const (
	countryCodeLength  = 1
	cityCodeLength     = 2
	districtCodeLength = 4
	wardCodeLength     = 6
)

// LevelOf maps a code to its level by length. Civil groups are never
// returned here; they are reached only through ChildLevel(LevelWard).
func LevelOf(code string) Level {
	switch len(code) {
	case countryCodeLength:
		return LevelCountry
	case cityCodeLength:
		return LevelCity
	case districtCodeLength:
		return LevelDistrict
	case wardCodeLength:
		return LevelWard
	default:
		return LevelInvalid
	}
}

// CollectionFor returns the collection holding a code's level.
func CollectionFor(code string) (string, error) {
	level := LevelOf(code)
	if level == LevelInvalid {
		return "", ErrInvalidCode
	}
	return level.Collection(), nil
}

// ChildLevelLength is the code length of a child of parentCode.
func ChildLevelLength(parentCode string) int {
	if LevelOf(parentCode) == LevelCountry {
		return len(parentCode) + 1
	}
	return len(parentCode) + 2
}

// ChildLevel returns the level directly below l.
func ChildLevel(l Level) Level {
	switch l {
	case LevelCountry:
		return LevelCity
	case LevelCity:
		return LevelDistrict
	case LevelDistrict:
		return LevelWard
	case LevelWard:
		return LevelCivilGroup
	default:
		return LevelInvalid
	}
}

// UnitOf resolves the level a managed-location code administers, including
// civil groups, which sit one step below a ward code.
func UnitOf(code string) Level {
	if level := LevelOf(code); level != LevelInvalid {
		return level
	}
	if len(code) == wardCodeLength+2 {
		return LevelCivilGroup
	}
	return LevelInvalid
}

// Covers reports whether a user managing `managed` may see or touch `code`.
// A country-level scope is unrestricted.
func Covers(managed, code string) bool {
	if LevelOf(managed) == LevelCountry {
		return true
	}
	if managed == "" || len(code) < len(managed) {
		return false
	}
	return strings.HasPrefix(code, managed)
}

// ValidChildCode checks the positional invariant between a parent and child code.
func ValidChildCode(parentCode, childCode string) bool {
	if len(childCode) != ChildLevelLength(parentCode) {
		return false
	}
	if LevelOf(parentCode) == LevelCountry {
		return true
	}
	return strings.HasPrefix(childCode, parentCode)
}

func (l Level) Collection() string {
	switch l {
	case LevelCountry:
		return CollectionCountry
	case LevelCity:
		return CollectionCity
	case LevelDistrict:
		return CollectionDistrict
	case LevelWard:
		return CollectionWard
	case LevelCivilGroup:
		return CollectionCivilGroup
	default:
		return ""
	}
}

// AddressField is the survey address field matching the level. Country has none.
func (l Level) AddressField() string {
	switch l {
	case LevelCity, LevelDistrict, LevelWard, LevelCivilGroup:
		return l.Collection()
	default:
		return ""
	}
}

func (l Level) String() string {
	switch l {
	case LevelCountry:
		return "country"
	case LevelCity:
		return "city"
	case LevelDistrict:
		return "district"
	case LevelWard:
		return "ward"
	case LevelCivilGroup:
		return "civilGroup"
	default:
		return "invalid"
	}
}

// ParseUnit maps an address field name back to its level.
func ParseUnit(field string) Level {
	switch field {
	case CollectionCity:
		return LevelCity
	case CollectionDistrict:
		return LevelDistrict
	case CollectionWard:
		return LevelWard
	case CollectionCivilGroup:
		return LevelCivilGroup
	default:
		return LevelInvalid
	}
}

// LocationState distinguishes provisioned names from coded locations.
type LocationState string

const (
	LocationUnassigned LocationState = "unassigned"
	LocationCoded      LocationState = "coded"
)
