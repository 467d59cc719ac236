package domain

import "time"

// Role names, one per administrative tier.
const (
	RoleCountry    = "A1"
	RoleCity       = "A2"
	RoleDistrict   = "A3"
	RoleWard       = "B1"
	RoleCivilGroup = "B2"
)

// RoleGraph maps a role to the roles it may assign when creating users.
// It is a directed graph, so a role may list several children.
type RoleGraph map[string][]string

// DefaultRoleGraph is seeded into the role directory on first start.
var DefaultRoleGraph = RoleGraph{
	RoleCountry:    {RoleCity},
	RoleCity:       {RoleDistrict},
	RoleDistrict:   {RoleWard},
	RoleWard:       {RoleCivilGroup},
	RoleCivilGroup: {},
}

// Genders accepted by the age distribution report.
const (
	GenderMale   = "Nam"
	GenderFemale = "Nữ"
)

// ValidGender reports whether g is one of the recorded genders.
func ValidGender(g string) bool {
	return g == GenderMale || g == GenderFemale
}

// DeclareWindow is the period during which a user may submit survey records.
type DeclareWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window, bounds included.
func (w DeclareWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ValidateDeclareWindow checks a window against the current day.
func ValidateDeclareWindow(start, end, now time.Time) error {
	if start.Before(StartOfDay(now)) {
		return ErrInvalidDeclareStart
	}
	if end.Before(start) {
		return ErrInvalidDeclareEnd
	}
	return nil
}
