// Package eligibility resolves set-aside restrictions against the
// qualifications an organization holds.
package eligibility

import "github.com/spigell/bidscout/internal/procurement"

type set map[procurement.SetAside]struct{}

func of(codes ...procurement.SetAside) set {
	s := make(set, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// satisfies maps a held qualification to the restrictions it may compete under.
// The relation is one-directional: SB satisfies SDVOSB, SDVOSB does not satisfy SB.
var satisfies = map[procurement.SetAside]set{
	procurement.SetAsideSB: of(
		procurement.SetAsideSB,
		procurement.SetAsideSDB,
		procurement.SetAside8A,
		procurement.SetAsideWOSB,
		procurement.SetAsideEDWOSB,
		procurement.SetAsideVOSB,
		procurement.SetAsideSDVOSB,
		procurement.SetAsideHUBZone,
	),
	procurement.SetAsideSDB:     of(procurement.SetAsideSDB, procurement.SetAside8A),
	procurement.SetAside8A:      of(procurement.SetAside8A),
	procurement.SetAsideWOSB:    of(procurement.SetAsideWOSB, procurement.SetAsideEDWOSB),
	procurement.SetAsideEDWOSB:  of(procurement.SetAsideEDWOSB),
	procurement.SetAsideVOSB:    of(procurement.SetAsideVOSB, procurement.SetAsideSDVOSB),
	procurement.SetAsideSDVOSB:  of(procurement.SetAsideSDVOSB),
	procurement.SetAsideHUBZone: of(procurement.SetAsideHUBZone),
	procurement.SetAsideISBEE:   of(procurement.SetAsideISBEE),
	procurement.SetAsideNone:    of(),
}

// Satisfies reports whether holding qualification allows competing under
// restriction. Unknown codes on either side never satisfy anything.
func Satisfies(qualification, restriction procurement.SetAside) bool {
	allowed, ok := satisfies[qualification]
	if !ok {
		return false
	}
	_, ok = allowed[restriction]
	return ok
}

// IsEligible reports whether an organization holding qualifications may
// respond to an opportunity restricted to restriction. An empty or NONE
// restriction is open to everyone.
func IsEligible(qualifications []procurement.SetAside, restriction procurement.SetAside) bool {
	if restriction.IsOpen() {
		return true
	}
	for _, q := range qualifications {
		if q == restriction && restriction.Known() {
			return true
		}
		if Satisfies(q, restriction) {
			return true
		}
	}
	return false
}

// Qualifying returns the held qualifications that satisfy restriction.
func Qualifying(qualifications []procurement.SetAside, restriction procurement.SetAside) []procurement.SetAside {
	var out []procurement.SetAside
	for _, q := range qualifications {
		if Satisfies(q, restriction) {
			out = append(out, q)
		}
	}
	return out
}
