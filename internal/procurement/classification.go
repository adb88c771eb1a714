package procurement

import "strings"

// IsNumericCode reports whether a classification code is a non-empty digit string.
func IsNumericCode(code string) bool {
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SharedPrefix returns the number of leading characters two codes share.
func SharedPrefix(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// Sector returns the two-digit sector of a NAICS code, or "" for non-numeric codes.
func Sector(code string) string {
	code = strings.TrimSpace(code)
	if !IsNumericCode(code) || len(code) < 2 {
		return ""
	}
	return code[:2]
}

// Census divisions by state code.
var censusDivisions = map[string]string{
	"CT": "new_england", "ME": "new_england", "MA": "new_england",
	"NH": "new_england", "RI": "new_england", "VT": "new_england",
	"NJ": "middle_atlantic", "NY": "middle_atlantic", "PA": "middle_atlantic",
	"IL": "east_north_central", "IN": "east_north_central", "MI": "east_north_central",
	"OH": "east_north_central", "WI": "east_north_central",
	"IA": "west_north_central", "KS": "west_north_central", "MN": "west_north_central",
	"MO": "west_north_central", "NE": "west_north_central", "ND": "west_north_central",
	"SD": "west_north_central",
	"DE": "south_atlantic", "DC": "south_atlantic", "FL": "south_atlantic",
	"GA": "south_atlantic", "MD": "south_atlantic", "NC": "south_atlantic",
	"SC": "south_atlantic", "VA": "south_atlantic", "WV": "south_atlantic",
	"AL": "east_south_central", "KY": "east_south_central", "MS": "east_south_central",
	"TN": "east_south_central",
	"AR": "west_south_central", "LA": "west_south_central", "OK": "west_south_central",
	"TX": "west_south_central",
	"AZ": "mountain", "CO": "mountain", "ID": "mountain", "MT": "mountain",
	"NV": "mountain", "NM": "mountain", "UT": "mountain", "WY": "mountain",
	"AK": "pacific", "CA": "pacific", "HI": "pacific", "OR": "pacific", "WA": "pacific",
}

var stateNames = map[string]string{
	"ALABAMA": "AL", "ALASKA": "AK", "ARIZONA": "AZ", "ARKANSAS": "AR", "CALIFORNIA": "CA",
	"COLORADO": "CO", "CONNECTICUT": "CT", "DELAWARE": "DE", "DISTRICT OF COLUMBIA": "DC",
	"FLORIDA": "FL", "GEORGIA": "GA", "HAWAII": "HI", "IDAHO": "ID", "ILLINOIS": "IL",
	"INDIANA": "IN", "IOWA": "IA", "KANSAS": "KS", "KENTUCKY": "KY", "LOUISIANA": "LA",
	"MAINE": "ME", "MARYLAND": "MD", "MASSACHUSETTS": "MA", "MICHIGAN": "MI",
	"MINNESOTA": "MN", "MISSISSIPPI": "MS", "MISSOURI": "MO", "MONTANA": "MT",
	"NEBRASKA": "NE", "NEVADA": "NV", "NEW HAMPSHIRE": "NH", "NEW JERSEY": "NJ",
	"NEW MEXICO": "NM", "NEW YORK": "NY", "NORTH CAROLINA": "NC", "NORTH DAKOTA": "ND",
	"OHIO": "OH", "OKLAHOMA": "OK", "OREGON": "OR", "PENNSYLVANIA": "PA",
	"RHODE ISLAND": "RI", "SOUTH CAROLINA": "SC", "SOUTH DAKOTA": "SD", "TENNESSEE": "TN",
	"TEXAS": "TX", "UTAH": "UT", "VERMONT": "VT", "VIRGINIA": "VA", "WASHINGTON": "WA",
	"WEST VIRGINIA": "WV", "WISCONSIN": "WI", "WYOMING": "WY",
}

// NormalizeState converts a state name or code to its two-letter code.
func NormalizeState(state string) string {
	s := strings.ToUpper(strings.TrimSpace(state))
	if code, ok := stateNames[s]; ok {
		return code
	}
	return s
}

// CensusDivision returns the division of a state, or "" when unknown.
func CensusDivision(state string) string {
	return censusDivisions[NormalizeState(state)]
}
