package procurement

import "strings"

// SetAside is a procurement restriction code. The same codes describe the
// qualifications an organization holds.
type SetAside string

const (
	SetAsideSB      SetAside = "SB"
	SetAsideSDB     SetAside = "SDB"
	SetAside8A      SetAside = "8A"
	SetAsideWOSB    SetAside = "WOSB"
	SetAsideEDWOSB  SetAside = "EDWOSB"
	SetAsideVOSB    SetAside = "VOSB"
	SetAsideSDVOSB  SetAside = "SDVOSB"
	SetAsideHUBZone SetAside = "HUBZone"
	SetAsideISBEE   SetAside = "ISBEE"
	SetAsideNone    SetAside = "NONE"
)

// SetAsides lists every known code in a stable order.
var SetAsides = []SetAside{
	SetAsideSB,
	SetAsideSDB,
	SetAside8A,
	SetAsideWOSB,
	SetAsideEDWOSB,
	SetAsideVOSB,
	SetAsideSDVOSB,
	SetAsideHUBZone,
	SetAsideISBEE,
	SetAsideNone,
}

var setAsideAliases = map[string]SetAside{
	"SB":                        SetAsideSB,
	"SBA":                       SetAsideSB,
	"SMALL BUSINESS":            SetAsideSB,
	"TOTAL SMALL BUSINESS":      SetAsideSB,
	"SDB":                       SetAsideSDB,
	"8A":                        SetAside8A,
	"8(A)":                      SetAside8A,
	"8AN":                       SetAside8A,
	"WOSB":                      SetAsideWOSB,
	"EDWOSB":                    SetAsideEDWOSB,
	"VOSB":                      SetAsideVOSB,
	"VSA":                       SetAsideVOSB,
	"SDVOSB":                    SetAsideSDVOSB,
	"SDVOSBC":                   SetAsideSDVOSB,
	"HUBZONE":                   SetAsideHUBZone,
	"HZC":                       SetAsideHUBZone,
	"ISBEE":                     SetAsideISBEE,
	"NONE":                      SetAsideNone,
	"":                          SetAsideNone,
	"N/A":                       SetAsideNone,
	"FULL AND OPEN":             SetAsideNone,
	"NO SET ASIDE USED":         SetAsideNone,
	"FULL AND OPEN COMPETITION": SetAsideNone,
}

// ParseSetAside maps a free-form code to a known SetAside. Unrecognized
// values are returned upper-cased as-is so they stay visible in factors, but
// Known reports false for them.
func ParseSetAside(raw string) SetAside {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if code, ok := setAsideAliases[key]; ok {
		return code
	}
	return SetAside(key)
}

// Known reports whether the code belongs to the program taxonomy.
func (s SetAside) Known() bool {
	for _, code := range SetAsides {
		if s == code {
			return true
		}
	}
	return false
}

// IsOpen reports whether the restriction leaves the opportunity open to all.
func (s SetAside) IsOpen() bool {
	return s == "" || s == SetAsideNone
}

func (s SetAside) String() string { return string(s) }

// ParseSetAsides parses a list, dropping blanks.
func ParseSetAsides(raw []string) []SetAside {
	out := make([]SetAside, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}
		out = append(out, ParseSetAside(r))
	}
	return out
}
