package legal

import (
	"fmt"
	"strings"
)

// GameVersion identifies a single game or a group of paired releases.
type GameVersion int

const (
	Unknown GameVersion = iota

	X
	Y
	OR
	AS
	SN
	MN
	US
	UM
	GP
	GE

	XY
	ORAS
	SM
	USUM
	GG
)

var versionNames = map[GameVersion]string{
	Unknown: "unknown",
	X:       "x", Y: "y",
	OR: "or", AS: "as",
	SN: "sn", MN: "mn",
	US: "us", UM: "um",
	GP: "gp", GE: "ge",
	XY:   "xy",
	ORAS: "oras",
	SM:   "sm",
	USUM: "usum",
	GG:   "gg",
}

var versionAliases = map[string]GameVersion{
	"sun":     SN,
	"moon":    MN,
	"pikachu": GP,
	"eevee":   GE,
	"lgpe":    GG,
}

var groups = map[GameVersion][]GameVersion{
	XY:   {X, Y},
	ORAS: {OR, AS},
	SM:   {SN, MN},
	USUM: {US, UM},
	GG:   {GP, GE},
}

// Groups lists the version groups that carry legality data, in release order.
func Groups() []GameVersion {
	return []GameVersion{XY, ORAS, SM, USUM, GG}
}

func (v GameVersion) String() string {
	if name, ok := versionNames[v]; ok {
		return name
	}
	return fmt.Sprintf("GameVersion(%d)", int(v))
}

// Members returns the games of a group, or nil for a single game.
func (v GameVersion) Members() []GameVersion {
	return append([]GameVersion(nil), groups[v]...)
}

// IsGroup reports whether v names a pair of releases.
func (v GameVersion) IsGroup() bool {
	_, ok := groups[v]
	return ok
}

// Contains reports whether other is v itself or a member of group v.
func (v GameVersion) Contains(other GameVersion) bool {
	if v == Unknown || other == Unknown {
		return false
	}
	if v == other {
		return true
	}
	for _, member := range groups[v] {
		if member == other {
			return true
		}
	}
	return false
}

// Group returns the group v belongs to, or v when it is already a group or unknown.
func (v GameVersion) Group() GameVersion {
	for g, members := range groups {
		for _, m := range members {
			if m == v {
				return g
			}
		}
	}
	return v
}

// ParseVersion resolves a case-insensitive version name. Unrecognized names
// return Unknown together with an error wrapping ErrUnknownVersion.
func ParseVersion(s string) (GameVersion, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for v, name := range versionNames {
		if name == key && v != Unknown {
			return v, nil
		}
	}
	if v, ok := versionAliases[key]; ok {
		return v, nil
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnknownVersion, s)
}

// MarshalText implements encoding.TextMarshaler.
func (v GameVersion) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names decode to
// Unknown so that future releases fall back to "no exemptions".
func (v *GameVersion) UnmarshalText(text []byte) error {
	parsed, _ := ParseVersion(string(text))
	*v = parsed
	return nil
}
