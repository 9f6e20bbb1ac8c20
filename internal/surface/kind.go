// Package surface builds runway referenced obstacle clearance surfaces and
// evaluates their elevation at planar positions.
package surface

import (
	"fmt"
	"strings"
)

// Kind identifies a surface type together with its vertex order convention.
type Kind int

const (
	// VSS is the Visual Segment Surface ahead of the landing threshold.
	VSS Kind = iota + 1
	// DepOIS is the Departure Obstacle Identification Surface beyond the runway end.
	DepOIS
)

// convention describes what each position of a surface polygon means.
// Both kinds keep base corners at 0 and 3 and end corners at 1 and 2,
// but the corner names differ and so does the elevation rule.
type convention struct {
	name   string
	title  string
	labels [4]string
	base   [2]int
	end    [2]int
	// average base and end corner elevations rather than reading corner 0 / 1
	average bool
}

var conventions = map[Kind]convention{
	VSS: {
		name:   "vss",
		title:  "VSS",
		labels: [4]string{"leftBase", "leftEnd", "rightEnd", "rightBase"},
		base:   [2]int{0, 3},
		end:    [2]int{1, 2},
	},
	DepOIS: {
		name:    "dep_ois",
		title:   "DEP OIS",
		labels:  [4]string{"baseRight", "leftEnd", "rightEnd", "baseLeft"},
		base:    [2]int{0, 3},
		end:     [2]int{1, 2},
		average: true,
	},
}

// Kinds lists all known surface kinds.
var Kinds = []Kind{VSS, DepOIS}

func (k Kind) String() string {
	if c, ok := conventions[k]; ok {
		return c.name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Title returns the human readable surface name.
func (k Kind) Title() string {
	if c, ok := conventions[k]; ok {
		return c.title
	}
	return k.String()
}

// Labels returns the role of each of the four corners in polygon order.
func (k Kind) Labels() [4]string {
	return conventions[k].labels
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := conventions[k]
	return ok
}

// ParseKind accepts "vss", "dep_ois", "dep-ois" and "depois" in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "vss":
		return VSS, nil
	case "dep_ois", "depois", "dep":
		return DepOIS, nil
	}
	return 0, fmt.Errorf("unknown surface kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("unknown surface kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
