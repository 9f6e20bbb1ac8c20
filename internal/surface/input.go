package surface

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/woozymasta/aerosurf/internal/geo"
)

// ValidationError reports a runway parameter that cannot produce a surface.
type ValidationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

// RunwayInput holds the runway anchored parameters of a surface.
//
// For a VSS, Threshold is the landing threshold (its elevation is the runway
// elevation) and End the opposite runway end. For a DEP OIS, Threshold is the
// start of the take-off run and End the departure end whose elevation anchors
// the surface.
type RunwayInput struct {
	Threshold geo.GeoPoint `json:"threshold" yaml:"threshold"`
	End       geo.GeoPoint `json:"end" yaml:"end"`

	StripWidth        float64 `json:"stripWidth,omitempty" yaml:"strip_width,omitempty"`
	OCH               float64 `json:"och,omitempty" yaml:"och,omitempty"` // meters
	VerticalPathAngle float64 `json:"vpa,omitempty" yaml:"vpa,omitempty"` // degrees
	OffsetAngle       float64 `json:"offset,omitempty" yaml:"offset,omitempty"`
	ClearwayLength    float64 `json:"clearway,omitempty" yaml:"clearway,omitempty"`
	ClimbGradient     float64 `json:"climbGradient,omitempty" yaml:"climb_gradient,omitempty"` // percent, 0 = default
}

// UnmarshalJSON decodes a RunwayInput and rejects runway points without an
// elevation, which would otherwise read as zero.
func (in *RunwayInput) UnmarshalJSON(data []byte) error {
	type plain RunwayInput
	aux := struct {
		Threshold *geo.SurveyPoint `json:"threshold"`
		End       *geo.SurveyPoint `json:"end"`
		*plain
	}{plain: (*plain)(in)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	for _, pt := range []struct {
		name string
		src  *geo.SurveyPoint
		dst  *geo.GeoPoint
	}{
		{"threshold", aux.Threshold, &in.Threshold},
		{"end", aux.End, &in.End},
	} {
		if pt.src == nil {
			return &ValidationError{Field: pt.name, Reason: "missing"}
		}
		p, ok := pt.src.GeoPoint()
		if !ok {
			return &ValidationError{Field: pt.name + ".elev", Reason: "missing elevation"}
		}
		*pt.dst = p
	}
	return nil
}

// Validate checks the fields a surface of the given kind consumes.
func (in RunwayInput) Validate(kind Kind) error {
	if !kind.Valid() {
		return &ValidationError{Field: "kind", Value: float64(kind), Reason: "unknown surface kind"}
	}

	points := []struct {
		name string
		p    geo.GeoPoint
	}{
		{"threshold", in.Threshold},
		{"end", in.End},
	}
	for _, pt := range points {
		if err := checkPoint(pt.name, pt.p); err != nil {
			return err
		}
	}
	if in.Threshold.Latitude == in.End.Latitude && in.Threshold.Longitude == in.End.Longitude {
		return &ValidationError{Field: "end", Value: in.End.Latitude, Reason: "coincides with threshold"}
	}

	if err := finite("offset", in.OffsetAngle); err != nil {
		return err
	}

	switch kind {
	case VSS:
		for _, f := range []struct {
			name string
			v    float64
		}{
			{"stripWidth", in.StripWidth},
			{"och", in.OCH},
			{"vpa", in.VerticalPathAngle},
		} {
			if err := finite(f.name, f.v); err != nil {
				return err
			}
		}
		if in.StripWidth <= 0 {
			return &ValidationError{Field: "stripWidth", Value: in.StripWidth, Reason: "must be positive"}
		}
		if in.OCH <= 0 {
			return &ValidationError{Field: "och", Value: in.OCH, Reason: "must be positive"}
		}
		if slope := in.VerticalPathAngle - VSSSlopeCorrection; slope <= 0 || slope >= 90 {
			return &ValidationError{
				Field:  "vpa",
				Value:  in.VerticalPathAngle,
				Reason: fmt.Sprintf("surface slope %.4f° must be within (0, 90)", slope),
			}
		}
		if math.Abs(in.OffsetAngle)+VSSBaseSplay >= 90 {
			return &ValidationError{Field: "offset", Value: in.OffsetAngle, Reason: "splay reaches 90°"}
		}

	case DepOIS:
		if err := finite("clearway", in.ClearwayLength); err != nil {
			return err
		}
		if err := finite("climbGradient", in.ClimbGradient); err != nil {
			return err
		}
		if in.ClearwayLength < 0 {
			return &ValidationError{Field: "clearway", Value: in.ClearwayLength, Reason: "must not be negative"}
		}
		if in.ClimbGradient < 0 {
			return &ValidationError{Field: "climbGradient", Value: in.ClimbGradient, Reason: "must not be negative"}
		}
		if math.Abs(in.OffsetAngle)+DepSplay >= 90 {
			return &ValidationError{Field: "offset", Value: in.OffsetAngle, Reason: "splay reaches 90°"}
		}
	}

	return nil
}

func checkPoint(name string, p geo.GeoPoint) error {
	if err := finite(name+".lat", p.Latitude); err != nil {
		return err
	}
	if err := finite(name+".lng", p.Longitude); err != nil {
		return err
	}
	if err := finite(name+".elev", p.Elevation); err != nil {
		return err
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return &ValidationError{Field: name + ".lat", Value: p.Latitude, Reason: "out of range"}
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return &ValidationError{Field: name + ".lng", Value: p.Longitude, Reason: "out of range"}
	}
	return nil
}

func finite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ValidationError{Field: name, Value: v, Reason: "not a finite number"}
	}
	return nil
}
