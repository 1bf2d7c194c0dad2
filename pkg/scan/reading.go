// Package scan holds the latest range-sensor reading and draws it as a
// top-down Cartesian view centred on the robot.
package scan

import (
	"encoding/json"
	"math"
	"os"

	"github.com/pkg/errors"
)

// Reading is one planar range scan. Beam i points at AngleMin + i*AngleIncrement
// radians, 0 being straight ahead and positive angles sweeping clockwise on screen.
// A Reading is replaced wholesale and never mutated once published.
type Reading struct {
	AngleMin       float64
	AngleIncrement float64
	RangeMin       float64
	RangeMax       float64
	Ranges         []float64
}

// wire form: LaserScan field names, null for non-finite ranges
type readingJSON struct {
	AngleMin       float64    `json:"angle_min"`
	AngleIncrement float64    `json:"angle_increment"`
	RangeMin       float64    `json:"range_min"`
	RangeMax       float64    `json:"range_max"`
	Ranges         []*float64 `json:"ranges"`
}

// Angle returns the angle of beam i in radians.
func (r *Reading) Angle(i int) float64 {
	return r.AngleMin + float64(i)*r.AngleIncrement
}

// InRange reports whether a beam distance should be drawn.
func (r *Reading) InRange(d float64) bool {
	return !math.IsNaN(d) && !math.IsInf(d, 0) && d >= r.RangeMin && d <= r.RangeMax
}

// MarshalJSON encodes non-finite ranges as null.
func (r Reading) MarshalJSON() ([]byte, error) {
	out := readingJSON{
		AngleMin:       r.AngleMin,
		AngleIncrement: r.AngleIncrement,
		RangeMin:       r.RangeMin,
		RangeMax:       r.RangeMax,
		Ranges:         make([]*float64, len(r.Ranges)),
	}
	for i := range r.Ranges {
		if !math.IsNaN(r.Ranges[i]) && !math.IsInf(r.Ranges[i], 0) {
			out.Ranges[i] = &r.Ranges[i]
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes null ranges as NaN.
func (r *Reading) UnmarshalJSON(data []byte) error {
	var in readingJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = Reading{
		AngleMin:       in.AngleMin,
		AngleIncrement: in.AngleIncrement,
		RangeMin:       in.RangeMin,
		RangeMax:       in.RangeMax,
		Ranges:         make([]float64, len(in.Ranges)),
	}
	for i, v := range in.Ranges {
		if v == nil {
			r.Ranges[i] = math.NaN()
		} else {
			r.Ranges[i] = *v
		}
	}
	return nil
}

// LoadReading reads a JSON encoded scan from path.
func LoadReading(path string) (*Reading, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Reading
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrapf(err, "parse scan %s", path)
	}
	return &r, nil
}
