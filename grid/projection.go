package grid

import (
	"fmt"
	"strings"

	"github.com/decibelcooper/hgcalhistory/event"
)

// Projection selects which two coordinates of a point are binned. The first
// letter is the horizontal axis.
type Projection int

const (
	ProjectXY Projection = iota
	ProjectZX
	ProjectZY
)

func (p Projection) String() string {
	switch p {
	case ProjectXY:
		return "xy"
	case ProjectZX:
		return "zx"
	case ProjectZY:
		return "zy"
	default:
		return fmt.Sprintf("Projection(%d)", int(p))
	}
}

func ParseProjection(s string) (Projection, error) {
	switch strings.ToLower(s) {
	case "xy":
		return ProjectXY, nil
	case "zx":
		return ProjectZX, nil
	case "zy":
		return ProjectZY, nil
	default:
		return 0, fmt.Errorf("unknown projection %q", s)
	}
}

// Coords returns the horizontal and vertical coordinates of pt.
func (p Projection) Coords(pt event.Point) (h, v float64) {
	switch p {
	case ProjectZX:
		return pt.Z, pt.X
	case ProjectZY:
		return pt.Z, pt.Y
	default:
		return pt.X, pt.Y
	}
}

// AxisLabels returns plot axis titles for the projection.
func (p Projection) AxisLabels() (h, v string) {
	switch p {
	case ProjectZX:
		return "z (cm)", "x (cm)"
	case ProjectZY:
		return "z (cm)", "y (cm)"
	default:
		return "x (cm)", "y (cm)"
	}
}
