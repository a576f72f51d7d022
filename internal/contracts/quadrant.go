package contracts

// Quadrant is the rotation state of an instrument
type Quadrant string

const (
	QuadrantLeading   Quadrant = "Leading"
	QuadrantWeakening Quadrant = "Weakening"
	QuadrantLagging   Quadrant = "Lagging"
	QuadrantImproving Quadrant = "Improving"
)

// Quadrants lists the quadrants in clockwise rotation order
var Quadrants = []Quadrant{
	QuadrantLeading,
	QuadrantWeakening,
	QuadrantLagging,
	QuadrantImproving,
}

// Description explains the quadrant for legends and summary tables
func (q Quadrant) Description() string {
	switch q {
	case QuadrantLeading:
		return "Outperforming the benchmark with rising relative momentum"
	case QuadrantWeakening:
		return "Still outperforming, but relative momentum is fading"
	case QuadrantLagging:
		return "Underperforming the benchmark with falling relative momentum"
	case QuadrantImproving:
		return "Still underperforming, but relative momentum is recovering"
	default:
		return ""
	}
}
