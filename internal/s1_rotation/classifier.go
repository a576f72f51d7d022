package s1_rotation

import "github.com/wonny/rrg/internal/contracts"

// Classify maps an (RS-Ratio, RS-Momentum) pair to its quadrant.
// A value exactly at the center counts as the >= side.
func Classify(ratio, momentum float64) contracts.Quadrant {
	switch {
	case ratio >= contracts.RatioCenter && momentum >= contracts.RatioCenter:
		return contracts.QuadrantLeading
	case ratio >= contracts.RatioCenter:
		return contracts.QuadrantWeakening
	case momentum < contracts.RatioCenter:
		return contracts.QuadrantLagging
	default:
		return contracts.QuadrantImproving
	}
}

// ClassifyPoint classifies a joint observation
func ClassifyPoint(p contracts.RotationPoint) contracts.Quadrant {
	return Classify(p.Ratio, p.Momentum)
}

// ClassifyLatest classifies the most recent joint observation of a result
func ClassifyLatest(result *contracts.InstrumentResult) (contracts.Quadrant, bool) {
	latest, ok := result.Latest()
	if !ok {
		return "", false
	}
	return ClassifyPoint(latest), true
}
