package contracts

import "errors"

// ⭐ SSOT: RRG 에러 분류는 여기서만
var (
	// ErrInsufficientData: fewer than MinAlignedObservations jointly valid observations
	ErrInsufficientData = errors.New("insufficient data")

	// ErrEmptySeries: the price source returned no observations
	ErrEmptySeries = errors.New("empty series")

	// ErrBenchmarkUnavailable aborts the whole run
	ErrBenchmarkUnavailable = errors.New("benchmark unavailable")

	// ErrProvider: network, rate-limit or decoding failure in the price source
	ErrProvider = errors.New("price provider error")

	// ErrInvalidParams: run parameters failed validation
	ErrInvalidParams = errors.New("invalid parameters")
)

// ReasonFor maps an instrument-level error to its exclusion reason
func ReasonFor(err error) ExclusionReason {
	switch {
	case errors.Is(err, ErrEmptySeries):
		return ExclusionEmptySeries
	case errors.Is(err, ErrInsufficientData):
		return ExclusionInsufficientData
	default:
		return ExclusionProviderError
	}
}
