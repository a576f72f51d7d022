package contracts

// Pipeline Stage 정의 (SSOT)
// 모든 로그에서 "stage" 필드는 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   S0 → S1 → S2
//   Data  Rotation  View

// Stage represents a pipeline stage
type Stage string

const (
	// StageData S0: 가격 조회 및 커버리지 점검
	// 위치: internal/s0_data/
	StageData Stage = "S0_DATA"

	// StageRotation S1: 정렬, RS-Ratio / RS-Momentum 계산, 사분면 분류
	// 위치: internal/s1_rotation/
	StageRotation Stage = "S1_ROTATION"

	// StageView S2: 꼬리, 축 경계, 요약 테이블
	// 위치: internal/s2_view/
	StageView Stage = "S2_VIEW"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "S0", "S1")
func (s Stage) ShortName() string {
	switch s {
	case StageData:
		return "S0"
	case StageRotation:
		return "S1"
	case StageView:
		return "S2"
	default:
		return "UNKNOWN"
	}
}

// AllStages returns all pipeline stages in order
func AllStages() []Stage {
	return []Stage{StageData, StageRotation, StageView}
}
