package boot

// State is a boot readiness stage. States only move forward in declaration
// order; Ready and Error are absorbing.
type State int

const (
	Connecting State = iota
	LoadingIndex
	WarmingAI
	Ready
	Error
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case LoadingIndex:
		return "loading_index"
	case WarmingAI:
		return "warming_ai"
	case Ready:
		return "ready"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == Ready || s == Error
}

// Step is one row of the boot screen checklist.
type Step struct {
	Label string
	State State // the stage during which this step is active
}

// Steps lists the user-facing boot checklist in order.
var Steps = []Step{
	{Label: "Connecting Backend", State: Connecting},
	{Label: "Loading Memory Core", State: LoadingIndex},
	{Label: "Preparing AI Engine", State: WarmingAI},
}

// StepStatus reports how step relates to the current state.
type StepStatus int

const (
	StepPending StepStatus = iota
	StepActive
	StepDone
	StepFailed
)

// StatusOf returns the checklist status of step while the monitor is in cur.
func StatusOf(step Step, cur State) StepStatus {
	switch {
	case cur == Error:
		return StepFailed
	case cur == step.State:
		return StepActive
	case cur > step.State:
		return StepDone
	default:
		return StepPending
	}
}
