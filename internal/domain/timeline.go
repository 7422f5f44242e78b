package domain

// StepState is the visual state of one timeline milestone.
type StepState string

const (
	StepCompleted StepState = "completed"
	StepCurrent   StepState = "current"
	StepInactive  StepState = "inactive"
)

// timelineMilestones is the fixed forward fulfillment sequence. Terminal
// lifecycles (returned, cancelled) are not members.
var timelineMilestones = []Lifecycle{
	LifecyclePending,
	LifecyclePaid,
	LifecycleProcessed,
	LifecycleShipped,
	LifecycleDelivered,
}

// TimelineStep pairs a milestone with its visual state.
type TimelineStep struct {
	Milestone Lifecycle
	State     StepState
}

// Timeline is the projection of a lifecycle onto the milestone sequence.
// For terminal lifecycles every step is inactive, StepIndex is -1 and
// Progress is 0: they are off the happy path, not positions on it.
type Timeline struct {
	Steps     []TimelineStep
	StepIndex int
	Progress  int
	OffPath   bool
}

// ProjectTimeline computes the timeline for a lifecycle value. Progress is a
// percentage of the forward sequence: index / (len-1) * 100.
func ProjectTimeline(lifecycle Lifecycle) Timeline {
	steps := make([]TimelineStep, len(timelineMilestones))

	if lifecycle.IsTerminal() {
		for i, m := range timelineMilestones {
			steps[i] = TimelineStep{Milestone: m, State: StepInactive}
		}
		return Timeline{Steps: steps, StepIndex: -1, Progress: 0, OffPath: true}
	}

	current := 0
	for i, m := range timelineMilestones {
		if m == lifecycle {
			current = i
			break
		}
	}

	for i, m := range timelineMilestones {
		state := StepInactive
		switch {
		case i < current:
			state = StepCompleted
		case i == current:
			state = StepCurrent
		}
		steps[i] = TimelineStep{Milestone: m, State: state}
	}

	progress := current * 100 / (len(timelineMilestones) - 1)
	return Timeline{Steps: steps, StepIndex: current, Progress: progress}
}
