package domain

import "testing"

func TestProjectTimelineProcessed(t *testing.T) {
	tl := ProjectTimeline(LifecycleProcessed)

	if tl.StepIndex != 2 {
		t.Fatalf("expected step index 2, got %d", tl.StepIndex)
	}
	if tl.Progress != 50 {
		t.Fatalf("expected progress 50, got %d", tl.Progress)
	}
	if tl.OffPath {
		t.Fatalf("processed should be on the forward path")
	}

	wantStates := []StepState{StepCompleted, StepCompleted, StepCurrent, StepInactive, StepInactive}
	for i, step := range tl.Steps {
		if step.State != wantStates[i] {
			t.Fatalf("step %d (%s): expected %s, got %s", i, step.Milestone, wantStates[i], step.State)
		}
	}
}

func TestProjectTimelineEndpoints(t *testing.T) {
	if tl := ProjectTimeline(LifecyclePending); tl.StepIndex != 0 || tl.Progress != 0 {
		t.Fatalf("pending: expected index 0 progress 0, got %d/%d", tl.StepIndex, tl.Progress)
	}
	if tl := ProjectTimeline(LifecycleDelivered); tl.StepIndex != 4 || tl.Progress != 100 {
		t.Fatalf("delivered: expected index 4 progress 100, got %d/%d", tl.StepIndex, tl.Progress)
	}
	tl := ProjectTimeline(LifecycleDelivered)
	for i, step := range tl.Steps {
		if i < 4 && step.State != StepCompleted {
			t.Fatalf("delivered: step %d should be completed, got %s", i, step.State)
		}
	}
	if tl.Steps[4].State != StepCurrent {
		t.Fatalf("delivered: final step should be current, got %s", tl.Steps[4].State)
	}
}

func TestProjectTimelineTerminalStates(t *testing.T) {
	for _, l := range []Lifecycle{LifecycleReturned, LifecycleCancelled} {
		tl := ProjectTimeline(l)
		if !tl.OffPath {
			t.Fatalf("%s should project off-path", l)
		}
		if tl.StepIndex != -1 || tl.Progress != 0 {
			t.Fatalf("%s: expected index -1 progress 0, got %d/%d", l, tl.StepIndex, tl.Progress)
		}
		for i, step := range tl.Steps {
			if step.State != StepInactive {
				t.Fatalf("%s: step %d should be inactive, got %s", l, i, step.State)
			}
		}
	}
}
