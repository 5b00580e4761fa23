package domain

import "time"

// Step is a state of the per-target, per-architecture lifecycle.
type Step int

// Lifecycle states, in the order a successful build visits them.
const (
	StepPending Step = iota
	StepDetecting
	StepSkipped
	StepAcquiring
	StepConfiguring
	StepBuilding
	StepInstalling
	StepDone
	StepFailed
)

var stepNames = [...]string{
	StepPending:     "pending",
	StepDetecting:   "detecting",
	StepSkipped:     "skipped",
	StepAcquiring:   "acquiring",
	StepConfiguring: "configuring",
	StepBuilding:    "building",
	StepInstalling:  "installing",
	StepDone:        "done",
	StepFailed:      "failed",
}

func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return "unknown"
	}
	return stepNames[s]
}

// Terminal reports whether no further transition can happen.
func (s Step) Terminal() bool {
	return s == StepSkipped || s == StepDone || s == StepFailed
}

// Outcome is the final state of one target for one architecture.
type Outcome struct {
	Target   string
	Arch     Architecture
	Step     Step
	Duration time.Duration
}

// Report summarizes a driver run.
type Report struct {
	RunID    string
	Outcomes []Outcome
}

// Count returns the number of outcomes that ended in step.
func (r *Report) Count(step Step) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Step == step {
			n++
		}
	}
	return n
}
