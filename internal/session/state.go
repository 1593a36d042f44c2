// ABOUTME: Dialog flow and step definitions for per-identity conversation state
// ABOUTME: Holds the ordered step table that every stored State must respect

package session

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// Flow identifies which multi-step dialog is active
type Flow string

// Flow values
const (
	FlowNone         Flow = ""
	FlowRegistration Flow = "registration"
	FlowAddEntry     Flow = "add_entry"
	FlowViewEntries  Flow = "view_entries"
)

// Step is a point within a flow awaiting one kind of input.
// START and DONE are transient: they happen inside a single turn
// and are never stored.
type Step string

// Step values
const (
	StepNone          Step = ""
	StepAwaitName     Step = "await_name"
	StepAwaitType     Step = "await_type"
	StepAwaitAmount   Step = "await_amount"
	StepAwaitDate     Step = "await_date"
	StepAwaitComment  Step = "await_comment"
	StepAwaitCurrency Step = "await_currency"
)

// Field names used in State.Fields
const (
	FieldKind    = "kind"
	FieldAmount  = "amount"
	FieldDate    = "date"
	FieldComment = "comment"
)

// flowSteps lists the storable steps of each flow in order
var flowSteps = map[Flow][]Step{
	FlowRegistration: {StepAwaitName},
	FlowAddEntry:     {StepAwaitType, StepAwaitAmount, StepAwaitDate, StepAwaitComment},
	FlowViewEntries:  {StepAwaitCurrency},
}

// FlowSteps returns the ordered steps of flow. The result is a copy.
func FlowSteps(flow Flow) []Step {
	return slices.Clone(flowSteps[flow])
}

// FirstStep returns the step a flow enters after START
func FirstStep(flow Flow) Step {
	steps := flowSteps[flow]
	if len(steps) == 0 {
		return StepNone
	}
	return steps[0]
}

// NextStep returns the step after current, or StepNone when current is
// the last step (the next transition is DONE).
func NextStep(flow Flow, current Step) Step {
	steps := flowSteps[flow]
	i := slices.Index(steps, current)
	if i < 0 || i == len(steps)-1 {
		return StepNone
	}
	return steps[i+1]
}

// State is the dialog progress of one identity
type State struct {
	Flow      Flow
	Step      Step
	Fields    map[string]string
	UpdatedAt time.Time
}

// Active reports whether a flow is in progress
func (s State) Active() bool {
	return s.Flow != FlowNone
}

// Validate checks that the step belongs to the flow
func (s State) Validate() error {
	if s.Flow == FlowNone {
		if s.Step != StepNone {
			return fmt.Errorf("step %q set without a flow", s.Step)
		}
		return nil
	}
	steps, ok := flowSteps[s.Flow]
	if !ok {
		return fmt.Errorf("unknown flow %q", s.Flow)
	}
	if !slices.Contains(steps, s.Step) {
		return fmt.Errorf("step %q is not part of flow %q", s.Step, s.Flow)
	}
	return nil
}

// clone returns a deep copy so callers never share the Fields map
func (s State) clone() State {
	c := s
	c.Fields = maps.Clone(s.Fields)
	if c.Fields == nil {
		c.Fields = make(map[string]string)
	}
	return c
}
