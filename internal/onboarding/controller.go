package onboarding

import (
	"errors"
	"fmt"
)

var (
	// ErrStepMismatch is returned when a result targets a step other than the current one.
	ErrStepMismatch = errors.New("step is not the current step")
	// ErrSessionClosed is returned for results submitted after completion or abandonment.
	ErrSessionClosed = errors.New("onboarding session is closed")
)

// Controller applies screen results to a session using a validated flow.
// It performs no validation of payload content and no I/O.
type Controller struct {
	flow  *Flow
	views ViewConfig
}

// NewController binds a controller to flow. views configures Render.
func NewController(flow *Flow, views ViewConfig) *Controller {
	return &Controller{flow: flow, views: views}
}

// Flow returns the transition table in use.
func (c *Controller) Flow() *Flow { return c.flow }

// Apply consumes any screen result. Back results pop the history stack.
func (c *Controller) Apply(s *Session, r Result) error {
	if r.Action == ActionBack {
		return c.GoBack(s, r.Step)
	}
	return c.transition(s, r.Step, r.Action, r.Payload)
}

// Advance follows the next edge of step, merging payload fields.
func (c *Controller) Advance(s *Session, step StepID, payload Payload) error {
	return c.transition(s, step, ActionNext, payload)
}

// GoBack returns to the step visited before step. It is a no-op on the first step.
func (c *Controller) GoBack(s *Session, step StepID) error {
	if err := c.check(s, step); err != nil {
		return err
	}
	if prev, ok := s.pop(); ok {
		s.CurrentStep = prev
	}
	return nil
}

func (c *Controller) transition(s *Session, step StepID, action Action, payload Payload) error {
	if err := c.check(s, step); err != nil {
		return err
	}
	to, err := c.flow.Next(step, action)
	if err != nil {
		return err
	}

	if s.Fields == nil {
		s.Fields = make(map[string]string)
	}
	for k, v := range fieldsOf(payload) {
		s.Fields[k] = v
	}
	s.push(step)
	s.markCompleted(step)
	s.CurrentStep = to

	if to == c.flow.Terminal() {
		s.markCompleted(to)
		s.Status = StatusCompleted
	}
	return nil
}

func (c *Controller) check(s *Session, step StepID) error {
	if s.Status != StatusInProgress {
		return ErrSessionClosed
	}
	if step != s.CurrentStep {
		return fmt.Errorf("%w: submitted %s, current %s", ErrStepMismatch, step, s.CurrentStep)
	}
	return nil
}
