// Package onboarding drives the signup flow from splash to home as a server-side session.
package onboarding

import (
	"errors"
	"fmt"
	"sort"
)

// StepID identifies one onboarding screen.
type StepID string

const (
	StepSplash          StepID = "splash"
	StepOnboardingIntro StepID = "onboarding-intro"
	StepCreateAccount   StepID = "create-account"
	StepGoogleAuth      StepID = "google-auth"
	StepEmailEntry      StepID = "email-entry"
	StepPhoneEntry      StepID = "phone-entry"
	StepPhoneVerify     StepID = "phone-verify"
	StepPersonalInfo    StepID = "personal-info"
	StepHomeAddress     StepID = "home-address"
	StepKYC             StepID = "kyc"
	StepPINSetup        StepID = "pin-setup"
	StepPINConfirm      StepID = "pin-confirm"
	StepConnectWallet   StepID = "connect-wallet"
	StepWelcome         StepID = "welcome"
	StepHome            StepID = "home"
)

// Steps is the closed set of known steps.
var Steps = []StepID{
	StepSplash, StepOnboardingIntro, StepCreateAccount, StepGoogleAuth, StepEmailEntry,
	StepPhoneEntry, StepPhoneVerify, StepPersonalInfo, StepHomeAddress, StepKYC,
	StepPINSetup, StepPINConfirm, StepConnectWallet, StepWelcome, StepHome,
}

// ParseStep validates a raw step id.
func ParseStep(raw string) (StepID, error) {
	for _, s := range Steps {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStep, raw)
}

// Action names a transition out of a step.
type Action string

const (
	ActionNext    Action = "next"
	ActionBack    Action = "back"
	ActionSkip    Action = "skip"
	ActionGoogle  Action = "google"
	ActionEmail   Action = "email"
	ActionAddress Action = "address"
)

// ParseAction validates a raw action. Empty means next.
func ParseAction(raw string) (Action, error) {
	switch a := Action(raw); a {
	case "":
		return ActionNext, nil
	case ActionNext, ActionBack, ActionSkip, ActionGoogle, ActionEmail, ActionAddress:
		return a, nil
	default:
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, raw)
	}
}

// Edge is one row of the transition table.
type Edge struct {
	From   StepID
	Action Action
	To     StepID
}

var (
	ErrUnknownStep       = errors.New("unknown step")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInvalidFlow       = errors.New("invalid onboarding flow")
)

// DefaultEdges is the compiled-in transition table.
func DefaultEdges() []Edge {
	return []Edge{
		{StepSplash, ActionNext, StepOnboardingIntro},
		{StepOnboardingIntro, ActionNext, StepCreateAccount},
		{StepCreateAccount, ActionNext, StepPhoneEntry},
		{StepCreateAccount, ActionGoogle, StepGoogleAuth},
		{StepCreateAccount, ActionEmail, StepEmailEntry},
		{StepGoogleAuth, ActionNext, StepPhoneEntry},
		{StepEmailEntry, ActionNext, StepPhoneEntry},
		{StepPhoneEntry, ActionNext, StepPhoneVerify},
		{StepPhoneVerify, ActionNext, StepPersonalInfo},
		{StepPersonalInfo, ActionNext, StepKYC},
		{StepPersonalInfo, ActionAddress, StepHomeAddress},
		{StepHomeAddress, ActionNext, StepKYC},
		{StepKYC, ActionNext, StepPINSetup},
		{StepKYC, ActionSkip, StepPINSetup},
		{StepPINSetup, ActionNext, StepPINConfirm},
		{StepPINConfirm, ActionNext, StepConnectWallet},
		{StepConnectWallet, ActionNext, StepWelcome},
		{StepConnectWallet, ActionSkip, StepWelcome},
		{StepWelcome, ActionNext, StepHome},
	}
}

// Flow is a validated transition table.
type Flow struct {
	initial  StepID
	terminal StepID
	edges    map[StepID]map[Action]StepID
}

// DefaultFlow returns the compiled-in flow. It panics if the table is invalid.
func DefaultFlow() *Flow {
	f, err := NewFlow(DefaultEdges(), StepSplash, StepHome)
	if err != nil {
		panic(err)
	}
	return f
}

// NewFlow validates edges over the known steps. The table must be connected from
// initial, reach terminal from every step, give every non-terminal step exactly one
// next edge and contain no forward cycle. Back is never a table edge.
func NewFlow(edges []Edge, initial, terminal StepID) (*Flow, error) {
	known := make(map[StepID]bool, len(Steps))
	for _, s := range Steps {
		known[s] = true
	}
	if !known[initial] || !known[terminal] {
		return nil, fmt.Errorf("%w: unknown initial or terminal step", ErrInvalidFlow)
	}

	f := &Flow{initial: initial, terminal: terminal, edges: make(map[StepID]map[Action]StepID)}
	for _, e := range edges {
		if !known[e.From] || !known[e.To] {
			return nil, fmt.Errorf("%w: edge %s -%s-> %s references an unknown step", ErrInvalidFlow, e.From, e.Action, e.To)
		}
		if e.Action == ActionBack || e.Action == "" {
			return nil, fmt.Errorf("%w: %s has a %q edge", ErrInvalidFlow, e.From, e.Action)
		}
		if f.edges[e.From] == nil {
			f.edges[e.From] = make(map[Action]StepID)
		}
		if _, dup := f.edges[e.From][e.Action]; dup {
			return nil, fmt.Errorf("%w: %s has two %s edges", ErrInvalidFlow, e.From, e.Action)
		}
		f.edges[e.From][e.Action] = e.To
	}

	if len(f.edges[terminal]) > 0 {
		return nil, fmt.Errorf("%w: terminal step %s has outgoing edges", ErrInvalidFlow, terminal)
	}
	for _, s := range Steps {
		if s == terminal {
			continue
		}
		if _, ok := f.edges[s][ActionNext]; !ok {
			return nil, fmt.Errorf("%w: %s has no next edge", ErrInvalidFlow, s)
		}
	}

	forward := f.reach(initial, f.successors)
	reverse := f.reach(terminal, f.predecessors)
	for _, s := range Steps {
		if !forward[s] {
			return nil, fmt.Errorf("%w: %s is unreachable from %s", ErrInvalidFlow, s, initial)
		}
		if !reverse[s] {
			return nil, fmt.Errorf("%w: %s cannot reach %s", ErrInvalidFlow, s, terminal)
		}
	}

	if cycle := f.findCycle(); cycle != "" {
		return nil, fmt.Errorf("%w: forward cycle through %s", ErrInvalidFlow, cycle)
	}
	return f, nil
}

// Initial returns the first step.
func (f *Flow) Initial() StepID { return f.initial }

// Terminal returns the final step.
func (f *Flow) Terminal() StepID { return f.terminal }

// Next looks up the successor of (step, action).
func (f *Flow) Next(step StepID, action Action) (StepID, error) {
	to, ok := f.edges[step][action]
	if !ok {
		return "", fmt.Errorf("%w: %s has no %s transition", ErrInvalidTransition, step, action)
	}
	return to, nil
}

// Actions lists the forward actions available at step, next first.
func (f *Flow) Actions(step StepID) []Action {
	out := make([]Action, 0, len(f.edges[step]))
	for a := range f.edges[step] {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i] == ActionNext || out[j] == ActionNext {
			return out[i] == ActionNext
		}
		return out[i] < out[j]
	})
	return out
}

// DefaultPath follows next edges from the initial step to the terminal.
func (f *Flow) DefaultPath() []StepID {
	path := []StepID{f.initial}
	for s := f.initial; s != f.terminal; {
		s = f.edges[s][ActionNext]
		path = append(path, s)
	}
	return path
}

func (f *Flow) successors(s StepID) []StepID {
	out := make([]StepID, 0, len(f.edges[s]))
	for _, to := range f.edges[s] {
		out = append(out, to)
	}
	return out
}

func (f *Flow) predecessors(s StepID) []StepID {
	var out []StepID
	for from, actions := range f.edges {
		for _, to := range actions {
			if to == s {
				out = append(out, from)
			}
		}
	}
	return out
}

func (f *Flow) reach(start StepID, next func(StepID) []StepID) map[StepID]bool {
	seen := map[StepID]bool{start: true}
	queue := []StepID{start}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, n := range next(s) {
			if !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	return seen
}

// findCycle returns a step on a forward cycle, or "" when the graph is acyclic.
func (f *Flow) findCycle() StepID {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[StepID]int, len(Steps))
	var visit func(StepID) StepID
	visit = func(s StepID) StepID {
		state[s] = visiting
		for _, n := range f.successors(s) {
			switch state[n] {
			case visiting:
				return n
			case unvisited:
				if c := visit(n); c != "" {
					return c
				}
			}
		}
		state[s] = done
		return ""
	}
	for _, s := range Steps {
		if state[s] == unvisited {
			if c := visit(s); c != "" {
				return c
			}
		}
	}
	return ""
}
