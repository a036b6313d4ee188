package onboarding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFlowPath(t *testing.T) {
	f := DefaultFlow()
	assert.Equal(t, []StepID{
		StepSplash, StepOnboardingIntro, StepCreateAccount, StepPhoneEntry, StepPhoneVerify,
		StepPersonalInfo, StepKYC, StepPINSetup, StepPINConfirm, StepConnectWallet, StepWelcome, StepHome,
	}, f.DefaultPath())
}

func TestFlowNextAndActions(t *testing.T) {
	f := DefaultFlow()

	to, err := f.Next(StepCreateAccount, ActionGoogle)
	require.NoError(t, err)
	assert.Equal(t, StepGoogleAuth, to)

	to, err = f.Next(StepPersonalInfo, ActionAddress)
	require.NoError(t, err)
	assert.Equal(t, StepHomeAddress, to)

	_, err = f.Next(StepPhoneVerify, ActionSkip)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.Equal(t, []Action{ActionNext, ActionEmail, ActionGoogle}, f.Actions(StepCreateAccount))
	assert.Equal(t, []Action{ActionNext, ActionSkip}, f.Actions(StepKYC))
	assert.Empty(t, f.Actions(StepHome))
}

func withoutEdge(edges []Edge, from StepID, action Action) []Edge {
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if e.From == from && e.Action == action {
			continue
		}
		out = append(out, e)
	}
	return out
}

func TestNewFlowRejectsBrokenTables(t *testing.T) {
	cases := map[string][]Edge{
		"missing next":  withoutEdge(DefaultEdges(), StepKYC, ActionNext),
		"back edge":     append(DefaultEdges(), Edge{StepKYC, ActionBack, StepPersonalInfo}),
		"duplicate":     append(DefaultEdges(), Edge{StepKYC, ActionNext, StepWelcome}),
		"unknown step":  append(DefaultEdges(), Edge{StepKYC, ActionAddress, StepID("nowhere")}),
		"terminal exit": append(DefaultEdges(), Edge{StepHome, ActionNext, StepSplash}),
		"cycle":         append(DefaultEdges(), Edge{StepPINConfirm, ActionSkip, StepPINSetup}),
		"unreachable":   withoutEdge(DefaultEdges(), StepCreateAccount, ActionGoogle),
	}
	for name, edges := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewFlow(edges, StepSplash, StepHome)
			assert.ErrorIs(t, err, ErrInvalidFlow)
		})
	}
}

func TestParseStepAndAction(t *testing.T) {
	step, err := ParseStep("pin-confirm")
	require.NoError(t, err)
	assert.Equal(t, StepPINConfirm, step)

	_, err = ParseStep("dashboard")
	assert.ErrorIs(t, err, ErrUnknownStep)

	action, err := ParseAction("")
	require.NoError(t, err)
	assert.Equal(t, ActionNext, action)

	_, err = ParseAction("jump")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
