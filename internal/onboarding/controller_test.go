package onboarding

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController() *Controller {
	return NewController(DefaultFlow(), ViewConfig{KYCURL: "https://kyc.example.com/start"})
}

func TestControllerAdvanceAndBack(t *testing.T) {
	c := newTestController()
	s := NewSession(StepSplash, "en", time.Now())

	assert.NoError(t, c.GoBack(s, StepSplash))
	assert.Equal(t, StepSplash, s.CurrentStep)

	require.NoError(t, c.Advance(s, StepSplash, nil))
	require.NoError(t, c.Advance(s, StepOnboardingIntro, nil))
	require.NoError(t, c.Apply(s, Result{Step: StepCreateAccount, Action: ActionEmail}))
	assert.Equal(t, StepEmailEntry, s.CurrentStep)

	require.NoError(t, c.Advance(s, StepEmailEntry, &EmailPayload{Email: "ana@example.com"}))
	assert.Equal(t, StepPhoneEntry, s.CurrentStep)
	assert.Equal(t, "ana@example.com", s.Field(FieldEmail))

	require.NoError(t, c.Apply(s, Result{Step: StepPhoneEntry, Action: ActionBack}))
	assert.Equal(t, StepEmailEntry, s.CurrentStep)
	assert.Equal(t, "ana@example.com", s.Field(FieldEmail), "back keeps collected fields")

	require.NoError(t, c.GoBack(s, StepEmailEntry))
	assert.Equal(t, StepCreateAccount, s.CurrentStep)

	require.NoError(t, c.Advance(s, StepCreateAccount, nil))
	assert.Equal(t, StepPhoneEntry, s.CurrentStep)
	assert.Equal(t, []StepID{StepSplash, StepOnboardingIntro, StepCreateAccount}, s.History)
}

func TestControllerRejectsStaleStep(t *testing.T) {
	c := newTestController()
	s := NewSession(StepSplash, "en", time.Now())

	err := c.Advance(s, StepKYC, nil)
	assert.ErrorIs(t, err, ErrStepMismatch)
	assert.Equal(t, StepSplash, s.CurrentStep)

	err = c.Apply(s, Result{Step: StepSplash, Action: ActionSkip})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, s.History)
}

func TestControllerCompletesAtTerminal(t *testing.T) {
	c := newTestController()
	s := NewSession(StepWelcome, "en", time.Now())

	require.NoError(t, c.Advance(s, StepWelcome, nil))
	assert.Equal(t, StepHome, s.CurrentStep)
	assert.Equal(t, StatusCompleted, s.Status)
	assert.Contains(t, s.CompletedSteps, StepHome)

	assert.ErrorIs(t, c.GoBack(s, StepHome), ErrSessionClosed)
}

func TestRenderProps(t *testing.T) {
	c := newTestController()
	s := NewSession(StepKYC, "en", time.Now())
	s.push(StepPersonalInfo)

	v := c.Render(s, "")
	assert.Equal(t, StepKYC, v.Step)
	assert.True(t, v.CanGoBack)
	assert.Equal(t, []Action{ActionNext, ActionSkip, ActionBack}, v.Actions)
	assert.Equal(t, "https://kyc.example.com/start?reference="+s.ID, v.Props["url"])

	s.CurrentStep = StepSplash
	s.History = nil
	v = c.Render(s, "")
	assert.False(t, v.CanGoBack)
	assert.Equal(t, 2500, v.Props["auto_advance_ms"])
}
