package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/language"

	"github.com/tangent-app/tangent/internal/events"
	"github.com/tangent-app/tangent/internal/i18n"
	"github.com/tangent-app/tangent/internal/identity"
	"github.com/tangent-app/tangent/internal/kyc"
	"github.com/tangent-app/tangent/internal/logging"
	"github.com/tangent-app/tangent/internal/notification"
	"github.com/tangent-app/tangent/internal/validate"
)

// Verifier issues and checks one-time codes.
type Verifier interface {
	Issue(ctx context.Context, channel, destination string) (time.Time, error)
	Verify(ctx context.Context, channel, destination, code string) error
}

// Deps are the collaborators of Service. Only Store and Verifier are required.
type Deps struct {
	Store     Store
	Verifier  Verifier
	Completer Completer
	Publisher events.Publisher
	Metrics   *Metrics
	Localizer *i18n.Localizer
	Logger    *slog.Logger
}

// Options tune Service behaviour.
type Options struct {
	Flow         *Flow
	KYCURL       string
	Placeholders bool
	HashCost     int
}

// Service runs onboarding sessions: it validates screen results, performs the
// side effects of each step and persists the session between requests.
type Service struct {
	store     Store
	verifier  Verifier
	completer Completer
	publisher events.Publisher
	metrics   *Metrics
	localizer *i18n.Localizer
	logger    *slog.Logger
	ctrl      *Controller
	policy    Policy
	hashCost  int
	now       func() time.Time
}

// NewService builds the onboarding service.
func NewService(deps Deps, opts Options) *Service {
	flow := opts.Flow
	if flow == nil {
		flow = DefaultFlow()
	}
	cost := opts.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Service{
		store:     deps.Store,
		verifier:  deps.Verifier,
		completer: deps.Completer,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		localizer: deps.Localizer,
		logger:    logger,
		ctrl: NewController(flow, ViewConfig{
			Localizer:    deps.Localizer,
			KYCURL:       opts.KYCURL,
			Placeholders: opts.Placeholders,
		}),
		hashCost: cost,
		now:      func() time.Time { return time.Now().UTC() },
	}
	s.policy = Policy{Placeholders: opts.Placeholders, Now: func() time.Time { return s.now() }}
	return s
}

// Start creates a session at the first step. accept may be a language tag or an Accept-Language header.
func (s *Service) Start(ctx context.Context, accept string) (View, error) {
	sess := NewSession(s.ctrl.Flow().Initial(), s.language(accept), s.now())
	if err := s.store.Save(ctx, sess); err != nil {
		return View{}, err
	}
	s.metrics.sessionStarted()
	s.publish(ctx, events.New(events.KindOnboardingStarted, sess.ID, map[string]string{"language": sess.Language}))
	s.logger.Info("onboarding started", slog.String("session_id", sess.ID))
	return s.ctrl.Render(sess, ""), nil
}

// Get renders the current screen of a session. An empty accept keeps the session language.
func (s *Service) Get(ctx context.Context, id, accept string) (View, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	lang := ""
	if accept != "" {
		lang = s.language(accept)
	}
	return s.ctrl.Render(sess, lang), nil
}

// Back returns the session to the previously visited step.
func (s *Service) Back(ctx context.Context, id string, step StepID) (View, error) {
	return s.Submit(ctx, id, Result{Step: step, Action: ActionBack})
}

// Submit validates r, runs the step's side effects and applies the transition.
// Nothing is persisted when validation, a side effect or account creation fails.
func (s *Service) Submit(ctx context.Context, id string, r Result) (View, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	if err := s.ctrl.check(sess, r.Step); err != nil {
		return View{}, err
	}

	if r.Action == ActionBack {
		if err := s.ctrl.GoBack(sess, r.Step); err != nil {
			return View{}, err
		}
		if err := s.save(ctx, sess); err != nil {
			return View{}, err
		}
		return s.ctrl.Render(sess, ""), nil
	}

	if _, err := s.ctrl.Flow().Next(r.Step, r.Action); err != nil {
		return View{}, err
	}
	if r.Payload != nil {
		if err := r.Payload.Validate(s.policy); err != nil {
			s.metrics.rejected(r.Step, "validation")
			return View{}, err
		}
	}

	from := sess.CurrentStep
	out, err := s.runHook(ctx, sess, r)
	if err != nil {
		s.metrics.rejected(r.Step, reason(err))
		return View{}, err
	}

	action := r.Action
	if out.stay && sess.CurrentStep != from {
		action = ActionBack
	}
	if !out.stay {
		if err := s.ctrl.Apply(sess, Result{Step: r.Step, Action: r.Action, Payload: Extend(r.Payload, out.extra)}); err != nil {
			return View{}, err
		}
	}

	var completion *Completion
	if sess.Status == StatusCompleted {
		if completion, err = s.complete(ctx, sess); err != nil {
			return View{}, err
		}
	} else if err := s.save(ctx, sess); err != nil {
		return View{}, err
	}

	if sess.CurrentStep != from {
		s.metrics.transition(from, sess.CurrentStep, action)
		s.publish(ctx, events.New(events.KindOnboardingStep, sess.ID, map[string]string{
			"from":   string(from),
			"to":     string(sess.CurrentStep),
			"action": string(action),
		}))
	}

	view := s.ctrl.Render(sess, "")
	view.Alert = out.alert
	view.Completion = completion
	return view, nil
}

// ResendCode issues a new phone verification code while the session is on phone-verify.
func (s *Service) ResendCode(ctx context.Context, id string) (View, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	if err := s.ctrl.check(sess, StepPhoneVerify); err != nil {
		return View{}, err
	}
	if _, err := s.verifier.Issue(ctx, notification.ChannelSMS, s.phone(sess)); err != nil {
		return View{}, err
	}
	view := s.ctrl.Render(sess, "")
	view.Alert = s.ctrl.Alert(sess, i18n.MsgCodeResent)
	return view, nil
}

// Abandon discards a session that will not be finished.
func (s *Service) Abandon(ctx context.Context, id string) error {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("onboarding abandoned", slog.String("session_id", id), slog.String("step", string(sess.CurrentStep)))
	return nil
}

type hookResult struct {
	extra map[string]string
	alert *i18n.Alert
	stay  bool
}

func (s *Service) runHook(ctx context.Context, sess *Session, r Result) (hookResult, error) {
	switch r.Step {
	case StepCreateAccount:
		provider := identity.ProviderPhone
		switch r.Action {
		case ActionGoogle:
			provider = identity.ProviderGoogle
		case ActionEmail:
			provider = identity.ProviderEmail
		}
		return hookResult{extra: map[string]string{FieldAuthProvider: provider}}, nil

	case StepPhoneEntry:
		ph, _ := r.Payload.(*PhonePayload)
		if ph == nil {
			return hookResult{}, validate.Fieldf(FieldPhoneNumber, "is required")
		}
		if _, err := s.verifier.Issue(ctx, notification.ChannelSMS, ph.e164); err != nil {
			return hookResult{}, err
		}
		return hookResult{}, nil

	case StepPhoneVerify:
		code, _ := r.Payload.(*CodePayload)
		if code == nil {
			return hookResult{}, validate.Fieldf("code", "is required")
		}
		if err := s.verifier.Verify(ctx, notification.ChannelSMS, s.phone(sess), code.Value()); err != nil {
			return hookResult{}, err
		}
		return hookResult{extra: map[string]string{FieldPhoneVerified: "true"}}, nil

	case StepKYC:
		if r.Action == ActionSkip {
			k, _ := r.Payload.(*KYCPayload)
			if k == nil || !k.Confirmed {
				return hookResult{stay: true, alert: s.ctrl.Alert(sess, i18n.MsgKYCSkip)}, nil
			}
			return hookResult{extra: map[string]string{FieldKYCStatus: string(kyc.StatusNotStarted)}}, nil
		}
		return hookResult{extra: map[string]string{FieldKYCStatus: string(kyc.StatusPending)}}, nil

	case StepPINSetup:
		pin, _ := r.Payload.(*CodePayload)
		if pin == nil {
			return hookResult{}, validate.Fieldf("pin", "is required")
		}
		if stored := sess.Field(FieldPINHash); stored != "" && bcrypt.CompareHashAndPassword([]byte(stored), []byte(pin.Value())) == nil {
			return hookResult{extra: map[string]string{FieldPINHash: stored}}, nil
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(pin.Value()), s.hashCost)
		if err != nil {
			return hookResult{}, fmt.Errorf("hash pin: %w", err)
		}
		return hookResult{extra: map[string]string{FieldPINHash: string(hash)}}, nil

	case StepPINConfirm:
		pin, _ := r.Payload.(*CodePayload)
		if pin == nil {
			return hookResult{}, validate.Fieldf("pin", "is required")
		}
		stored := sess.Field(FieldPINHash)
		if stored != "" && bcrypt.CompareHashAndPassword([]byte(stored), []byte(pin.Value())) == nil {
			return hookResult{}, nil
		}
		// Mismatch: start PIN entry over.
		if err := s.ctrl.GoBack(sess, StepPINConfirm); err != nil {
			return hookResult{}, err
		}
		delete(sess.Fields, FieldPINHash)
		return hookResult{stay: true, alert: s.ctrl.Alert(sess, i18n.MsgPINMismatch)}, nil
	}
	return hookResult{}, nil
}

func (s *Service) complete(ctx context.Context, sess *Session) (*Completion, error) {
	var completion *Completion
	if s.completer != nil {
		var err error
		if completion, err = s.completer.Complete(ctx, sess); err != nil {
			return nil, err
		}
	}
	if err := s.store.Delete(ctx, sess.ID); err != nil {
		s.logger.Warn("onboarding session cleanup failed", slog.String("session_id", sess.ID), slog.Any("error", err))
	}

	data := map[string]string{"session_id": sess.ID}
	subject := sess.ID
	if completion != nil {
		data["user_id"] = completion.UserID
		subject = completion.UserID
	}
	s.metrics.completed()
	s.publish(ctx, events.New(events.KindOnboardingCompleted, subject, data))
	s.logger.Info("onboarding completed", slog.String("session_id", sess.ID))
	return completion, nil
}

func (s *Service) save(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = s.now()
	return s.store.Save(ctx, sess)
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("onboarding event publish failed", slog.String("kind", event.Kind), slog.Any("error", err))
	}
}

func (s *Service) language(accept string) string {
	if s.localizer == nil {
		tags, _, err := language.ParseAcceptLanguage(accept)
		if err != nil || len(tags) == 0 {
			return "en"
		}
		b, _ := tags[0].Base()
		return b.String()
	}
	return s.localizer.Resolve(accept)
}

func (s *Service) phone(sess *Session) string {
	if e164 := sess.Field(FieldPhoneE164); e164 != "" {
		return e164
	}
	return sess.Field(FieldPhoneNumber)
}

func reason(err error) string {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		return "validation"
	case errors.Is(err, ErrStepMismatch), errors.Is(err, ErrSessionClosed):
		return "stale"
	default:
		return "side_effect"
	}
}
