package otp

import (
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// State describes where the verification flow currently is.
type State int

const (
	// StateCollecting: fewer digits entered than the code length.
	StateCollecting State = iota
	// StateComplete: all digits entered, awaiting manual submit.
	StateComplete
	// StateSubmitting: a verify call is in flight.
	StateSubmitting
	// StateVerified: the backend accepted the code. Terminal.
	StateVerified
)

// Config carries the externally configurable flow settings.
type Config struct {
	CodeLength     int
	ResendCooldown time.Duration
	AutoSubmit     bool
}

func (c Config) withDefaults() Config {
	if c.CodeLength <= 0 {
		c.CodeLength = 6
	}
	if c.ResendCooldown <= 0 {
		c.ResendCooldown = 60 * time.Second
	}
	return c
}

// Submitter receives the completed code. The flow guarantees exactly one
// submission per completion.
type Submitter func(code string)

// Flow is the stepwise OTP entry machine: collect digits, auto-submit on
// completion, track the verify outcome, and gate resends behind a cooldown.
type Flow struct {
	mu     sync.Mutex
	cfg    Config
	clock  clockwork.Clock
	submit Submitter
	logger *zap.Logger

	digits        []rune
	state         State
	cooldownUntil time.Time
}

// NewFlow builds a flow and starts the initial resend cooldown, matching a
// verification screen that appears right after a code was sent.
func NewFlow(cfg Config, clock clockwork.Clock, submit Submitter, log *zap.Logger) *Flow {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	return &Flow{
		cfg:           cfg,
		clock:         clock,
		submit:        submit,
		logger:        log,
		state:         StateCollecting,
		cooldownUntil: clock.Now().Add(cfg.ResendCooldown),
	}
}

// EnterDigit appends one digit while collecting. Non-digits are ignored.
// Filling the last position completes the code and, with auto-submit on,
// triggers exactly one submission.
func (f *Flow) EnterDigit(r rune) {
	f.mu.Lock()
	if f.state != StateCollecting || !unicode.IsDigit(r) || len(f.digits) >= f.cfg.CodeLength {
		f.mu.Unlock()
		return
	}
	f.digits = append(f.digits, r)
	submit := f.completeLocked()
	f.mu.Unlock()

	if submit != nil {
		submit()
	}
}

// Backspace removes the last entered digit.
func (f *Flow) Backspace() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateComplete {
		f.state = StateCollecting
	}
	if f.state != StateCollecting || len(f.digits) == 0 {
		return
	}
	f.digits = f.digits[:len(f.digits)-1]
}

// Paste accepts a pasted string. Only a paste whose digit content matches
// the code length exactly replaces the entry and short-circuits to
// completion; anything else is ignored.
func (f *Flow) Paste(text string) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, text)

	f.mu.Lock()
	if f.state != StateCollecting || len(cleaned) != f.cfg.CodeLength {
		f.mu.Unlock()
		return
	}
	f.digits = []rune(cleaned)
	submit := f.completeLocked()
	f.mu.Unlock()

	if submit != nil {
		submit()
	}
}

// Submit triggers a manual submission of a complete code.
func (f *Flow) Submit() {
	f.mu.Lock()
	if f.state != StateComplete {
		f.mu.Unlock()
		return
	}
	f.state = StateSubmitting
	code := string(f.digits)
	submit := f.submit
	f.mu.Unlock()

	if submit != nil {
		submit(code)
	}
}

// Resolve records the verify outcome. A rejection clears the entered digits
// and returns the flow to collecting.
func (f *Flow) Resolve(verified bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateSubmitting {
		return
	}
	if verified {
		f.state = StateVerified
		return
	}
	f.digits = nil
	f.state = StateCollecting
}

// Code returns the currently entered digits.
func (f *Flow) Code() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.digits)
}

// State returns the current flow state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// CanResend reports whether the cooldown has fully elapsed.
func (f *Flow) CanResend() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.clock.Now().Before(f.cooldownUntil)
}

// ResendRemaining returns the whole seconds left on the cooldown for
// display, counting down once per second to zero.
func (f *Flow) ResendRemaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	remaining := f.cooldownUntil.Sub(f.clock.Now())
	if remaining <= 0 {
		return 0
	}
	return int((remaining + time.Second - 1) / time.Second)
}

// Resend consumes the resend action if available and restarts the cooldown.
// The caller issues the actual resend request only when true is returned.
func (f *Flow) Resend() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clock.Now().Before(f.cooldownUntil) {
		return false
	}
	f.cooldownUntil = f.clock.Now().Add(f.cfg.ResendCooldown)
	return true
}

// completeLocked transitions to complete when all digits are present and
// returns the pending submit callback, to be invoked outside the lock.
func (f *Flow) completeLocked() func() {
	if len(f.digits) != f.cfg.CodeLength {
		return nil
	}
	f.state = StateComplete
	if !f.cfg.AutoSubmit || f.submit == nil {
		return nil
	}
	f.state = StateSubmitting
	code := string(f.digits)
	submit := f.submit
	f.logger.Debug("otp code complete, auto-submitting")
	return func() { submit(code) }
}
