// Package review tracks the pre-submission checklist and the submission
// state machine that gates sending a budget to the server.
package review

import (
	"context"
	"errors"
	"sync"
)

// State is a position in the submission lifecycle.
type State int

// Submission states.
const (
	Incomplete State = iota
	ReadyToReview
	ReadyToSubmit
	Submitting
	Submitted
	Failed
)

func (s State) String() string {
	switch s {
	case Incomplete:
		return "incomplete"
	case ReadyToReview:
		return "ready to review"
	case ReadyToSubmit:
		return "ready to submit"
	case Submitting:
		return "submitting"
	case Submitted:
		return "submitted"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Section names one checklist entry.
type Section string

// Checklist sections.
const (
	SectionMeta    Section = "meta"
	SectionRevenue Section = "revenue"
	SectionBudget  Section = "budget"
)

// Sections lists the checklist entries in display order.
var Sections = []Section{SectionMeta, SectionRevenue, SectionBudget}

var (
	// ErrSubmitDisabled is returned when Submit is called while the gate is closed.
	ErrSubmitDisabled = errors.New("review: submission is not enabled")
	// ErrInFlight is returned when a submission is already running.
	ErrInFlight = errors.New("review: submission already in progress")
	// ErrStale is returned when an attempt was superseded before it settled.
	ErrStale = errors.New("review: submission attempt is stale")
	// ErrUnknownSection is returned for a checklist key that does not exist.
	ErrUnknownSection = errors.New("review: unknown checklist section")
)

// Checklist records which sections a human has reviewed.
type Checklist struct {
	Meta    bool `json:"meta"`
	Revenue bool `json:"revenue"`
	Budget  bool `json:"budget"`
}

// Complete reports whether every section has been ticked.
func (c Checklist) Complete() bool {
	return c.Meta && c.Revenue && c.Budget
}

// Get returns the flag for a section.
func (c Checklist) Get(s Section) bool {
	switch s {
	case SectionMeta:
		return c.Meta
	case SectionRevenue:
		return c.Revenue
	case SectionBudget:
		return c.Budget
	}
	return false
}

func (c *Checklist) set(s Section, v bool) error {
	switch s {
	case SectionMeta:
		c.Meta = v
	case SectionRevenue:
		c.Revenue = v
	case SectionBudget:
		c.Budget = v
	default:
		return ErrUnknownSection
	}
	return nil
}

// Attempt identifies one submission. Results for an older attempt are ignored.
type Attempt uint64

// Gate is the submission state machine. It is safe for concurrent use: the
// dashboard settles attempts from background commands.
type Gate struct {
	mu         sync.Mutex
	checklist  Checklist
	reviewOpen bool
	attempt    State // Submitting, Submitted or Failed; zero when idle
	generation Attempt
	lastErr    error
}

// NewGate returns a gate in the Incomplete state.
func NewGate() *Gate {
	return &Gate{}
}

// State returns the current lifecycle state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateLocked()
}

func (g *Gate) stateLocked() State {
	if g.attempt != Incomplete {
		return g.attempt
	}
	if g.checklist.Complete() {
		return ReadyToSubmit
	}
	if g.reviewOpen {
		return ReadyToReview
	}
	return Incomplete
}

// Checklist returns a copy of the checklist.
func (g *Gate) Checklist() Checklist {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.checklist
}

// OpenReview marks the review dialog as shown.
func (g *Gate) OpenReview() {
	g.mu.Lock()
	g.reviewOpen = true
	g.mu.Unlock()
}

// CloseReview hides the review dialog. A running submission is abandoned.
func (g *Gate) CloseReview() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reviewOpen = false
	if g.attempt == Submitting {
		g.cancelLocked()
	}
}

// Set ticks or clears a checklist section. Ticking the last section moves
// the gate to ReadyToSubmit. The checklist is frozen while submitting.
func (g *Gate) Set(s Section, v bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.attempt == Submitting {
		return ErrInFlight
	}
	return g.checklist.set(s, v)
}

// Toggle flips a checklist section.
func (g *Gate) Toggle(s Section) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.attempt == Submitting {
		return ErrInFlight
	}
	return g.checklist.set(s, !g.checklist.Get(s))
}

// CanSubmit reports whether the submit control is enabled. Over budget is a
// hard block regardless of the checklist.
func (g *Gate) CanSubmit(overBudget bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateLocked() == ReadyToSubmit && !overBudget
}

// Begin starts a submission attempt and returns its token.
func (g *Gate) Begin(overBudget bool) (Attempt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.stateLocked() {
	case Submitting:
		return 0, ErrInFlight
	case ReadyToSubmit:
	default:
		return 0, ErrSubmitDisabled
	}
	if overBudget {
		return 0, ErrSubmitDisabled
	}
	g.generation++
	g.attempt = Submitting
	g.lastErr = nil
	return g.generation, nil
}

// Finish settles an attempt. A nil err moves to Submitted, anything else to
// Failed. Results for a superseded attempt return ErrStale and change nothing.
func (g *Gate) Finish(a Attempt, err error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if a != g.generation || g.attempt != Submitting {
		return ErrStale
	}
	if err != nil {
		g.attempt = Failed
		g.lastErr = err
		return nil
	}
	g.attempt = Submitted
	g.reviewOpen = false
	return nil
}

// Submit runs fn as one attempt and waits for it to settle.
func (g *Gate) Submit(ctx context.Context, overBudget bool, fn func(context.Context) error) error {
	a, err := g.Begin(overBudget)
	if err != nil {
		return err
	}
	runErr := fn(ctx)
	if err := g.Finish(a, runErr); err != nil {
		return err
	}
	return runErr
}

// Cancel abandons any in-flight attempt, e.g. when the user navigates away.
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelLocked()
}

func (g *Gate) cancelLocked() {
	if g.attempt == Submitting {
		g.generation++
		g.attempt = Incomplete
	}
}

// Retry returns a Failed gate to its checklist-derived state.
func (g *Gate) Retry() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.attempt == Failed {
		g.attempt = Incomplete
		g.lastErr = nil
	}
}

// LastError returns the error of the last failed attempt.
func (g *Gate) LastError() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastErr
}

// Reset clears the checklist and attempt state, as after a draft reset.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.generation++
	g.checklist = Checklist{}
	g.reviewOpen = false
	g.attempt = Incomplete
	g.lastErr = nil
}
