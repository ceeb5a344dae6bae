// Package submit sends a reviewed budget to the server, choosing between
// create and update and refusing to create a duplicate.
package submit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/theirongolddev/sims/internal/sdapi"
	"github.com/theirongolddev/sims/internal/validate"
	"github.com/theirongolddev/sims/internal/wire"
)

// BudgetKey is the persisted-state key holding the id of the budget being edited.
const BudgetKey = "budgetId"

var (
	// ErrExistenceCheck means the duplicate check failed for a reason other than 404.
	ErrExistenceCheck = errors.New("submit: could not verify whether a budget already exists")
	// ErrSaveFailed wraps any failure of the create or update call.
	ErrSaveFailed = errors.New("submit: failed to save budget")
	// ErrNoBudgetID is returned in edit mode when no budget id is stored.
	ErrNoBudgetID = errors.New("submit: no budget selected for editing")
)

// ExistsError is returned when creating a budget for a year that already has one.
type ExistsError struct {
	Code string
	Year int
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("submit: a budget for %s already exists for %d", e.Code, e.Year)
}

// BudgetAPI is the subset of the API client used for submission.
type BudgetAPI interface {
	FetchBudget(ctx context.Context, code string, year int) (*wire.Payload, error)
	CreateBudget(ctx context.Context, p wire.Payload) (string, error)
	UpdateBudget(ctx context.Context, id string, p wire.Payload) error
}

// KV is the persisted key/value state the submitter reads and writes.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Service runs submissions.
type Service struct {
	api    BudgetAPI
	state  KV
	logger *log.Logger
	now    func() time.Time
}

// New returns a submission service. A nil logger discards log output.
func New(api BudgetAPI, state KV, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{api: api, state: state, logger: logger, now: time.Now}
}

// TargetYear is the budget year a new budget is created for: next calendar year.
func TargetYear(now time.Time) int {
	return now.Year() + 1
}

// Request describes one submission.
type Request struct {
	SchoolCode string
	Edit       bool
	Payload    wire.Payload
}

// Result reports what the server did.
type Result struct {
	BudgetID string
	Created  bool
	Year     int
}

// Submit creates or updates the budget. The payload is validated before any
// request is made. In create mode the existence check completes before the
// create call; only a 404 lets creation proceed.
func (s *Service) Submit(ctx context.Context, req Request) (Result, error) {
	if req.Edit {
		return s.update(ctx, req)
	}
	return s.create(ctx, req)
}

func (s *Service) create(ctx context.Context, req Request) (Result, error) {
	year := TargetYear(s.now())

	p := req.Payload
	p.SchoolCode = req.SchoolCode
	p.Year = year
	p.ID = ""
	if err := validate.Struct(p); err != nil {
		return Result{}, err
	}

	existing, err := s.api.FetchBudget(ctx, req.SchoolCode, year)
	switch {
	case err == nil && existing != nil:
		return Result{}, &ExistsError{Code: req.SchoolCode, Year: year}
	case errors.Is(err, sdapi.ErrNotFound):
		// no budget for that year yet
	case err != nil:
		s.logger.Printf("budget existence check for %s/%d: %v", req.SchoolCode, year, err)
		return Result{}, fmt.Errorf("%w: %w", ErrExistenceCheck, err)
	}

	id, err := s.api.CreateBudget(ctx, p)
	if err != nil {
		s.logger.Printf("create budget for %s/%d: %v", req.SchoolCode, year, err)
		return Result{}, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	if id != "" && s.state != nil {
		if err := s.state.Set(BudgetKey, id); err != nil {
			s.logger.Printf("storing %s: %v", BudgetKey, err)
		}
	}
	s.logger.Printf("created budget %s for %s/%d", id, req.SchoolCode, year)
	return Result{BudgetID: id, Created: true, Year: year}, nil
}

func (s *Service) update(ctx context.Context, req Request) (Result, error) {
	id := ""
	if s.state != nil {
		v, ok, err := s.state.Get(BudgetKey)
		if err != nil {
			return Result{}, fmt.Errorf("%w: reading %s: %w", ErrSaveFailed, BudgetKey, err)
		}
		if ok {
			id = v
		}
	}
	if strings.TrimSpace(id) == "" {
		return Result{}, ErrNoBudgetID
	}

	p := req.Payload
	p.SchoolCode = req.SchoolCode
	if err := validate.Struct(p); err != nil {
		return Result{}, err
	}
	if err := s.api.UpdateBudget(ctx, id, p); err != nil {
		s.logger.Printf("update budget %s: %v", id, err)
		return Result{}, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	s.logger.Printf("updated budget %s for %s/%d", id, req.SchoolCode, p.Year)
	return Result{BudgetID: id, Year: p.Year}, nil
}

// LoadForEdit runs one edit-load cycle: it clears the stored budget id,
// fetches the budget and stores its id again.
func (s *Service) LoadForEdit(ctx context.Context, code string, year int) (*wire.Payload, error) {
	if s.state != nil {
		if err := s.state.Delete(BudgetKey); err != nil {
			return nil, fmt.Errorf("submit: clearing %s: %w", BudgetKey, err)
		}
	}
	p, err := s.api.FetchBudget(ctx, code, year)
	if err != nil {
		return nil, err
	}
	if p.ID != "" && s.state != nil {
		if err := s.state.Set(BudgetKey, p.ID); err != nil {
			return nil, fmt.Errorf("submit: storing %s: %w", BudgetKey, err)
		}
	}
	return p, nil
}
