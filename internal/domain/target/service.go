package target

import (
	"context"
	"fmt"
	"time"

	"ganji/internal/core/apperror"
	"ganji/internal/core/id"
	"ganji/internal/core/types"
	"ganji/internal/domain/aggregate"
	"ganji/internal/domain/calendar"
	"ganji/pkg/logger"
)

// Repository stores targets.
type Repository interface {
	Create(ctx context.Context, t *Target) error
	Get(ctx context.Context, targetID id.ID) (*Target, error)
	List(ctx context.Context, filter ListFilter) ([]Target, error)
	// UpdateStatus atomically moves a target from one status to another.
	// It returns false when the stored status was no longer from.
	UpdateStatus(ctx context.Context, targetID id.ID, from, to Status) (bool, error)
}

// ActualsSource summarizes one owner's ledger over a window.
type ActualsSource interface {
	Summarize(ctx context.Context, ownerID id.ID, w calendar.Window) (aggregate.Summary, error)
}

// Evaluation is an Outcome together with what happened to the stored target.
type Evaluation struct {
	Target  Target  `json:"target"`
	Outcome Outcome `json:"outcome"`
	// Transitioned is true when this call changed the stored status.
	Transitioned bool `json:"transitioned"`
	// AlreadyTransitioned is true when another writer changed the status first.
	AlreadyTransitioned bool `json:"alreadyTransitioned"`
}

// CreateInput carries the fields of a new target.
type CreateInput struct {
	OwnerID     id.ID
	Name        string
	Metric      Metric
	Period      Period
	TargetValue types.Money
	BonusAmount types.OptionalMoney
}

// Service evaluates targets and writes status transitions back to storage.
type Service struct {
	repo    Repository
	actuals ActualsSource
	loc     *time.Location
	now     func() time.Time
}

// NewService creates a target service. Periods are computed in loc (nil means UTC).
func NewService(repo Repository, actuals ActualsSource, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, actuals: actuals, loc: loc, now: time.Now}
}

// WithClock replaces the clock used to decide "today". Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Today returns the current shop-local date.
func (s *Service) Today() calendar.Date {
	return calendar.DateIn(s.now(), s.loc)
}

// Create stores a new Active target.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Target, error) {
	t, err := NewTarget(in.OwnerID, in.Name, in.Metric, in.Period, in.TargetValue, in.BonusAmount)
	if err != nil {
		return nil, err
	}
	t.CreatedAt = s.now().UTC()
	t.UpdatedAt = t.CreatedAt

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create target: %w", err)
	}
	logger.Info(ctx, "target created", "target_id", t.ID, "owner_id", t.OwnerID, "metric", t.Metric)
	return t, nil
}

// Get returns a target by id.
func (s *Service) Get(ctx context.Context, targetID id.ID) (*Target, error) {
	t, err := s.repo.Get(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("get target: %w", err)
	}
	return t, nil
}

// List returns targets matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Target, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperror.NewValidation(fmt.Sprintf("unknown target status %q", filter.Status))
	}

	targets, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	return targets, nil
}

// EvaluateByID evaluates a target against its current calendar period.
func (s *Service) EvaluateByID(ctx context.Context, targetID id.ID) (*Evaluation, error) {
	t, err := s.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return s.EvaluateCurrent(ctx, t)
}

// EvaluateCurrent evaluates t against the calendar period containing today.
func (s *Service) EvaluateCurrent(ctx context.Context, t *Target) (*Evaluation, error) {
	today := s.Today()
	return s.evaluate(ctx, t, PeriodWindow(t.Period, today), today)
}

// Settle evaluates t against the calendar period before the current one, which has
// always elapsed. Targets created after that period ended are left untouched.
func (s *Service) Settle(ctx context.Context, t *Target) (*Evaluation, error) {
	today := s.Today()
	previous := PeriodWindow(t.Period, today).Previous()

	if calendar.DateIn(t.CreatedAt, s.loc).After(previous.End) {
		return &Evaluation{Target: *t}, nil
	}
	return s.evaluate(ctx, t, previous, today)
}

func (s *Service) evaluate(ctx context.Context, t *Target, period calendar.Window, today calendar.Date) (*Evaluation, error) {
	if t.Status.IsTerminal() {
		return &Evaluation{Target: *t, Outcome: Evaluate(*t, aggregate.ZeroSummary(), period, today)}, nil
	}

	summary, err := s.actuals.Summarize(ctx, t.OwnerID, period)
	if err != nil {
		return nil, fmt.Errorf("summarize actuals: %w", err)
	}

	outcome := Evaluate(*t, summary, period, today)
	result := &Evaluation{Target: *t, Outcome: outcome}
	if !outcome.Changed(*t) {
		return result, nil
	}

	return s.transition(ctx, result, t.Status, outcome.Status)
}

func (s *Service) transition(ctx context.Context, result *Evaluation, from, to Status) (*Evaluation, error) {
	targetID := result.Target.ID

	ok, err := s.repo.UpdateStatus(ctx, targetID, from, to)
	if err != nil {
		return nil, fmt.Errorf("update target status: %w", err)
	}

	if !ok {
		current, err := s.repo.Get(ctx, targetID)
		if err != nil {
			return nil, fmt.Errorf("reload target: %w", err)
		}
		logger.Info(ctx, "target already transitioned",
			"target_id", targetID, "wanted", to, "status", current.Status)
		result.Target = *current
		result.Outcome.Status = current.Status
		result.AlreadyTransitioned = true
		return result, nil
	}

	result.Target.Status = to
	result.Target.UpdatedAt = s.now().UTC()
	result.Transitioned = true
	logger.Info(ctx, "target transitioned",
		"target_id", targetID, "from", from, "to", to, "period", result.Outcome.Period.String())
	return result, nil
}

// Cancel moves an Active target to Cancelled. Cancelling a cancelled target is a no-op;
// cancelling a completed or failed one is rejected with TARGET_CLOSED.
func (s *Service) Cancel(ctx context.Context, targetID id.ID) (*Target, error) {
	t, err := s.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}

	switch t.Status {
	case StatusCancelled:
		return t, nil
	case StatusCompleted, StatusFailed:
		return nil, apperror.NewTargetClosed(t.ID.String(), string(t.Status))
	}

	ok, err := s.repo.UpdateStatus(ctx, t.ID, StatusActive, StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("cancel target: %w", err)
	}
	if !ok {
		current, err := s.repo.Get(ctx, t.ID)
		if err != nil {
			return nil, fmt.Errorf("reload target: %w", err)
		}
		if current.Status == StatusCancelled {
			return current, nil
		}
		return nil, apperror.NewTargetClosed(current.ID.String(), string(current.Status))
	}

	t.Status = StatusCancelled
	t.UpdatedAt = s.now().UTC()
	logger.Info(ctx, "target cancelled", "target_id", t.ID)
	return t, nil
}

// SweepResult counts what one sweep over active targets did.
type SweepResult struct {
	Evaluated int
	Completed int
	Failed    int
	Skipped   int
}

// Sweep evaluates every active target against its current period and settles the
// previous one. Errors on individual targets are logged and counted as skipped.
func (s *Service) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult

	targets, err := s.repo.List(ctx, ListFilter{Status: StatusActive})
	if err != nil {
		return res, fmt.Errorf("list active targets: %w", err)
	}

	for i := range targets {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		t := &targets[i]

		eval, err := s.EvaluateCurrent(ctx, t)
		if err == nil && eval.Target.Status == StatusActive {
			eval, err = s.Settle(ctx, &eval.Target)
		}
		if err != nil {
			logger.Warn(ctx, "target evaluation failed", "target_id", t.ID, "error", err)
			res.Skipped++
			continue
		}

		res.Evaluated++
		if eval.Transitioned {
			switch eval.Target.Status {
			case StatusCompleted:
				res.Completed++
			case StatusFailed:
				res.Failed++
			}
		}
	}
	return res, nil
}
