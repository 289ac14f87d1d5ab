package commission

import (
	"context"
	"fmt"

	"ganji/internal/core/apperror"
	"ganji/internal/core/id"
	"ganji/internal/core/types"
	"ganji/pkg/logger"
)

// Repository reads and stores commission rules.
type Repository interface {
	ListActive(ctx context.Context) ([]Rule, error)
	Get(ctx context.Context, ruleID id.ID) (*Rule, error)
	Create(ctx context.Context, rule *Rule) error
}

// Cache holds the active rule set between reads. Implementations may be absent.
type Cache interface {
	// GetActive returns the cached rules; ok is false on a miss.
	GetActive(ctx context.Context) (rules []Rule, ok bool, err error)
	SetActive(ctx context.Context, rules []Rule) error
	Invalidate(ctx context.Context) error
}

// Service provides commission operations backed by storage.
type Service struct {
	repo  Repository
	cache Cache
}

// NewService creates a commission service. cache may be nil.
func NewService(repo Repository, cache Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// ListActive returns the active rules, from cache when possible.
// Cache failures are logged and fall through to the repository.
func (s *Service) ListActive(ctx context.Context) ([]Rule, error) {
	if s.cache != nil {
		rules, ok, err := s.cache.GetActive(ctx)
		switch {
		case err != nil:
			logger.Warn(ctx, "commission rule cache read failed", "error", err)
		case ok:
			return rules, nil
		}
	}

	rules, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active rules: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetActive(ctx, rules); err != nil {
			logger.Warn(ctx, "commission rule cache write failed", "error", err)
		}
	}
	return rules, nil
}

// Get returns one rule regardless of its active flag.
func (s *Service) Get(ctx context.Context, ruleID id.ID) (*Rule, error) {
	rule, err := s.repo.Get(ctx, ruleID)
	if err != nil {
		return nil, fmt.Errorf("get rule: %w", err)
	}
	return rule, nil
}

// Create validates and stores a new rule.
func (s *Service) Create(ctx context.Context, rule *Rule) error {
	if rule.ID == id.Nil() {
		rule.ID = id.New()
	}
	if err := Validate(rule); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, rule); err != nil {
		return fmt.Errorf("create rule: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			logger.Warn(ctx, "commission rule cache invalidation failed", "error", err)
		}
	}
	logger.Info(ctx, "commission rule created", "rule_id", rule.ID, "type", rule.Type)
	return nil
}

// Resolve loads a rule and resolves amount under it.
// Inactive or unknown rules yield NO_APPLICABLE_RULE.
func (s *Service) Resolve(ctx context.Context, amount types.Money, ruleID id.ID) (Resolution, error) {
	rule, err := s.repo.Get(ctx, ruleID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return Resolution{}, apperror.NewNoApplicableRule("commission rule not found").
				WithDetail("rule_id", ruleID.String())
		}
		return Resolution{}, fmt.Errorf("get rule: %w", err)
	}
	return ResolveDetailed(amount, rule)
}
