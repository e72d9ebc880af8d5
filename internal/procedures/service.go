package procedures

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrIncomplete is returned by CompleteOnboarding when steps are still missing
var ErrIncomplete = errors.New("onboarding incomplete")

// Service is the procedure layer behind the onboarding wizard: it stores
// validated step payloads and records completion
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new procedures service
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// GetStepData returns the last payload submitted for step, or nil when the
// buyer has not submitted it yet
func (s *Service) GetStepData(ctx context.Context, buyerID uuid.UUID, step string) (json.RawMessage, error) {
	if _, ok := newInput(step); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStep, step)
	}

	rec, err := s.repo.GetStepData(ctx, buyerID, step)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return rec.Payload, nil
}

// Submit validates raw against the step's input shape and stores it
func (s *Service) Submit(ctx context.Context, buyerID uuid.UUID, step string, raw json.RawMessage) (*StepRecord, error) {
	input, err := ParseStep(step, raw)
	if err != nil {
		s.logger.Warn("Rejected step payload",
			zap.String("buyer_id", buyerID.String()),
			zap.String("step", step),
			zap.Error(err))
		return nil, err
	}

	// Store the normalised form, not the caller's bytes
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	rec := &StepRecord{
		ID:          uuid.New(),
		BuyerID:     buyerID,
		Step:        step,
		Payload:     payload,
		SubmittedAt: s.now(),
	}
	if err := s.repo.UpsertStepData(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("Step data submitted",
		zap.String("buyer_id", buyerID.String()),
		zap.String("step", step),
		zap.Int("revision", rec.Revision))

	return rec, nil
}

// CompleteOnboarding records completion once every step has been submitted.
// Completing twice returns the original record.
func (s *Service) CompleteOnboarding(ctx context.Context, buyerID uuid.UUID) (*Completion, error) {
	existing, err := s.repo.GetCompletion(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	submitted, err := s.repo.ListSubmittedSteps(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if missing := missingSteps(submitted); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %v", ErrIncomplete, missing)
	}

	completion := &Completion{
		ID:          uuid.New(),
		BuyerID:     buyerID,
		CompletedAt: s.now(),
	}
	if err := s.repo.CreateCompletion(ctx, completion); err != nil {
		return nil, err
	}

	s.logger.Info("Onboarding completed", zap.String("buyer_id", buyerID.String()))
	return completion, nil
}

func missingSteps(submitted []string) []string {
	seen := make(map[string]bool, len(submitted))
	for _, step := range submitted {
		seen[step] = true
	}
	var missing []string
	for _, step := range Steps {
		if !seen[step] {
			missing = append(missing, step)
		}
	}
	return missing
}
