package procedures

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Local adapts the in-process Service to the wizard's procedure boundary
// for one buyer. Payloads still travel as JSON so both paths validate the
// same way.
type Local struct {
	service *Service
	buyerID uuid.UUID
}

// NewLocal binds service to buyerID
func NewLocal(service *Service, buyerID uuid.UUID) *Local {
	return &Local{service: service, buyerID: buyerID}
}

func (l *Local) GetStepData(ctx context.Context, step string) (json.RawMessage, error) {
	return l.service.GetStepData(ctx, l.buyerID, step)
}

func (l *Local) Submit(ctx context.Context, step string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	_, err = l.service.Submit(ctx, l.buyerID, step, raw)
	return err
}

func (l *Local) CompleteOnboarding(ctx context.Context) error {
	_, err := l.service.CompleteOnboarding(ctx, l.buyerID)
	return err
}
