package procedures

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	GetStepData(ctx context.Context, buyerID uuid.UUID, step string) (*StepRecord, error)
	UpsertStepData(ctx context.Context, rec *StepRecord) error
	ListSubmittedSteps(ctx context.Context, buyerID uuid.UUID) ([]string, error)

	GetCompletion(ctx context.Context, buyerID uuid.UUID) (*Completion, error)
	CreateCompletion(ctx context.Context, completion *Completion) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetStepData(ctx context.Context, buyerID uuid.UUID, step string) (*StepRecord, error) {
	var rec StepRecord
	err := r.db.GetContext(ctx, &rec,
		"SELECT id, buyer_id, step, payload, revision, submitted_at FROM onboarding_step_data WHERE buyer_id = $1 AND step = $2",
		buyerID, step)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get step data: %w", err)
	}
	return &rec, nil
}

func (r *postgresRepository) UpsertStepData(ctx context.Context, rec *StepRecord) error {
	query := `
		INSERT INTO onboarding_step_data (
			id, buyer_id, step, payload, revision, submitted_at
		) VALUES (
			:id, :buyer_id, :step, :payload, 1, :submitted_at
		)
		ON CONFLICT (buyer_id, step) DO UPDATE SET
			payload = EXCLUDED.payload,
			revision = onboarding_step_data.revision + 1,
			submitted_at = EXCLUDED.submitted_at
		RETURNING revision`

	rows, err := r.db.NamedQueryContext(ctx, query, rec)
	if err != nil {
		return fmt.Errorf("failed to upsert step data: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&rec.Revision); err != nil {
			return fmt.Errorf("failed to read revision: %w", err)
		}
	}
	return rows.Err()
}

func (r *postgresRepository) ListSubmittedSteps(ctx context.Context, buyerID uuid.UUID) ([]string, error) {
	var steps []string
	err := r.db.SelectContext(ctx, &steps,
		"SELECT step FROM onboarding_step_data WHERE buyer_id = $1 ORDER BY submitted_at", buyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submitted steps: %w", err)
	}
	return steps, nil
}

func (r *postgresRepository) GetCompletion(ctx context.Context, buyerID uuid.UUID) (*Completion, error) {
	var c Completion
	err := r.db.GetContext(ctx, &c,
		"SELECT id, buyer_id, completed_at FROM onboarding_completions WHERE buyer_id = $1", buyerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get completion: %w", err)
	}
	return &c, nil
}

func (r *postgresRepository) CreateCompletion(ctx context.Context, completion *Completion) error {
	query := `
		INSERT INTO onboarding_completions (
			id, buyer_id, completed_at
		) VALUES (
			:id, :buyer_id, :completed_at
		)`
	_, err := r.db.NamedExecContext(ctx, query, completion)
	if err != nil {
		return fmt.Errorf("failed to create completion: %w", err)
	}
	return nil
}
