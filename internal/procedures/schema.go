package procedures

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS onboarding_step_data (
	id           UUID PRIMARY KEY,
	buyer_id     UUID NOT NULL,
	step         TEXT NOT NULL,
	payload      JSONB NOT NULL,
	revision     INTEGER NOT NULL DEFAULT 1,
	submitted_at TIMESTAMPTZ NOT NULL,
	UNIQUE (buyer_id, step)
);
CREATE INDEX IF NOT EXISTS idx_onboarding_step_data_buyer ON onboarding_step_data(buyer_id);

CREATE TABLE IF NOT EXISTS onboarding_completions (
	id           UUID PRIMARY KEY,
	buyer_id     UUID NOT NULL UNIQUE,
	completed_at TIMESTAMPTZ NOT NULL
);
`

// EnsureSchema creates the procedure tables when they do not exist
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create procedure schema: %w", err)
	}
	return nil
}
