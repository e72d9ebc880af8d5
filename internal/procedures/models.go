package procedures

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// StepRecord is the latest payload a buyer submitted for one step
type StepRecord struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	BuyerID     uuid.UUID       `json:"buyer_id" db:"buyer_id"`
	Step        string          `json:"step" db:"step"`
	Payload     json.RawMessage `json:"payload" db:"payload"`
	Revision    int             `json:"revision" db:"revision"`
	SubmittedAt time.Time       `json:"submitted_at" db:"submitted_at"`
}

// Completion marks a buyer's onboarding as finished
type Completion struct {
	ID          uuid.UUID `json:"id" db:"id"`
	BuyerID     uuid.UUID `json:"buyer_id" db:"buyer_id"`
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
}
