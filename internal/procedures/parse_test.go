package procedures

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTicketSize(t *testing.T) {
	_, err := Parse[TicketSizeInput]([]byte(`{"min": 10, "max": 5}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	ts, err := Parse[TicketSizeInput]([]byte(`{"min": 5, "max": 10}`))
	require.NoError(t, err)
	assert.Equal(t, 10.0, ts.Max)
}

func TestParseAcknowledgementsMustBeTrue(t *testing.T) {
	_, err := Parse[SecondaryMarketInput]([]byte(`{"termsAcknowledged": false, "exitPolicyAcknowledged": true}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	in, err := Parse[SecondaryMarketInput]([]byte(`{"termsAcknowledged": true, "exitPolicyAcknowledged": true}`))
	require.NoError(t, err)
	assert.True(t, in.TermsAcknowledged)
}

func TestParseStepCoversEveryStep(t *testing.T) {
	for _, step := range Steps {
		_, ok := newInput(step)
		assert.True(t, ok, step)
	}

	_, err := ParseStep("nope", []byte(`{}`))
	assert.ErrorIs(t, err, ErrUnknownStep)
}

func TestValidateReportsJSONPaths(t *testing.T) {
	in := BuyBoxAllocationInput{
		BuyBoxes:        []BuyBoxInput{{BuyBoxID: "", Amount: 10}},
		TotalCommitment: 10,
		Currency:        "EURO",
		FundingSchedule: "immediate",
		Tranches:        1,
		FirstDrawdown:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	violations := Validate(in)
	require.Len(t, violations, 2)
	assert.Contains(t, violations, Violation{Field: "buyBoxes[0].buyBoxId", Tag: "required"})
	assert.Contains(t, violations, Violation{Field: "currency", Tag: "len"})

	in.BuyBoxes[0].BuyBoxID = "bb-1"
	in.Currency = "EUR"
	assert.Empty(t, Validate(in))
}
