package onboarding

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buyer-portal/buyer-portal-backend/internal/procedures"
)

func TestRiskBucket(t *testing.T) {
	cases := map[int]string{
		1: "conservative", 3: "conservative",
		4: "moderate", 7: "moderate",
		8: "aggressive", 10: "aggressive",
	}
	for score, want := range cases {
		assert.Equal(t, want, riskBucket(score), "score %d", score)
	}
}

func TestDemoPayloadsPassProcedureValidation(t *testing.T) {
	for _, form := range BuyerForms() {
		t.Run(string(form.Step()), func(t *testing.T) {
			agg := DemoData(testNow)
			draft, err := form.Seed(&agg, testNow)
			require.NoError(t, err)

			payload, err := form.Commit(draft, &agg, testNow)
			require.NoError(t, err)

			raw, err := json.Marshal(payload)
			require.NoError(t, err)
			_, err = procedures.ParseStep(string(form.Step()), raw)
			assert.NoError(t, err)
		})
	}
}

func TestDemoPayloadsHydrateBack(t *testing.T) {
	for _, form := range BuyerForms() {
		t.Run(string(form.Step()), func(t *testing.T) {
			agg := DemoData(testNow)
			draft, err := form.Seed(&agg, testNow)
			require.NoError(t, err)
			payload, err := form.Commit(draft, &agg, testNow)
			require.NoError(t, err)
			raw, err := json.Marshal(payload)
			require.NoError(t, err)

			var fresh AggregateData
			hydrated, err := form.Hydrate(raw, &fresh)
			require.NoError(t, err)
			assert.True(t, form.Has(&fresh))

			// the hydrated record must itself pass local validation
			_, err = form.Commit(hydrated, &fresh, testNow)
			assert.NoError(t, err)
		})
	}
}

func TestQualificationTransformCollapsesFlags(t *testing.T) {
	form := qualificationForm().(*Form[QualificationAndKYCAML, procedures.QualificationInput])
	v := DemoData(testNow).QualificationKYCAML

	in := form.toRemote(*v)
	assert.Equal(t, "accredited", in.InvestorStatus)
	assert.True(t, in.KYCDocumentsComplete)
	assert.Len(t, in.ProvidedDocuments, 4)

	v.Documents.BoardResolution = false
	v.Accreditation = Accreditation{}
	in = form.toRemote(*v)
	assert.Equal(t, "retail", in.InvestorStatus)
	assert.False(t, in.KYCDocumentsComplete)
}

func TestDueDiligenceTransform(t *testing.T) {
	form := dueDiligenceForm().(*Form[DueDiligenceAndLegal, procedures.DueDiligenceInput])
	v := *DemoData(testNow).DueDiligenceLegal

	in := form.toRemote(v)
	assert.True(t, in.LegalDocumentsComplete)
	assert.True(t, in.AgreementsAccepted)
	require.NotNil(t, in.Counsel)
	assert.Equal(t, "Harcourt & Lane LLP", in.Counsel.FirmName)

	v.LegalDocuments.SubscriptionAgreementReviewed = false
	v.LegalCounsel = LegalCounsel{}
	in = form.toRemote(v)
	assert.False(t, in.LegalDocumentsComplete)
	assert.Nil(t, in.Counsel)
}

func TestBuyBoxTransformDefaults(t *testing.T) {
	form := buyBoxAllocationForm().(*Form[BuyBoxAllocationAndInvestment, procedures.BuyBoxAllocationInput])
	v := *DemoData(testNow).BuyBoxAllocation

	in := form.toRemote(v)
	assert.Equal(t, 3, in.Tranches)
	assert.Equal(t, "GBP", in.Currency)

	v.Currency = "eur"
	v.Funding.Schedule = ""
	in = form.toRemote(v)
	assert.Equal(t, "EUR", in.Currency)
	assert.Equal(t, "immediate", in.FundingSchedule)
	assert.Equal(t, 1, in.Tranches)
}

func TestTransactionAndMonitoringDefaults(t *testing.T) {
	tx := transactionExecutionForm().(*Form[TransactionExecution, procedures.TransactionExecutionInput])
	in := tx.toRemote(TransactionExecution{})
	assert.Equal(t, 30, in.ClosingDays)

	mon := monitoringReportingForm().(*Form[MonitoringReportingAndRelations, procedures.MonitoringReportingInput])
	out := mon.toRemote(MonitoringReportingAndRelations{
		Reporting:     ReportingPreferences{Excel: true, Dashboard: true},
		Notifications: NotificationChannels{SMS: true, InApp: true},
	})
	assert.Equal(t, "quarterly", out.Frequency)
	assert.Equal(t, []string{"excel", "dashboard"}, out.Formats)
	assert.Equal(t, []string{"sms", "in_app"}, out.Channels)
}

func TestPlatformTrainingRejectsPastSession(t *testing.T) {
	form := platformTrainingForm()
	var agg AggregateData
	draft, err := form.Seed(&agg, testNow)
	require.NoError(t, err)

	draft, err = form.Patch(draft, "modules", json.RawMessage(`{"platformOverview":true}`))
	require.NoError(t, err)
	draft, err = form.Patch(draft, "session", json.RawMessage(`{"scheduledDate":"2026-02-01T00:00:00Z"}`))
	require.NoError(t, err)

	_, err = form.Commit(draft, &agg, testNow)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "session.scheduledDate", verr.Field)
	assert.Nil(t, agg.PlatformTraining)
}

func TestOwnershipAboveHundredIsRejected(t *testing.T) {
	form := qualificationForm()
	agg := DemoData(testNow)
	agg.QualificationKYCAML.BeneficialOwners[0].OwnershipPercent = 75
	draft, err := form.Seed(&agg, testNow)
	require.NoError(t, err)

	_, err = form.Commit(draft, &agg, testNow)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "beneficial ownership cannot exceed 100%", verr.Message)
}

func TestCommitChecksRemotePayloadBeforeStoring(t *testing.T) {
	form := initialInquiryForm().(*Form[InitialInquiry, procedures.InitialInquiryInput])
	form.rules = nil

	agg := DemoData(testNow)
	before := *agg.InitialInquiry
	draft, err := form.Seed(&agg, testNow)
	require.NoError(t, err)
	draft, err = form.Patch(draft, "contact", json.RawMessage(`{"email":"not-an-address"}`))
	require.NoError(t, err)

	_, err = form.Commit(draft, &agg, testNow)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, StepInitialInquiry, verr.Step)
	assert.Equal(t, "primaryContact.email", verr.Field)
	assert.Equal(t, before, *agg.InitialInquiry)
}

func TestLocalRulesCoverInputConstraints(t *testing.T) {
	for _, form := range BuyerForms() {
		t.Run(string(form.Step()), func(t *testing.T) {
			var agg AggregateData
			draft, err := form.Seed(&agg, testNow)
			require.NoError(t, err)
			_, err = form.Commit(draft, &agg, testNow)
			if err == nil {
				return
			}
			// defaults that fail must fail on a named local rule, not on the payload check
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NotContains(t, verr.Message, "is not acceptable")
		})
	}
}
