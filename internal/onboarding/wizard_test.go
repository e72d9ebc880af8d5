package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buyer-portal/buyer-portal-backend/internal/procedures"
	"buyer-portal/buyer-portal-backend/internal/sessions"
)

func TestNewWizardRejectsUnknownInitialStep(t *testing.T) {
	registry, err := NewBuyerRegistry()
	require.NoError(t, err)

	_, err = NewWizard(context.Background(), registry, Options{InitialStep: "closing-dinner"})
	assert.ErrorIs(t, err, ErrUnknownStep)
}

func TestNewWizardStartsAtFirstStepWithGuide(t *testing.T) {
	fx := newFixture(t, "", nil)

	view := fx.wizard.View()
	assert.Equal(t, StepInitialInquiry, view.CurrentStep.ID)
	assert.Equal(t, 0, view.StepIndex)
	assert.NotEmpty(t, view.GuideMessage)
	assert.JSONEq(t, `"family_office"`, string(mustField(t, view.Draft, "organisationType")))
}

func TestBackNeverMutatesAggregate(t *testing.T) {
	ctx := context.Background()
	for i, step := range BuyerSteps() {
		t.Run(string(step.ID), func(t *testing.T) {
			fx := newFixture(t, step.ID, demo())
			before := fx.wizard.Data()

			view := fx.wizard.Back(ctx)

			want := i - 1
			if want < 0 {
				want = 0
			}
			assert.Equal(t, want, view.StepIndex)
			assert.Equal(t, before, fx.wizard.Data())
			assert.Empty(t, fx.procs.ops(""))
		})
	}
}

func TestGoToStepIsBounded(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, StepSecondaryMarketExit, nil)
	fx.wizard.GoToNextStep(ctx)
	assert.Equal(t, StepSecondaryMarketExit, fx.wizard.Current().ID)

	fx = newFixture(t, StepInitialInquiry, nil)
	fx.wizard.GoToPreviousStep(ctx)
	assert.Equal(t, StepInitialInquiry, fx.wizard.Current().ID)
	fx.wizard.GoToNextStep(ctx)
	assert.Equal(t, StepQualification, fx.wizard.Current().ID)
}

func TestContinueIsIdempotent(t *testing.T) {
	ctx := context.Background()
	for _, step := range BuyerSteps() {
		t.Run(string(step.ID), func(t *testing.T) {
			fx := newFixture(t, step.ID, demo())

			_, err := fx.wizard.Continue(ctx)
			require.NoError(t, err)
			first := sliceJSON(t, fx.wizard.Data(), step.ID)

			if fx.wizard.Current().ID != step.ID {
				fx.wizard.Back(ctx)
			}
			require.Equal(t, step.ID, fx.wizard.Current().ID)

			_, err = fx.wizard.Continue(ctx)
			require.NoError(t, err)
			assert.JSONEq(t, first, sliceJSON(t, fx.wizard.Data(), step.ID))
			assert.Len(t, fx.procs.ops("submit"), 2)
		})
	}
}

func TestUpdateWizardDataPreservesSiblings(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, "", demo())
	inquiry := *fx.wizard.Data().InitialInquiry

	replacement := &QualificationAndKYCAML{Entity: EntityDetails{LegalName: "Other Ltd"}}
	view := fx.wizard.UpdateWizardData(ctx, AggregateData{QualificationKYCAML: replacement})

	assert.Equal(t, "Other Ltd", view.Data.QualificationKYCAML.Entity.LegalName)
	assert.Equal(t, inquiry, *view.Data.InitialInquiry)
	assert.NotNil(t, view.Data.SecondaryMarketExit)
}

func TestInitialInquiryScenario(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, StepInitialInquiry, nil)

	edit(t, fx.wizard, "", `{"organisationName":"Acme Partners"}`)
	edit(t, fx.wizard, "contact", `{"name":"A. Smith","email":"a@x.com"}`)
	edit(t, fx.wizard, "contact", `{"phone":"+44 1"}`)

	view, err := fx.wizard.Continue(ctx)
	require.NoError(t, err)

	require.NotNil(t, view.Data.InitialInquiry)
	assert.Equal(t, "Acme Partners", view.Data.InitialInquiry.OrganisationName)
	assert.Equal(t, "A. Smith", view.Data.InitialInquiry.Contact.Name)
	assert.Equal(t, StepQualification, view.CurrentStep.ID)

	submits := fx.procs.ops("submit")
	require.Len(t, submits, 1)
	payload, ok := submits[0].Payload.(procedures.InitialInquiryInput)
	require.True(t, ok)
	assert.Equal(t, "Acme Partners", payload.OrganizationName)
	assert.Equal(t, "family_office", payload.InvestorCategory)
	assert.Equal(t, "+44 1", payload.PrimaryContact.Phone)
}

func TestInitialInquiryRulesRunInOrder(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, StepInitialInquiry, nil)

	_, err := fx.wizard.Continue(ctx)
	assertValidation(t, err, "organisationName")

	edit(t, fx.wizard, "", `{"organisationName":"Acme Partners"}`)
	edit(t, fx.wizard, "contact", `{"name":"A. Smith","email":"not-an-email","phone":"+44 1"}`)
	_, err = fx.wizard.Continue(ctx)
	assertValidation(t, err, "contact.email")

	assert.Nil(t, fx.wizard.Data().InitialInquiry)
	assert.Empty(t, fx.procs.ops("submit"))
}

func TestInvestorProfileRejectsMinimumNotBelowMaximum(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		name     string
		min, max float64
	}{
		{"equal", 1_000_000, 1_000_000},
		{"greater", 2_000_000, 1_000_000},
	} {
		t.Run(tc.name, func(t *testing.T) {
			fx := newFixture(t, StepInvestorProfile, nil)
			fields, _ := json.Marshal(map[string]any{
				"minimumInvestmentSize": tc.min,
				"maximumInvestmentSize": tc.max,
				"preferredRegions":      []string{"UK"},
			})
			edit(t, fx.wizard, "", string(fields))

			_, err := fx.wizard.Continue(ctx)
			assertValidation(t, err, "maximumInvestmentSize")
			assert.Equal(t, StepInvestorProfile, fx.wizard.Current().ID)
			assert.Equal(t, AggregateData{}, fx.wizard.Data())
			assert.Empty(t, fx.procs.ops("submit"))
		})
	}
}

func TestBuyBoxAllocationBoundaries(t *testing.T) {
	ctx := context.Background()

	fx := newFixture(t, StepBuyBoxAllocation, nil)
	edit(t, fx.wizard, "", `{"totalAllocation":1000000}`)
	_, err := fx.wizard.Continue(ctx)
	assertValidation(t, err, "selectedBuyBoxes")

	for _, total := range []float64{0, -5} {
		fx = newFixture(t, StepBuyBoxAllocation, nil)
		fields, _ := json.Marshal(map[string]any{
			"selectedBuyBoxes": []BuyBoxSelection{{ID: "bb-1", Name: "UK BTR", Allocation: 100}},
			"totalAllocation":  total,
		})
		edit(t, fx.wizard, "", string(fields))
		_, err = fx.wizard.Continue(ctx)
		assertValidation(t, err, "totalAllocation")
		assert.Nil(t, fx.wizard.Data().BuyBoxAllocation)
	}
}

func TestBuyBoxSuggestedStrategyFollowsInvestorProfile(t *testing.T) {
	fx := newFixture(t, StepBuyBoxAllocation, &AggregateData{
		InvestorProfile: &InvestorProfileAndPreferences{AllocationStrategy: "income"},
	})
	assert.JSONEq(t, `"income"`, string(mustField(t, fx.wizard.View().Draft, "suggestedStrategy")))

	fx = newFixture(t, StepBuyBoxAllocation, nil)
	assert.JSONEq(t, `"balanced"`, string(mustField(t, fx.wizard.View().Draft, "suggestedStrategy")))
}

func TestTerminalStepRequiresTermsAcknowledgement(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, StepSecondaryMarketExit, nil)
	edit(t, fx.wizard, "", `{"finalAcknowledgement":true}`)
	edit(t, fx.wizard, "acknowledgements", `{"exitPolicyAcknowledged":true,"secondaryMarketTermsAcknowledged":false}`)

	_, err := fx.wizard.Continue(ctx)
	assertValidation(t, err, "acknowledgements.secondaryMarketTermsAcknowledged")
	assert.Empty(t, fx.procs.ops(""))
	assert.Empty(t, fx.completed)
	assert.False(t, fx.wizard.Completed())
}

func TestTerminalStepCompletesExactlyOnce(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, StepSecondaryMarketExit, nil)
	edit(t, fx.wizard, "acknowledgements", `{"exitPolicyAcknowledged":true,"secondaryMarketTermsAcknowledged":true}`)
	edit(t, fx.wizard, "", `{"finalAcknowledgement":true}`)

	view, err := fx.wizard.Continue(ctx)
	require.NoError(t, err)
	assert.True(t, view.Completed)
	assert.Equal(t, 100, view.Progress)

	calls := fx.procs.ops("")
	require.Len(t, calls, 2)
	assert.Equal(t, "submit", calls[0].Op)
	assert.Equal(t, string(StepSecondaryMarketExit), calls[0].Step)
	assert.Equal(t, "complete", calls[1].Op)
	require.Len(t, fx.completed, 1)
	assert.True(t, fx.completed[0].Data.SecondaryMarketExit.FinalAcknowledgement)

	_, err = fx.wizard.Continue(ctx)
	require.NoError(t, err)
	assert.Len(t, fx.procs.ops("complete"), 1)
	assert.Len(t, fx.completed, 1)
}

func TestTerminalStepWithoutFinalAcknowledgementOnlySaves(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, StepSecondaryMarketExit, nil)
	edit(t, fx.wizard, "acknowledgements", `{"exitPolicyAcknowledged":true,"secondaryMarketTermsAcknowledged":true}`)

	view, err := fx.wizard.Continue(ctx)
	require.NoError(t, err)
	assert.False(t, view.Completed)
	require.Len(t, view.Notices, 1)
	assert.Equal(t, NoticeInfo, view.Notices[0].Level)
	assert.Len(t, fx.procs.ops("submit"), 1)
	assert.Empty(t, fx.procs.ops("complete"))
	assert.Empty(t, fx.completed)
	assert.NotNil(t, fx.wizard.Data().SecondaryMarketExit)
}

func TestSubmitFailureKeepsMergeAndAllowsRetry(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, StepInitialInquiry, demo())
	edit(t, fx.wizard, "", `{"organisationName":"Renamed Capital"}`)
	fx.procs.submitErr = errors.New("procedure layer unavailable")

	_, err := fx.wizard.Continue(ctx)
	var perr *ProcedureError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "submit", perr.Op)
	assert.Contains(t, perr.Error(), "procedure layer unavailable")
	assert.Equal(t, StepInitialInquiry, fx.wizard.Current().ID)
	assert.Equal(t, "Renamed Capital", fx.wizard.Data().InitialInquiry.OrganisationName)
	assert.False(t, fx.wizard.View().Busy)

	fx.procs.submitErr = nil
	view, err := fx.wizard.Continue(ctx)
	require.NoError(t, err)
	assert.Equal(t, StepQualification, view.CurrentStep.ID)
	assert.Len(t, fx.procs.ops("submit"), 2)
}

func TestProcedureErrorFallsBackToGenericMessage(t *testing.T) {
	err := &ProcedureError{Op: "submit", Step: StepQualification}
	assert.Contains(t, err.Error(), "something went wrong")
}

func TestCompletionFailureKeepsSave(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, StepSecondaryMarketExit, demo())
	fx.procs.completeErr = errors.New("completion rejected")

	_, err := fx.wizard.Continue(ctx)
	var perr *ProcedureError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "complete", perr.Op)
	assert.Len(t, fx.procs.ops("submit"), 1)
	assert.False(t, fx.wizard.Completed())
	assert.Empty(t, fx.completed)

	fx.procs.completeErr = nil
	view, err := fx.wizard.Continue(ctx)
	require.NoError(t, err)
	assert.True(t, view.Completed)
	assert.Len(t, fx.completed, 1)
}

func TestContinueWhileBusyIsRejected(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, StepInitialInquiry, demo())
	fx.procs.submitStarted = make(chan struct{})
	fx.procs.releaseSubmit = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := fx.wizard.Continue(ctx)
		done <- err
	}()
	<-fx.procs.submitStarted

	assert.True(t, fx.wizard.View().Busy)
	_, err := fx.wizard.Continue(ctx)
	assert.ErrorIs(t, err, ErrStepBusy)

	close(fx.procs.releaseSubmit)
	require.NoError(t, <-done)
	assert.Equal(t, StepQualification, fx.wizard.Current().ID)
	assert.Len(t, fx.procs.ops("submit"), 1)
}

func TestNavigatingAwayDuringSaveKeepsPointer(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, StepQualification, demo())
	fx.procs.submitStarted = make(chan struct{})
	fx.procs.releaseSubmit = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := fx.wizard.Continue(ctx)
		done <- err
	}()
	<-fx.procs.submitStarted
	fx.wizard.Back(ctx)
	close(fx.procs.releaseSubmit)
	require.NoError(t, <-done)

	assert.Equal(t, StepInitialInquiry, fx.wizard.Current().ID)
}

func TestHydrationFillsDraftAndAggregate(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, StepInvestorProfile, nil)
	fx.procs.saved[string(StepInvestorProfile)] = json.RawMessage(`{
		"strategy":"opportunistic","riskProfile":"aggressive","riskScore":9,
		"ticketSize":{"min":1000000,"max":5000000},"targetIrr":18,"holdPeriodYears":4,
		"regions":["US"],"allocationStrategy":"growth","esgRequired":false
	}`)

	notices := fx.wizard.Mount(ctx)
	assert.Empty(t, notices)

	profile := fx.wizard.Data().InvestorProfile
	require.NotNil(t, profile)
	assert.Equal(t, "opportunistic", profile.InvestmentStrategy)
	assert.Equal(t, 9, profile.RiskAppetite)
	assert.Equal(t, []string{"US"}, profile.PreferredRegions)
	assert.JSONEq(t, `"opportunistic"`, string(mustField(t, fx.wizard.View().Draft, "investmentStrategy")))
}

func TestHydrationSkippedWhenSliceExists(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, StepInvestorProfile, demo())
	fx.procs.saved[string(StepInvestorProfile)] = json.RawMessage(`{"strategy":"core"}`)

	assert.Empty(t, fx.wizard.Mount(ctx))
	assert.Equal(t, "value_add", fx.wizard.Data().InvestorProfile.InvestmentStrategy)
	assert.Empty(t, fx.procs.ops("get"))
}

func TestHydrationFailureIsANotice(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, StepQualification, nil)
	fx.procs.fetchErr = errors.New("timeout")

	notices := fx.wizard.Mount(ctx)
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeWarning, notices[0].Level)

	edit(t, fx.wizard, "entity", `{"legalName":"Still Editable Ltd"}`)
	assert.Nil(t, fx.wizard.Data().QualificationKYCAML)
}

func TestHydrationRejectsMalformedData(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, StepMonitoringReporting, nil)
	fx.procs.saved[string(StepMonitoringReporting)] = json.RawMessage(`{"frequency":"hourly","formats":["pdf"]}`)

	notices := fx.wizard.Mount(ctx)
	require.Len(t, notices, 1)
	assert.Nil(t, fx.wizard.Data().MonitoringReporting)
	assert.JSONEq(t, `"quarterly"`, string(mustField(t, mustField(t, fx.wizard.View().Draft, "reporting"), "frequency")))
}

func TestLateHydrationDoesNotOverwriteEdits(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, StepInvestorProfile, nil)
	fx.procs.saved[string(StepInvestorProfile)] = json.RawMessage(`{
		"strategy":"opportunistic","riskProfile":"aggressive","riskScore":9,
		"ticketSize":{"min":1,"max":2},"regions":["US"],"allocationStrategy":"growth"
	}`)
	fx.procs.fetchStarted = make(chan struct{})
	fx.procs.releaseFetch = make(chan struct{})

	done := make(chan []Notice, 1)
	go func() { done <- fx.wizard.Mount(ctx) }()
	<-fx.procs.fetchStarted

	edit(t, fx.wizard, "", `{"investmentStrategy":"core"}`)
	close(fx.procs.releaseFetch)
	assert.Empty(t, <-done)

	assert.Nil(t, fx.wizard.Data().InvestorProfile)
	assert.JSONEq(t, `"core"`, string(mustField(t, fx.wizard.View().Draft, "investmentStrategy")))
}

func TestEditDraftScopesToOneSection(t *testing.T) {
	fx := newFixture(t, StepDueDiligence, nil)
	edit(t, fx.wizard, "platformAgreements", `{"termsAccepted":true,"privacyPolicyAccepted":true}`)
	edit(t, fx.wizard, "legalDocuments", `{"ddqCompleted":true}`)
	edit(t, fx.wizard, "legalDocuments", `{"ndaSigned":true}`)

	draft := fx.wizard.View().Draft
	docs := mustField(t, draft, "legalDocuments")
	agreements := mustField(t, draft, "platformAgreements")
	assert.JSONEq(t, `true`, string(mustField(t, docs, "ddqCompleted")))
	assert.JSONEq(t, `true`, string(mustField(t, docs, "ndaSigned")))
	assert.JSONEq(t, `true`, string(mustField(t, agreements, "termsAccepted")))
	assert.JSONEq(t, `false`, string(mustField(t, agreements, "dataProcessingAccepted")))
	assert.NotEqual(t, `null`, string(mustField(t, draft, "reviewDeadline")))
}

func TestEditDraftRejectsUnknownSectionsAndFields(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, StepDueDiligence, nil)

	_, err := fx.wizard.EditDraft(ctx, "catering", json.RawMessage(`{"x":1}`))
	assert.ErrorIs(t, err, ErrUnknownSection)

	_, err = fx.wizard.EditDraft(ctx, "reviewDeadline", json.RawMessage(`{"x":1}`))
	assert.ErrorIs(t, err, ErrUnknownSection)

	_, err = fx.wizard.EditDraft(ctx, "legalDocuments", json.RawMessage(`{"ndaSigend":true}`))
	assert.ErrorIs(t, err, ErrInvalidDraft)

	_, err = fx.wizard.EditDraft(ctx, "legalDocuments", json.RawMessage(`{"ndaSigned":"yes"}`))
	assert.ErrorIs(t, err, ErrInvalidDraft)
}

func TestUnsavedEditsSurviveBackAndForth(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, StepQualification, demo())
	edit(t, fx.wizard, "entity", `{"legalName":"Draft Only Ltd"}`)

	fx.wizard.Back(ctx)
	fx.wizard.GoToNextStep(ctx)
	fx.wizard.Mount(ctx)

	entity := mustField(t, fx.wizard.View().Draft, "entity")
	assert.JSONEq(t, `"Draft Only Ltd"`, string(mustField(t, entity, "legalName")))
	assert.Equal(t, "Northbridge Capital Holdings Ltd", fx.wizard.Data().QualificationKYCAML.Entity.LegalName)
}

func TestSnapshotFailureDoesNotFailContinue(t *testing.T) {
	ctx := context.Background()
	registry, err := NewBuyerRegistry()
	require.NoError(t, err)
	procs := newFakeProcedures()

	w, err := NewWizard(ctx, registry, Options{
		Key:        "k",
		Procedures: procs,
		Store:      failingStore{},
		Initial:    demo(),
		Clock:      testClock,
	})
	require.NoError(t, err)

	view, err := w.Continue(ctx)
	require.NoError(t, err)
	assert.Equal(t, StepQualification, view.CurrentStep.ID)
}

func TestRestoreWizardResumesFromSnapshot(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, "", demo())
	_, err := fx.wizard.Continue(ctx)
	require.NoError(t, err)
	edit(t, fx.wizard, "entity", `{"taxId":"EDITED"}`)

	snap, err := fx.store.Load(ctx, fx.wizard.Key())
	require.NoError(t, err)
	require.NotNil(t, snap)

	registry, err := NewBuyerRegistry()
	require.NoError(t, err)
	restored, err := RestoreWizard(registry, snap, Options{Procedures: fx.procs, Clock: testClock})
	require.NoError(t, err)

	assert.Equal(t, StepQualification, restored.Current().ID)
	assert.Equal(t, fx.wizard.Data(), restored.Data())
	entity := mustField(t, restored.View().Draft, "entity")
	assert.JSONEq(t, `"EDITED"`, string(mustField(t, entity, "taxId")))
}

func TestRestoreWizardRejectsUnknownStep(t *testing.T) {
	registry, err := NewBuyerRegistry()
	require.NoError(t, err)
	_, err = RestoreWizard(registry, &sessions.Snapshot{Key: "k", CurrentStep: "retired-step"}, Options{})
	assert.ErrorIs(t, err, ErrUnknownStep)
}

func assertValidation(t *testing.T, err error, field string) {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, field, verr.Field)
}

func mustField(t *testing.T, raw json.RawMessage, key string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	v, ok := m[key]
	require.True(t, ok, "missing field %s", key)
	return v
}

func sliceJSON(t *testing.T, data AggregateData, step StepID) string {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	keys := map[StepID]string{
		StepInitialInquiry:       "initialInquiry",
		StepQualification:        "qualificationKYCAML",
		StepDueDiligence:         "dueDiligenceLegal",
		StepInvestorProfile:      "investorProfile",
		StepPlatformTraining:     "platformTraining",
		StepBuyBoxAllocation:     "buyBoxAllocation",
		StepTransactionExecution: "transactionExecution",
		StepMonitoringReporting:  "monitoringReporting",
		StepSecondaryMarketExit:  "secondaryMarketExit",
	}
	v, ok := m[keys[step]]
	require.True(t, ok)
	return string(v)
}

func TestContinueRejectsValuesOutsideInputConstraints(t *testing.T) {
	cases := []struct {
		name    string
		step    StepID
		section string
		fields  string
		field   string
	}{
		{"unknown strategy", StepInvestorProfile, "", `{"investmentStrategy":"growth"}`, "investmentStrategy"},
		{"unknown allocation strategy", StepInvestorProfile, "", `{"allocationStrategy":"yield"}`, "allocationStrategy"},
		{"buy box without id", StepBuyBoxAllocation, "", `{"selectedBuyBoxes":[{"id":"","name":"Orphan","allocation":10}]}`, "selectedBuyBoxes"},
		{"four letter currency", StepBuyBoxAllocation, "", `{"currency":"EURO"}`, "currency"},
		{"unknown funding schedule", StepBuyBoxAllocation, "funding", `{"schedule":"monthly"}`, "funding.schedule"},
		{"attendee without address", StepPlatformTraining, "session", `{"attendees":["Bob"]}`, "session.attendees"},
		{"unknown session format", StepPlatformTraining, "session", `{"format":"carrier_pigeon"}`, "session.format"},
		{"unknown contact method", StepPlatformTraining, "", `{"preferredContactMethod":"fax"}`, "preferredContactMethod"},
		{"unknown workflow", StepTransactionExecution, "approval", `{"workflow":"quorum"}`, "approval.workflow"},
		{"long account suffix", StepTransactionExecution, "fundingAccount", `{"accountNumberLast4":"12345"}`, "fundingAccount.accountNumberLast4"},
		{"unknown frequency", StepMonitoringReporting, "reporting", `{"frequency":"hourly"}`, "reporting.frequency"},
		{"negative hold period", StepSecondaryMarketExit, "exitStrategy", `{"preferredHoldYears":-1}`, "exitStrategy.preferredHoldYears"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newFixture(t, tc.step, demo())
			before := fx.wizard.Data()
			edit(t, fx.wizard, tc.section, tc.fields)

			_, err := fx.wizard.Continue(context.Background())
			assertValidation(t, err, tc.field)
			assert.Equal(t, tc.step, fx.wizard.Current().ID)
			assert.Equal(t, before, fx.wizard.Data())
			assert.Empty(t, fx.procs.ops("submit"))
		})
	}
}

func TestSnapshotWriteDoesNotHoldWizardLock(t *testing.T) {
	registry, err := NewBuyerRegistry()
	require.NoError(t, err)
	store := newGatedStore()
	w, err := NewWizard(context.Background(), registry, Options{
		Key:        "buyer-onboarding-slow-db",
		BuyerID:    uuid.New(),
		Procedures: newFakeProcedures(),
		Store:      store,
		Clock:      testClock,
	})
	require.NoError(t, err)

	store.gated.Store(true)
	done := make(chan error, 1)
	go func() {
		_, err := w.EditDraft(context.Background(), "", json.RawMessage(`{"organisationName":"Slow DB Capital"}`))
		done <- err
	}()
	<-store.entered

	reads := make(chan View, 1)
	go func() { reads <- w.View() }()
	select {
	case view := <-reads:
		assert.JSONEq(t, `"Slow DB Capital"`, string(mustField(t, view.Draft, "organisationName")))
	case <-time.After(time.Second):
		t.Fatal("View blocked behind a snapshot write")
	}

	store.gated.Store(false)
	close(store.release)
	require.NoError(t, <-done)

	snap, err := store.Load(context.Background(), "buyer-onboarding-slow-db")
	require.NoError(t, err)
	assert.Contains(t, string(snap.Drafts), "Slow DB Capital")
}
