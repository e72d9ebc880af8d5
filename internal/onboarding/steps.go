package onboarding

import "buyer-portal/buyer-portal-backend/internal/procedures"

// StepID identifies one screen of the onboarding flow
type StepID string

const (
	StepInitialInquiry       StepID = procedures.StepInitialInquiry
	StepQualification        StepID = procedures.StepQualification
	StepDueDiligence         StepID = procedures.StepDueDiligence
	StepInvestorProfile      StepID = procedures.StepInvestorProfile
	StepPlatformTraining     StepID = procedures.StepPlatformTraining
	StepBuyBoxAllocation     StepID = procedures.StepBuyBoxAllocation
	StepTransactionExecution StepID = procedures.StepTransactionExecution
	StepMonitoringReporting  StepID = procedures.StepMonitoringReporting
	StepSecondaryMarketExit  StepID = procedures.StepSecondaryMarketExit
)

// WizardStep is one entry of the step schema. Label is display only.
type WizardStep struct {
	ID    StepID `json:"id"`
	Label string `json:"label"`
}

var buyerSteps = []WizardStep{
	{ID: StepInitialInquiry, Label: "Initial Inquiry"},
	{ID: StepQualification, Label: "Qualification & KYC/AML"},
	{ID: StepDueDiligence, Label: "Due Diligence & Legal"},
	{ID: StepInvestorProfile, Label: "Investor Profile & Preferences"},
	{ID: StepPlatformTraining, Label: "Platform Training & Onboarding"},
	{ID: StepBuyBoxAllocation, Label: "Buy Box Allocation & Investment"},
	{ID: StepTransactionExecution, Label: "Transaction Execution"},
	{ID: StepMonitoringReporting, Label: "Monitoring, Reporting & Relations"},
	{ID: StepSecondaryMarketExit, Label: "Secondary Market & Exit"},
}

// BuyerSteps returns the buyer onboarding schema in navigation order
func BuyerSteps() []WizardStep {
	out := make([]WizardStep, len(buyerSteps))
	copy(out, buyerSteps)
	return out
}
