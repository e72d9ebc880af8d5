package onboarding

import (
	"time"

	"buyer-portal/buyer-portal-backend/internal/procedures"
)

// =====================================================
// Transaction Execution
// =====================================================

func transactionExecutionForm() StepForm {
	return &Form[TransactionExecution, procedures.TransactionExecutionInput]{
		step:  StepTransactionExecution,
		guide: "Set who approves and signs transactions, and where funds are wired from. Only the last four digits of the account are stored.",
		defaults: func(*AggregateData, time.Time) TransactionExecution {
			return TransactionExecution{
				Approval:            ApprovalSettings{Workflow: "dual"},
				ClosingTimelineDays: 30,
				EscrowRequired:      true,
			}
		},
		slot: func(agg *AggregateData) **TransactionExecution { return &agg.TransactionExecution },
		rules: []Rule[TransactionExecution]{
			{Field: "approval.signatoryName", Message: "signatory name is required",
				Check: func(v *TransactionExecution, _ time.Time) bool { return !blank(v.Approval.SignatoryName) }},
			{Field: "approval.signatoryEmail", Message: "a valid signatory email is required",
				Check: func(v *TransactionExecution, _ time.Time) bool { return wellFormedEmail(v.Approval.SignatoryEmail) }},
			{Field: "fundingAccount.bankName", Message: "bank name is required",
				Check: func(v *TransactionExecution, _ time.Time) bool { return !blank(v.FundingAccount.BankName) }},
			{Field: "fundingAccount.accountHolder", Message: "account holder is required",
				Check: func(v *TransactionExecution, _ time.Time) bool { return !blank(v.FundingAccount.AccountHolder) }},
			{Field: "approval.workflow", Message: "approval workflow is required",
				Check: func(v *TransactionExecution, _ time.Time) bool { return !blank(v.Approval.Workflow) }},
			{Field: "approval.workflow", Message: "approval workflow must be single, dual or committee",
				Check: func(v *TransactionExecution, _ time.Time) bool {
					return oneOf(v.Approval.Workflow, "single", "dual", "committee")
				}},
			{Field: "fundingAccount.accountNumberLast4", Message: "enter only the last four digits of the account number",
				Check: func(v *TransactionExecution, _ time.Time) bool {
					last4 := v.FundingAccount.AccountNumberLast4
					return last4 == "" || fieldCheck.Var(last4, "len=4,numeric") == nil
				}},
		},
		toRemote: func(v TransactionExecution) procedures.TransactionExecutionInput {
			days := v.ClosingTimelineDays
			if days <= 0 {
				days = 30
			}
			return procedures.TransactionExecutionInput{
				ApprovalWorkflow: v.Approval.Workflow,
				Signatory: procedures.SignatoryInput{
					FullName: v.Approval.SignatoryName,
					Email:    v.Approval.SignatoryEmail,
					Phone:    v.Approval.SignatoryPhone,
				},
				Bank: procedures.BankInput{
					Name:          v.FundingAccount.BankName,
					AccountHolder: v.FundingAccount.AccountHolder,
					AccountLast4:  v.FundingAccount.AccountNumberLast4,
					SWIFT:         v.FundingAccount.SWIFT,
				},
				ClosingDays: days,
				Escrow:      v.EscrowRequired,
			}
		},
		fromRemote: func(p procedures.TransactionExecutionInput) TransactionExecution {
			return TransactionExecution{
				Approval: ApprovalSettings{
					Workflow:       p.ApprovalWorkflow,
					SignatoryName:  p.Signatory.FullName,
					SignatoryEmail: p.Signatory.Email,
					SignatoryPhone: p.Signatory.Phone,
				},
				FundingAccount: FundingAccount{
					BankName:           p.Bank.Name,
					AccountHolder:      p.Bank.AccountHolder,
					AccountNumberLast4: p.Bank.AccountLast4,
					SWIFT:              p.Bank.SWIFT,
				},
				ClosingTimelineDays: p.ClosingDays,
				EscrowRequired:      p.Escrow,
			}
		},
	}
}

// =====================================================
// Monitoring, Reporting & Relations
// =====================================================

func monitoringReportingForm() StepForm {
	return &Form[MonitoringReportingAndRelations, procedures.MonitoringReportingInput]{
		step:  StepMonitoringReporting,
		guide: "Pick how often you want portfolio reports and how we should reach you.",
		defaults: func(*AggregateData, time.Time) MonitoringReportingAndRelations {
			return MonitoringReportingAndRelations{
				Reporting:     ReportingPreferences{Frequency: "quarterly", PDF: true},
				KPIs:          []string{},
				Relationship:  RelationshipPrefs{ManagerPreference: "dedicated", MeetingCadence: "quarterly"},
				Notifications: NotificationChannels{Email: true},
			}
		},
		slot: func(agg *AggregateData) **MonitoringReportingAndRelations { return &agg.MonitoringReporting },
		rules: []Rule[MonitoringReportingAndRelations]{
			{Field: "reporting.frequency", Message: "reporting frequency is required",
				Check: func(v *MonitoringReportingAndRelations, _ time.Time) bool { return !blank(v.Reporting.Frequency) }},
			{Field: "reporting.frequency", Message: "reporting frequency must be monthly, quarterly or annual",
				Check: func(v *MonitoringReportingAndRelations, _ time.Time) bool {
					return oneOf(v.Reporting.Frequency, "monthly", "quarterly", "annual")
				}},
			{Field: "reporting", Message: "select at least one report format",
				Check: func(v *MonitoringReportingAndRelations, _ time.Time) bool {
					r := v.Reporting
					return r.PDF || r.Excel || r.Dashboard
				}},
		},
		toRemote: func(v MonitoringReportingAndRelations) procedures.MonitoringReportingInput {
			var formats, channels []string
			if v.Reporting.PDF {
				formats = append(formats, "pdf")
			}
			if v.Reporting.Excel {
				formats = append(formats, "excel")
			}
			if v.Reporting.Dashboard {
				formats = append(formats, "dashboard")
			}
			if v.Notifications.Email {
				channels = append(channels, "email")
			}
			if v.Notifications.SMS {
				channels = append(channels, "sms")
			}
			if v.Notifications.InApp {
				channels = append(channels, "in_app")
			}
			return procedures.MonitoringReportingInput{
				Frequency:         orDefault(v.Reporting.Frequency, "quarterly"),
				Formats:           formats,
				KPIs:              v.KPIs,
				ManagerPreference: v.Relationship.ManagerPreference,
				MeetingCadence:    v.Relationship.MeetingCadence,
				Channels:          channels,
			}
		},
		fromRemote: func(p procedures.MonitoringReportingInput) MonitoringReportingAndRelations {
			v := MonitoringReportingAndRelations{
				Reporting: ReportingPreferences{Frequency: p.Frequency},
				KPIs:      nonNil(p.KPIs),
				Relationship: RelationshipPrefs{
					ManagerPreference: p.ManagerPreference,
					MeetingCadence:    p.MeetingCadence,
				},
			}
			for _, f := range p.Formats {
				switch f {
				case "pdf":
					v.Reporting.PDF = true
				case "excel":
					v.Reporting.Excel = true
				case "dashboard":
					v.Reporting.Dashboard = true
				}
			}
			for _, c := range p.Channels {
				switch c {
				case "email":
					v.Notifications.Email = true
				case "sms":
					v.Notifications.SMS = true
				case "in_app":
					v.Notifications.InApp = true
				}
			}
			return v
		},
	}
}

// =====================================================
// Secondary Market & Exit
// =====================================================

func secondaryMarketExitForm() StepForm {
	return &Form[SecondaryMarketAndExit, procedures.SecondaryMarketInput]{
		step:  StepSecondaryMarketExit,
		guide: "Confirm how you expect to exit positions. Completing this step finalises your onboarding.",
		defaults: func(*AggregateData, time.Time) SecondaryMarketAndExit {
			return SecondaryMarketAndExit{
				ExitStrategy: ExitStrategy{PreferredHoldYears: 5, ExitRoutes: []string{}},
			}
		},
		slot: func(agg *AggregateData) **SecondaryMarketAndExit { return &agg.SecondaryMarketExit },
		rules: []Rule[SecondaryMarketAndExit]{
			{Field: "acknowledgements.secondaryMarketTermsAcknowledged", Message: "the secondary market terms must be acknowledged",
				Check: func(v *SecondaryMarketAndExit, _ time.Time) bool {
					return v.Acknowledgements.SecondaryMarketTermsAcknowledged
				}},
			{Field: "acknowledgements.exitPolicyAcknowledged", Message: "the exit policy must be acknowledged",
				Check: func(v *SecondaryMarketAndExit, _ time.Time) bool { return v.Acknowledgements.ExitPolicyAcknowledged }},
			{Field: "exitStrategy.preferredHoldYears", Message: "preferred hold period cannot be negative",
				Check: func(v *SecondaryMarketAndExit, _ time.Time) bool { return v.ExitStrategy.PreferredHoldYears >= 0 }},
		},
		toRemote: func(v SecondaryMarketAndExit) procedures.SecondaryMarketInput {
			return procedures.SecondaryMarketInput{
				PreferredHoldYears:     v.ExitStrategy.PreferredHoldYears,
				ExitRoutes:             v.ExitStrategy.ExitRoutes,
				SecondaryParticipation: v.SecondaryMarket.ParticipationInterest,
				LiquidityWindow:        v.SecondaryMarket.LiquidityWindow,
				TermsAcknowledged:      v.Acknowledgements.SecondaryMarketTermsAcknowledged,
				ExitPolicyAcknowledged: v.Acknowledgements.ExitPolicyAcknowledged,
			}
		},
		fromRemote: func(p procedures.SecondaryMarketInput) SecondaryMarketAndExit {
			return SecondaryMarketAndExit{
				ExitStrategy: ExitStrategy{
					PreferredHoldYears: p.PreferredHoldYears,
					ExitRoutes:         nonNil(p.ExitRoutes),
				},
				SecondaryMarket: SecondaryMarket{
					ParticipationInterest: p.SecondaryParticipation,
					LiquidityWindow:       p.LiquidityWindow,
				},
				Acknowledgements: Acknowledgements{
					SecondaryMarketTermsAcknowledged: p.TermsAcknowledged,
					ExitPolicyAcknowledged:           p.ExitPolicyAcknowledged,
				},
			}
		},
		complete: func(v *SecondaryMarketAndExit) bool { return v.FinalAcknowledgement },
	}
}

// BuyerForms returns one form per buyer onboarding step
func BuyerForms() []StepForm {
	return []StepForm{
		initialInquiryForm(),
		qualificationForm(),
		dueDiligenceForm(),
		investorProfileForm(),
		platformTrainingForm(),
		buyBoxAllocationForm(),
		transactionExecutionForm(),
		monitoringReportingForm(),
		secondaryMarketExitForm(),
	}
}
