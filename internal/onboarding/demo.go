package onboarding

import "time"

// DemoData returns a fully populated aggregate used to autofill the wizard
// for walkthroughs. Dates are relative to now.
func DemoData(now time.Time) AggregateData {
	return AggregateData{
		InitialInquiry: &InitialInquiry{
			OrganisationName: "Northbridge Family Office",
			OrganisationType: "family_office",
			Contact: Contact{
				Name:  "Eleanor Vance",
				Email: "eleanor.vance@northbridge.example",
				Phone: "+44 20 7946 0018",
				Title: "Chief Investment Officer",
			},
			Jurisdiction:        "GB",
			EstimatedAUM:        850_000_000,
			InvestmentInterests: []string{"multifamily", "logistics"},
			ReferralSource:      "conference",
			Message:             "Looking to deploy into UK and EU residential over the next 24 months.",
		},
		QualificationKYCAML: &QualificationAndKYCAML{
			Entity: EntityDetails{
				LegalName:              "Northbridge Capital Holdings Ltd",
				RegistrationNumber:     "09876543",
				CountryOfIncorporation: "GB",
				TaxID:                  "GB123456789",
			},
			Accreditation: Accreditation{AccreditedInvestor: true, ProfessionalClient: true},
			BeneficialOwners: []BeneficialOwner{
				{Name: "Eleanor Vance", OwnershipPercent: 60, Nationality: "GB"},
				{Name: "Marcus Vance", OwnershipPercent: 40, Nationality: "GB"},
			},
			Compliance: ComplianceChecks{
				SourceOfFunds:             "Proceeds from sale of operating business",
				SanctionsScreeningConsent: true,
			},
			Documents: KYCDocuments{
				CertificateOfIncorporation: true,
				ProofOfAddress:             true,
				FinancialStatements:        true,
				BoardResolution:            true,
			},
		},
		DueDiligenceLegal: &DueDiligenceAndLegal{
			LegalDocuments: LegalDocuments{
				DDQCompleted:                  true,
				NDASigned:                     true,
				SubscriptionAgreementReviewed: true,
			},
			PlatformAgreements: PlatformAgreements{
				TermsAccepted:          true,
				PrivacyPolicyAccepted:  true,
				DataProcessingAccepted: true,
				ElectronicCommsConsent: true,
			},
			LegalCounsel: LegalCounsel{
				FirmName:     "Harcourt & Lane LLP",
				ContactName:  "James Harcourt",
				ContactEmail: "j.harcourt@harcourtlane.example",
			},
			ReviewDeadline: day(now, 14),
		},
		InvestorProfile: &InvestorProfileAndPreferences{
			InvestmentStrategy:    "value_add",
			RiskAppetite:          6,
			MinimumInvestmentSize: 5_000_000,
			MaximumInvestmentSize: 25_000_000,
			TargetIRR:             14,
			HoldPeriodYears:       7,
			PreferredRegions:      []string{"UK", "Western Europe"},
			PropertyTypes:         []string{"multifamily", "logistics"},
			AllocationStrategy:    "growth",
			ESG:                   ESG{Required: true, MinimumRating: "B"},
		},
		PlatformTraining: &PlatformTrainingAndOnboarding{
			Modules: TrainingModules{
				PlatformOverview:    true,
				BuyBoxConfiguration: true,
				DealRoomNavigation:  true,
			},
			Session: TrainingSession{
				ScheduledDate: day(now, 7),
				Format:        "virtual",
				Attendees:     []string{"eleanor.vance@northbridge.example"},
			},
			PreferredContactMethod: "video",
		},
		BuyBoxAllocation: &BuyBoxAllocationAndInvestment{
			SelectedBuyBoxes: []BuyBoxSelection{
				{ID: "bb-uk-multifamily", Name: "UK Build-to-Rent", Allocation: 30_000_000},
				{ID: "bb-eu-logistics", Name: "EU Last-Mile Logistics", Allocation: 20_000_000},
			},
			TotalAllocation:   50_000_000,
			Currency:          "GBP",
			Funding:           FundingPlan{Schedule: "phased", Phases: 3, FirstDrawdownDate: day(now, 30)},
			SuggestedStrategy: "growth",
		},
		TransactionExecution: &TransactionExecution{
			Approval: ApprovalSettings{
				Workflow:       "dual",
				SignatoryName:  "Eleanor Vance",
				SignatoryEmail: "eleanor.vance@northbridge.example",
			},
			FundingAccount: FundingAccount{
				BankName:           "Barclays",
				AccountHolder:      "Northbridge Capital Holdings Ltd",
				AccountNumberLast4: "4821",
				SWIFT:              "BARCGB22",
			},
			ClosingTimelineDays: 45,
			EscrowRequired:      true,
		},
		MonitoringReporting: &MonitoringReportingAndRelations{
			Reporting:     ReportingPreferences{Frequency: "quarterly", PDF: true, Dashboard: true},
			KPIs:          []string{"occupancy", "noi", "irr"},
			Relationship:  RelationshipPrefs{ManagerPreference: "dedicated", MeetingCadence: "quarterly"},
			Notifications: NotificationChannels{Email: true, InApp: true},
		},
		SecondaryMarketExit: &SecondaryMarketAndExit{
			ExitStrategy:    ExitStrategy{PreferredHoldYears: 7, ExitRoutes: []string{"secondary_sale", "refinance"}},
			SecondaryMarket: SecondaryMarket{ParticipationInterest: true, LiquidityWindow: "annual"},
			Acknowledgements: Acknowledgements{
				SecondaryMarketTermsAcknowledged: true,
				ExitPolicyAcknowledged:           true,
			},
			FinalAcknowledgement: true,
		},
	}
}
