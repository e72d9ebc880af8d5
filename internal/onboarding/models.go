package onboarding

import "time"

// AggregateData holds one optional record per step. A non-nil field means
// the step passed validation and was continued at least once (or was
// hydrated from previously saved data).
type AggregateData struct {
	InitialInquiry       *InitialInquiry                  `json:"initialInquiry,omitempty"`
	QualificationKYCAML  *QualificationAndKYCAML          `json:"qualificationKYCAML,omitempty"`
	DueDiligenceLegal    *DueDiligenceAndLegal            `json:"dueDiligenceLegal,omitempty"`
	InvestorProfile      *InvestorProfileAndPreferences   `json:"investorProfile,omitempty"`
	PlatformTraining     *PlatformTrainingAndOnboarding   `json:"platformTraining,omitempty"`
	BuyBoxAllocation     *BuyBoxAllocationAndInvestment   `json:"buyBoxAllocation,omitempty"`
	TransactionExecution *TransactionExecution            `json:"transactionExecution,omitempty"`
	MonitoringReporting  *MonitoringReportingAndRelations `json:"monitoringReporting,omitempty"`
	SecondaryMarketExit  *SecondaryMarketAndExit          `json:"secondaryMarketExit,omitempty"`
}

// Merge overlays every non-nil record of partial onto d. Records absent
// from partial are left untouched.
func (d *AggregateData) Merge(partial AggregateData) {
	if partial.InitialInquiry != nil {
		d.InitialInquiry = partial.InitialInquiry
	}
	if partial.QualificationKYCAML != nil {
		d.QualificationKYCAML = partial.QualificationKYCAML
	}
	if partial.DueDiligenceLegal != nil {
		d.DueDiligenceLegal = partial.DueDiligenceLegal
	}
	if partial.InvestorProfile != nil {
		d.InvestorProfile = partial.InvestorProfile
	}
	if partial.PlatformTraining != nil {
		d.PlatformTraining = partial.PlatformTraining
	}
	if partial.BuyBoxAllocation != nil {
		d.BuyBoxAllocation = partial.BuyBoxAllocation
	}
	if partial.TransactionExecution != nil {
		d.TransactionExecution = partial.TransactionExecution
	}
	if partial.MonitoringReporting != nil {
		d.MonitoringReporting = partial.MonitoringReporting
	}
	if partial.SecondaryMarketExit != nil {
		d.SecondaryMarketExit = partial.SecondaryMarketExit
	}
}

// =====================================================
// Initial Inquiry
// =====================================================

type InitialInquiry struct {
	OrganisationName    string   `json:"organisationName"`
	OrganisationType    string   `json:"organisationType"`
	Contact             Contact  `json:"contact"`
	Jurisdiction        string   `json:"jurisdiction"`
	EstimatedAUM        float64  `json:"estimatedAum"`
	InvestmentInterests []string `json:"investmentInterests"`
	ReferralSource      string   `json:"referralSource"`
	Message             string   `json:"message"`
}

type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Title string `json:"title"`
}

// =====================================================
// Qualification & KYC/AML
// =====================================================

type QualificationAndKYCAML struct {
	Entity           EntityDetails     `json:"entity"`
	Accreditation    Accreditation     `json:"accreditation"`
	BeneficialOwners []BeneficialOwner `json:"beneficialOwners"`
	Compliance       ComplianceChecks  `json:"compliance"`
	Documents        KYCDocuments      `json:"documents"`
}

type EntityDetails struct {
	LegalName              string `json:"legalName"`
	RegistrationNumber     string `json:"registrationNumber"`
	CountryOfIncorporation string `json:"countryOfIncorporation"`
	TaxID                  string `json:"taxId"`
}

type Accreditation struct {
	AccreditedInvestor bool `json:"accreditedInvestor"`
	QualifiedPurchaser bool `json:"qualifiedPurchaser"`
	ProfessionalClient bool `json:"professionalClient"`
}

type BeneficialOwner struct {
	Name             string  `json:"name"`
	OwnershipPercent float64 `json:"ownershipPercent"`
	Nationality      string  `json:"nationality"`
}

type ComplianceChecks struct {
	SourceOfFunds             string `json:"sourceOfFunds"`
	PEPDeclaration            bool   `json:"pepDeclaration"`
	SanctionsScreeningConsent bool   `json:"sanctionsScreeningConsent"`
}

type KYCDocuments struct {
	CertificateOfIncorporation bool `json:"certificateOfIncorporation"`
	ProofOfAddress             bool `json:"proofOfAddress"`
	FinancialStatements        bool `json:"financialStatements"`
	BoardResolution            bool `json:"boardResolution"`
}

// =====================================================
// Due Diligence & Legal
// =====================================================

type DueDiligenceAndLegal struct {
	LegalDocuments     LegalDocuments     `json:"legalDocuments"`
	PlatformAgreements PlatformAgreements `json:"platformAgreements"`
	LegalCounsel       LegalCounsel       `json:"legalCounsel"`
	ReviewDeadline     time.Time          `json:"reviewDeadline"`
}

type LegalDocuments struct {
	DDQCompleted                  bool `json:"ddqCompleted"`
	NDASigned                     bool `json:"ndaSigned"`
	SubscriptionAgreementReviewed bool `json:"subscriptionAgreementReviewed"`
	SideLetterRequested           bool `json:"sideLetterRequested"`
}

type PlatformAgreements struct {
	TermsAccepted          bool `json:"termsAccepted"`
	PrivacyPolicyAccepted  bool `json:"privacyPolicyAccepted"`
	DataProcessingAccepted bool `json:"dataProcessingAccepted"`
	ElectronicCommsConsent bool `json:"electronicCommsConsent"`
}

type LegalCounsel struct {
	FirmName     string `json:"firmName"`
	ContactName  string `json:"contactName"`
	ContactEmail string `json:"contactEmail"`
}

// =====================================================
// Investor Profile & Preferences
// =====================================================

type InvestorProfileAndPreferences struct {
	InvestmentStrategy    string   `json:"investmentStrategy"`
	RiskAppetite          int      `json:"riskAppetite"`
	MinimumInvestmentSize float64  `json:"minimumInvestmentSize"`
	MaximumInvestmentSize float64  `json:"maximumInvestmentSize"`
	TargetIRR             float64  `json:"targetIrr"`
	HoldPeriodYears       int      `json:"holdPeriodYears"`
	PreferredRegions      []string `json:"preferredRegions"`
	PropertyTypes         []string `json:"propertyTypes"`
	AllocationStrategy    string   `json:"allocationStrategy"`
	ESG                   ESG      `json:"esg"`
}

type ESG struct {
	Required      bool   `json:"required"`
	MinimumRating string `json:"minimumRating"`
}

// =====================================================
// Platform Training & Onboarding
// =====================================================

type PlatformTrainingAndOnboarding struct {
	Modules                TrainingModules `json:"modules"`
	Session                TrainingSession `json:"session"`
	PreferredContactMethod string          `json:"preferredContactMethod"`
}

type TrainingModules struct {
	PlatformOverview    bool `json:"platformOverview"`
	BuyBoxConfiguration bool `json:"buyBoxConfiguration"`
	DealRoomNavigation  bool `json:"dealRoomNavigation"`
	ReportingDashboard  bool `json:"reportingDashboard"`
	ComplianceTraining  bool `json:"complianceTraining"`
}

type TrainingSession struct {
	ScheduledDate time.Time `json:"scheduledDate"`
	Format        string    `json:"format"`
	Attendees     []string  `json:"attendees"`
}

// =====================================================
// Buy Box Allocation & Investment
// =====================================================

type BuyBoxAllocationAndInvestment struct {
	SelectedBuyBoxes  []BuyBoxSelection `json:"selectedBuyBoxes"`
	TotalAllocation   float64           `json:"totalAllocation"`
	Currency          string            `json:"currency"`
	Funding           FundingPlan       `json:"funding"`
	SuggestedStrategy string            `json:"suggestedStrategy"`
}

type BuyBoxSelection struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Allocation float64 `json:"allocation"`
}

type FundingPlan struct {
	Schedule          string    `json:"schedule"`
	Phases            int       `json:"phases"`
	FirstDrawdownDate time.Time `json:"firstDrawdownDate"`
}

// =====================================================
// Transaction Execution
// =====================================================

type TransactionExecution struct {
	Approval            ApprovalSettings `json:"approval"`
	FundingAccount      FundingAccount   `json:"fundingAccount"`
	ClosingTimelineDays int              `json:"closingTimelineDays"`
	EscrowRequired      bool             `json:"escrowRequired"`
}

type ApprovalSettings struct {
	Workflow       string `json:"workflow"`
	SignatoryName  string `json:"signatoryName"`
	SignatoryEmail string `json:"signatoryEmail"`
	SignatoryPhone string `json:"signatoryPhone"`
}

type FundingAccount struct {
	BankName           string `json:"bankName"`
	AccountHolder      string `json:"accountHolder"`
	AccountNumberLast4 string `json:"accountNumberLast4"`
	SWIFT              string `json:"swift"`
}

// =====================================================
// Monitoring, Reporting & Relations
// =====================================================

type MonitoringReportingAndRelations struct {
	Reporting     ReportingPreferences `json:"reporting"`
	KPIs          []string             `json:"kpis"`
	Relationship  RelationshipPrefs    `json:"relationship"`
	Notifications NotificationChannels `json:"notifications"`
}

type ReportingPreferences struct {
	Frequency string `json:"frequency"`
	PDF       bool   `json:"pdf"`
	Excel     bool   `json:"excel"`
	Dashboard bool   `json:"dashboard"`
}

type RelationshipPrefs struct {
	ManagerPreference string `json:"managerPreference"`
	MeetingCadence    string `json:"meetingCadence"`
}

type NotificationChannels struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
	InApp bool `json:"inApp"`
}

// =====================================================
// Secondary Market & Exit
// =====================================================

type SecondaryMarketAndExit struct {
	ExitStrategy         ExitStrategy     `json:"exitStrategy"`
	SecondaryMarket      SecondaryMarket  `json:"secondaryMarket"`
	Acknowledgements     Acknowledgements `json:"acknowledgements"`
	FinalAcknowledgement bool             `json:"finalAcknowledgement"`
}

type ExitStrategy struct {
	PreferredHoldYears int      `json:"preferredHoldYears"`
	ExitRoutes         []string `json:"exitRoutes"`
}

type SecondaryMarket struct {
	ParticipationInterest bool   `json:"participationInterest"`
	LiquidityWindow       string `json:"liquidityWindow"`
}

type Acknowledgements struct {
	SecondaryMarketTermsAcknowledged bool `json:"secondaryMarketTermsAcknowledged"`
	ExitPolicyAcknowledged           bool `json:"exitPolicyAcknowledged"`
}
