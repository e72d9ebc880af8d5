package procedures

import "time"

// Step names accepted by the procedure layer. They double as the wizard's
// step ids.
const (
	StepInitialInquiry       = "initial-inquiry"
	StepQualification        = "qualification"
	StepDueDiligence         = "due-diligence"
	StepInvestorProfile      = "investor-profile"
	StepPlatformTraining     = "platform-training"
	StepBuyBoxAllocation     = "buy-box-allocation"
	StepTransactionExecution = "transaction-execution"
	StepMonitoringReporting  = "monitoring-reporting"
	StepSecondaryMarketExit  = "secondary-market-exit"
)

// Steps lists every step the procedure layer accepts, in onboarding order
var Steps = []string{
	StepInitialInquiry,
	StepQualification,
	StepDueDiligence,
	StepInvestorProfile,
	StepPlatformTraining,
	StepBuyBoxAllocation,
	StepTransactionExecution,
	StepMonitoringReporting,
	StepSecondaryMarketExit,
}

// =====================================================
// Submit inputs, one per step
// =====================================================

// InitialInquiryInput is the payload of submitInitialInquiry
type InitialInquiryInput struct {
	OrganizationName string       `json:"organizationName" validate:"required"`
	InvestorCategory string       `json:"investorCategory" validate:"required,oneof=family_office institutional endowment sovereign manager other"`
	PrimaryContact   ContactInput `json:"primaryContact"`
	Jurisdiction     string       `json:"jurisdiction,omitempty"`
	EstimatedAUM     float64      `json:"estimatedAum" validate:"gte=0"`
	Interests        []string     `json:"interests,omitempty"`
	Source           string       `json:"source,omitempty"`
	Notes            string       `json:"notes,omitempty"`
}

// ContactInput identifies a person at the buyer organisation
type ContactInput struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Title    string `json:"title,omitempty"`
}

// QualificationInput is the payload of submitQualificationAndKYCAML
type QualificationInput struct {
	LegalEntityName      string       `json:"legalEntityName" validate:"required"`
	RegistrationNumber   string       `json:"registrationNumber" validate:"required"`
	Country              string       `json:"country" validate:"required"`
	TaxID                string       `json:"taxId,omitempty"`
	InvestorStatus       string       `json:"investorStatus" validate:"required,oneof=qualified_purchaser accredited professional retail"`
	BeneficialOwners     []OwnerInput `json:"beneficialOwners" validate:"required,min=1,dive"`
	SourceOfFunds        string       `json:"sourceOfFunds,omitempty"`
	PoliticallyExposed   bool         `json:"politicallyExposed"`
	SanctionsConsent     bool         `json:"sanctionsConsent" validate:"eq=true"`
	ProvidedDocuments    []string     `json:"providedDocuments,omitempty" validate:"dive,oneof=certificate_of_incorporation proof_of_address financial_statements board_resolution"`
	KYCDocumentsComplete bool         `json:"kycDocumentsComplete"`
}

// OwnerInput is a beneficial owner declaration
type OwnerInput struct {
	Name             string  `json:"name" validate:"required"`
	OwnershipPercent float64 `json:"ownershipPercent" validate:"gte=0,lte=100"`
	Nationality      string  `json:"nationality,omitempty"`
}

// DueDiligenceInput is the payload of submitDueDiligenceAndLegal
type DueDiligenceInput struct {
	LegalDocumentsComplete bool          `json:"legalDocumentsComplete"`
	NDASigned              bool          `json:"ndaSigned" validate:"eq=true"`
	DDQCompleted           bool          `json:"ddqCompleted" validate:"eq=true"`
	SideLetterRequested    bool          `json:"sideLetterRequested"`
	AgreementsAccepted     bool          `json:"agreementsAccepted" validate:"eq=true"`
	MarketingConsent       bool          `json:"marketingConsent"`
	Counsel                *CounselInput `json:"counsel,omitempty"`
	ReviewDeadline         time.Time     `json:"reviewDeadline" validate:"required"`
}

// CounselInput names the buyer's external legal counsel
type CounselInput struct {
	FirmName    string `json:"firmName" validate:"required"`
	ContactName string `json:"contactName,omitempty"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
}

// InvestorProfileInput is the payload of submitInvestorProfileAndPreferences
type InvestorProfileInput struct {
	Strategy           string          `json:"strategy" validate:"required,oneof=core core_plus value_add opportunistic"`
	RiskProfile        string          `json:"riskProfile" validate:"required,oneof=conservative moderate aggressive"`
	RiskScore          int             `json:"riskScore" validate:"min=1,max=10"`
	TicketSize         TicketSizeInput `json:"ticketSize"`
	TargetIRR          float64         `json:"targetIrr" validate:"gte=0"`
	HoldPeriodYears    int             `json:"holdPeriodYears" validate:"gte=0"`
	Regions            []string        `json:"regions" validate:"required,min=1"`
	PropertyTypes      []string        `json:"propertyTypes,omitempty"`
	AllocationStrategy string          `json:"allocationStrategy" validate:"required,oneof=balanced growth income"`
	ESGRequired        bool            `json:"esgRequired"`
	ESGMinimumRating   string          `json:"esgMinimumRating,omitempty"`
}

// TicketSizeInput bounds a single investment
type TicketSizeInput struct {
	Min float64 `json:"min" validate:"gt=0"`
	Max float64 `json:"max" validate:"gtfield=Min"`
}

// PlatformTrainingInput is the payload of submitPlatformTrainingAndOnboarding
type PlatformTrainingInput struct {
	TrainingComplete bool      `json:"trainingComplete"`
	CompletedModules []string  `json:"completedModules" validate:"required,min=1"`
	SessionDate      time.Time `json:"sessionDate" validate:"required"`
	SessionFormat    string    `json:"sessionFormat" validate:"required,oneof=virtual in_person"`
	Attendees        []string  `json:"attendees,omitempty" validate:"dive,email"`
	ContactMethod    string    `json:"contactMethod" validate:"required,oneof=email phone video"`
}

// BuyBoxAllocationInput is the payload of submitBuyBoxAllocationAndInvestment
type BuyBoxAllocationInput struct {
	BuyBoxes        []BuyBoxInput `json:"buyBoxes" validate:"required,min=1,dive"`
	TotalCommitment float64       `json:"totalCommitment" validate:"gt=0"`
	Currency        string        `json:"currency" validate:"required,len=3"`
	FundingSchedule string        `json:"fundingSchedule" validate:"required,oneof=immediate phased"`
	Tranches        int           `json:"tranches" validate:"min=1"`
	FirstDrawdown   time.Time     `json:"firstDrawdown" validate:"required"`
	Strategy        string        `json:"strategy,omitempty"`
}

// BuyBoxInput is one buy box commitment
type BuyBoxInput struct {
	BuyBoxID string  `json:"buyBoxId" validate:"required"`
	Name     string  `json:"name,omitempty"`
	Amount   float64 `json:"amount" validate:"gte=0"`
}

// TransactionExecutionInput is the payload of submitTransactionExecution
type TransactionExecutionInput struct {
	ApprovalWorkflow string         `json:"approvalWorkflow" validate:"required,oneof=single dual committee"`
	Signatory        SignatoryInput `json:"signatory"`
	Bank             BankInput      `json:"bank"`
	ClosingDays      int            `json:"closingDays" validate:"min=1"`
	Escrow           bool           `json:"escrow"`
}

// SignatoryInput is the person authorised to sign closing documents
type SignatoryInput struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone,omitempty"`
}

// BankInput is the funding account, masked
type BankInput struct {
	Name          string `json:"name" validate:"required"`
	AccountHolder string `json:"accountHolder" validate:"required"`
	AccountLast4  string `json:"accountLast4,omitempty" validate:"omitempty,len=4,numeric"`
	SWIFT         string `json:"swift,omitempty"`
}

// MonitoringReportingInput is the payload of submitMonitoringReportingAndRelations
type MonitoringReportingInput struct {
	Frequency         string   `json:"frequency" validate:"required,oneof=monthly quarterly annual"`
	Formats           []string `json:"formats" validate:"required,min=1,dive,oneof=pdf excel dashboard"`
	KPIs              []string `json:"kpis,omitempty"`
	ManagerPreference string   `json:"managerPreference,omitempty"`
	MeetingCadence    string   `json:"meetingCadence,omitempty"`
	Channels          []string `json:"channels,omitempty" validate:"dive,oneof=email sms in_app"`
}

// SecondaryMarketInput is the payload of submitSecondaryMarketAndExit
type SecondaryMarketInput struct {
	PreferredHoldYears     int      `json:"preferredHoldYears" validate:"gte=0"`
	ExitRoutes             []string `json:"exitRoutes,omitempty"`
	SecondaryParticipation bool     `json:"secondaryParticipation"`
	LiquidityWindow        string   `json:"liquidityWindow,omitempty"`
	TermsAcknowledged      bool     `json:"termsAcknowledged" validate:"eq=true"`
	ExitPolicyAcknowledged bool     `json:"exitPolicyAcknowledged" validate:"eq=true"`
}

// newInput returns a pointer to the zero input for a step
func newInput(step string) (any, bool) {
	switch step {
	case StepInitialInquiry:
		return &InitialInquiryInput{}, true
	case StepQualification:
		return &QualificationInput{}, true
	case StepDueDiligence:
		return &DueDiligenceInput{}, true
	case StepInvestorProfile:
		return &InvestorProfileInput{}, true
	case StepPlatformTraining:
		return &PlatformTrainingInput{}, true
	case StepBuyBoxAllocation:
		return &BuyBoxAllocationInput{}, true
	case StepTransactionExecution:
		return &TransactionExecutionInput{}, true
	case StepMonitoringReporting:
		return &MonitoringReportingInput{}, true
	case StepSecondaryMarketExit:
		return &SecondaryMarketInput{}, true
	default:
		return nil, false
	}
}
