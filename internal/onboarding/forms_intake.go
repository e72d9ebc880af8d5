package onboarding

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"buyer-portal/buyer-portal-backend/internal/procedures"
)

var fieldCheck = validator.New()

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func wellFormedEmail(s string) bool {
	return !blank(s) && fieldCheck.Var(s, "email") == nil
}

// oneOf reports whether s is one of allowed
func oneOf(s string, allowed ...string) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}

func orDefault(s, fallback string) string {
	if blank(s) {
		return fallback
	}
	return s
}

func day(now time.Time, days int) time.Time {
	return now.UTC().Truncate(24*time.Hour).AddDate(0, 0, days)
}

// =====================================================
// Initial Inquiry
// =====================================================

var organisationCategories = map[string]string{
	"family_office":    "family_office",
	"pension_fund":     "institutional",
	"endowment":        "endowment",
	"sovereign_wealth": "sovereign",
	"asset_manager":    "manager",
}

func initialInquiryForm() StepForm {
	return &Form[InitialInquiry, procedures.InitialInquiryInput]{
		step:  StepInitialInquiry,
		guide: "Tell us who you are. We use these details to set up your organisation and assign a relationship manager.",
		defaults: func(*AggregateData, time.Time) InitialInquiry {
			return InitialInquiry{
				OrganisationType:    "family_office",
				InvestmentInterests: []string{},
			}
		},
		slot: func(agg *AggregateData) **InitialInquiry { return &agg.InitialInquiry },
		rules: []Rule[InitialInquiry]{
			{Field: "organisationName", Message: "organisation name is required",
				Check: func(v *InitialInquiry, _ time.Time) bool { return !blank(v.OrganisationName) }},
			{Field: "contact.name", Message: "contact name is required",
				Check: func(v *InitialInquiry, _ time.Time) bool { return !blank(v.Contact.Name) }},
			{Field: "contact.email", Message: "a valid contact email is required",
				Check: func(v *InitialInquiry, _ time.Time) bool { return wellFormedEmail(v.Contact.Email) }},
			{Field: "contact.phone", Message: "contact phone is required",
				Check: func(v *InitialInquiry, _ time.Time) bool { return !blank(v.Contact.Phone) }},
			{Field: "estimatedAum", Message: "estimated assets under management cannot be negative",
				Check: func(v *InitialInquiry, _ time.Time) bool { return v.EstimatedAUM >= 0 }},
		},
		toRemote: func(v InitialInquiry) procedures.InitialInquiryInput {
			category, ok := organisationCategories[v.OrganisationType]
			if !ok {
				category = "other"
			}
			return procedures.InitialInquiryInput{
				OrganizationName: strings.TrimSpace(v.OrganisationName),
				InvestorCategory: category,
				PrimaryContact: procedures.ContactInput{
					FullName: v.Contact.Name,
					Email:    v.Contact.Email,
					Phone:    v.Contact.Phone,
					Title:    v.Contact.Title,
				},
				Jurisdiction: v.Jurisdiction,
				EstimatedAUM: v.EstimatedAUM,
				Interests:    v.InvestmentInterests,
				Source:       v.ReferralSource,
				Notes:        v.Message,
			}
		},
		fromRemote: func(p procedures.InitialInquiryInput) InitialInquiry {
			orgType := "other"
			for local, remote := range organisationCategories {
				if remote == p.InvestorCategory {
					orgType = local
				}
			}
			return InitialInquiry{
				OrganisationName: p.OrganizationName,
				OrganisationType: orgType,
				Contact: Contact{
					Name:  p.PrimaryContact.FullName,
					Email: p.PrimaryContact.Email,
					Phone: p.PrimaryContact.Phone,
					Title: p.PrimaryContact.Title,
				},
				Jurisdiction:        p.Jurisdiction,
				EstimatedAUM:        p.EstimatedAUM,
				InvestmentInterests: nonNil(p.Interests),
				ReferralSource:      p.Source,
				Message:             p.Notes,
			}
		},
	}
}

// =====================================================
// Qualification & KYC/AML
// =====================================================

func qualificationForm() StepForm {
	return &Form[QualificationAndKYCAML, procedures.QualificationInput]{
		step:  StepQualification,
		guide: "We are required to verify your entity and its beneficial owners before you can access deal rooms.",
		defaults: func(*AggregateData, time.Time) QualificationAndKYCAML {
			return QualificationAndKYCAML{BeneficialOwners: []BeneficialOwner{}}
		},
		slot: func(agg *AggregateData) **QualificationAndKYCAML { return &agg.QualificationKYCAML },
		rules: []Rule[QualificationAndKYCAML]{
			{Field: "entity.legalName", Message: "legal entity name is required",
				Check: func(v *QualificationAndKYCAML, _ time.Time) bool { return !blank(v.Entity.LegalName) }},
			{Field: "entity.registrationNumber", Message: "registration number is required",
				Check: func(v *QualificationAndKYCAML, _ time.Time) bool { return !blank(v.Entity.RegistrationNumber) }},
			{Field: "entity.countryOfIncorporation", Message: "country of incorporation is required",
				Check: func(v *QualificationAndKYCAML, _ time.Time) bool { return !blank(v.Entity.CountryOfIncorporation) }},
			{Field: "beneficialOwners", Message: "at least one named beneficial owner is required",
				Check: func(v *QualificationAndKYCAML, _ time.Time) bool {
					if len(v.BeneficialOwners) == 0 {
						return false
					}
					for _, o := range v.BeneficialOwners {
						if blank(o.Name) {
							return false
						}
					}
					return true
				}},
			{Field: "beneficialOwners", Message: "beneficial ownership cannot exceed 100%",
				Check: func(v *QualificationAndKYCAML, _ time.Time) bool {
					total := 0.0
					for _, o := range v.BeneficialOwners {
						if o.OwnershipPercent < 0 {
							return false
						}
						total += o.OwnershipPercent
					}
					return total <= 100
				}},
			{Field: "compliance.sanctionsScreeningConsent", Message: "sanctions screening consent is required",
				Check: func(v *QualificationAndKYCAML, _ time.Time) bool { return v.Compliance.SanctionsScreeningConsent }},
		},
		toRemote: func(v QualificationAndKYCAML) procedures.QualificationInput {
			owners := make([]procedures.OwnerInput, 0, len(v.BeneficialOwners))
			for _, o := range v.BeneficialOwners {
				owners = append(owners, procedures.OwnerInput{
					Name:             o.Name,
					OwnershipPercent: o.OwnershipPercent,
					Nationality:      o.Nationality,
				})
			}
			docs := v.Documents
			var provided []string
			for _, d := range []struct {
				ok   bool
				name string
			}{
				{docs.CertificateOfIncorporation, "certificate_of_incorporation"},
				{docs.ProofOfAddress, "proof_of_address"},
				{docs.FinancialStatements, "financial_statements"},
				{docs.BoardResolution, "board_resolution"},
			} {
				if d.ok {
					provided = append(provided, d.name)
				}
			}
			return procedures.QualificationInput{
				LegalEntityName:      v.Entity.LegalName,
				RegistrationNumber:   v.Entity.RegistrationNumber,
				Country:              v.Entity.CountryOfIncorporation,
				TaxID:                v.Entity.TaxID,
				InvestorStatus:       investorStatus(v.Accreditation),
				BeneficialOwners:     owners,
				SourceOfFunds:        v.Compliance.SourceOfFunds,
				PoliticallyExposed:   v.Compliance.PEPDeclaration,
				SanctionsConsent:     v.Compliance.SanctionsScreeningConsent,
				ProvidedDocuments:    provided,
				KYCDocumentsComplete: len(provided) == 4,
			}
		},
		fromRemote: func(p procedures.QualificationInput) QualificationAndKYCAML {
			v := QualificationAndKYCAML{
				Entity: EntityDetails{
					LegalName:              p.LegalEntityName,
					RegistrationNumber:     p.RegistrationNumber,
					CountryOfIncorporation: p.Country,
					TaxID:                  p.TaxID,
				},
				Accreditation: Accreditation{
					QualifiedPurchaser: p.InvestorStatus == "qualified_purchaser",
					AccreditedInvestor: p.InvestorStatus == "qualified_purchaser" || p.InvestorStatus == "accredited",
					ProfessionalClient: p.InvestorStatus == "professional",
				},
				BeneficialOwners: make([]BeneficialOwner, 0, len(p.BeneficialOwners)),
				Compliance: ComplianceChecks{
					SourceOfFunds:             p.SourceOfFunds,
					PEPDeclaration:            p.PoliticallyExposed,
					SanctionsScreeningConsent: p.SanctionsConsent,
				},
			}
			for _, o := range p.BeneficialOwners {
				v.BeneficialOwners = append(v.BeneficialOwners, BeneficialOwner(o))
			}
			for _, d := range p.ProvidedDocuments {
				switch d {
				case "certificate_of_incorporation":
					v.Documents.CertificateOfIncorporation = true
				case "proof_of_address":
					v.Documents.ProofOfAddress = true
				case "financial_statements":
					v.Documents.FinancialStatements = true
				case "board_resolution":
					v.Documents.BoardResolution = true
				}
			}
			return v
		},
	}
}

func investorStatus(a Accreditation) string {
	switch {
	case a.QualifiedPurchaser:
		return "qualified_purchaser"
	case a.AccreditedInvestor:
		return "accredited"
	case a.ProfessionalClient:
		return "professional"
	default:
		return "retail"
	}
}

// =====================================================
// Due Diligence & Legal
// =====================================================

func dueDiligenceForm() StepForm {
	return &Form[DueDiligenceAndLegal, procedures.DueDiligenceInput]{
		step:  StepDueDiligence,
		guide: "Review and sign the legal documents. Your counsel can be copied on all correspondence.",
		defaults: func(_ *AggregateData, now time.Time) DueDiligenceAndLegal {
			return DueDiligenceAndLegal{ReviewDeadline: day(now, 14)}
		},
		slot: func(agg *AggregateData) **DueDiligenceAndLegal { return &agg.DueDiligenceLegal },
		rules: []Rule[DueDiligenceAndLegal]{
			{Field: "legalDocuments.ndaSigned", Message: "the NDA must be signed",
				Check: func(v *DueDiligenceAndLegal, _ time.Time) bool { return v.LegalDocuments.NDASigned }},
			{Field: "legalDocuments.ddqCompleted", Message: "the due diligence questionnaire must be completed",
				Check: func(v *DueDiligenceAndLegal, _ time.Time) bool { return v.LegalDocuments.DDQCompleted }},
			{Field: "platformAgreements.termsAccepted", Message: "the platform terms must be accepted",
				Check: func(v *DueDiligenceAndLegal, _ time.Time) bool { return v.PlatformAgreements.TermsAccepted }},
			{Field: "platformAgreements.privacyPolicyAccepted", Message: "the privacy policy must be accepted",
				Check: func(v *DueDiligenceAndLegal, _ time.Time) bool { return v.PlatformAgreements.PrivacyPolicyAccepted }},
			{Field: "reviewDeadline", Message: "a review deadline is required",
				Check: func(v *DueDiligenceAndLegal, _ time.Time) bool { return !v.ReviewDeadline.IsZero() }},
			{Field: "legalCounsel.contactEmail", Message: "counsel email is not a valid address",
				Check: func(v *DueDiligenceAndLegal, _ time.Time) bool {
					return blank(v.LegalCounsel.FirmName) || blank(v.LegalCounsel.ContactEmail) ||
						wellFormedEmail(v.LegalCounsel.ContactEmail)
				}},
		},
		toRemote: func(v DueDiligenceAndLegal) procedures.DueDiligenceInput {
			docs, agreements := v.LegalDocuments, v.PlatformAgreements
			in := procedures.DueDiligenceInput{
				LegalDocumentsComplete: docs.DDQCompleted && docs.NDASigned && docs.SubscriptionAgreementReviewed,
				NDASigned:              docs.NDASigned,
				DDQCompleted:           docs.DDQCompleted,
				SideLetterRequested:    docs.SideLetterRequested,
				AgreementsAccepted:     agreements.TermsAccepted && agreements.PrivacyPolicyAccepted,
				MarketingConsent:       agreements.ElectronicCommsConsent,
				ReviewDeadline:         v.ReviewDeadline,
			}
			if !blank(v.LegalCounsel.FirmName) {
				in.Counsel = &procedures.CounselInput{
					FirmName:    v.LegalCounsel.FirmName,
					ContactName: v.LegalCounsel.ContactName,
					Email:       v.LegalCounsel.ContactEmail,
				}
			}
			return in
		},
		fromRemote: func(p procedures.DueDiligenceInput) DueDiligenceAndLegal {
			v := DueDiligenceAndLegal{
				LegalDocuments: LegalDocuments{
					DDQCompleted:                  p.DDQCompleted,
					NDASigned:                     p.NDASigned,
					SubscriptionAgreementReviewed: p.LegalDocumentsComplete,
					SideLetterRequested:           p.SideLetterRequested,
				},
				PlatformAgreements: PlatformAgreements{
					TermsAccepted:          p.AgreementsAccepted,
					PrivacyPolicyAccepted:  p.AgreementsAccepted,
					DataProcessingAccepted: p.AgreementsAccepted,
					ElectronicCommsConsent: p.MarketingConsent,
				},
				ReviewDeadline: p.ReviewDeadline,
			}
			if p.Counsel != nil {
				v.LegalCounsel = LegalCounsel{
					FirmName:     p.Counsel.FirmName,
					ContactName:  p.Counsel.ContactName,
					ContactEmail: p.Counsel.Email,
				}
			}
			return v
		},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
