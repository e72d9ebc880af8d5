package onboarding

import (
	"strings"
	"time"

	"buyer-portal/buyer-portal-backend/internal/procedures"
)

// =====================================================
// Investor Profile & Preferences
// =====================================================

// riskBucket maps a 1-10 appetite score onto the remote risk profile
func riskBucket(score int) string {
	switch {
	case score <= 3:
		return "conservative"
	case score <= 7:
		return "moderate"
	default:
		return "aggressive"
	}
}

func investorProfileForm() StepForm {
	return &Form[InvestorProfileAndPreferences, procedures.InvestorProfileInput]{
		step:  StepInvestorProfile,
		guide: "Your preferences drive deal matching. Ticket sizes are per transaction, not per fund.",
		defaults: func(*AggregateData, time.Time) InvestorProfileAndPreferences {
			return InvestorProfileAndPreferences{
				InvestmentStrategy: "core_plus",
				RiskAppetite:       5,
				HoldPeriodYears:    5,
				PreferredRegions:   []string{},
				PropertyTypes:      []string{},
				AllocationStrategy: "balanced",
			}
		},
		slot: func(agg *AggregateData) **InvestorProfileAndPreferences { return &agg.InvestorProfile },
		rules: []Rule[InvestorProfileAndPreferences]{
			{Field: "investmentStrategy", Message: "investment strategy is required",
				Check: func(v *InvestorProfileAndPreferences, _ time.Time) bool { return !blank(v.InvestmentStrategy) }},
			{Field: "investmentStrategy", Message: "investment strategy must be one of core, core_plus, value_add, opportunistic",
				Check: func(v *InvestorProfileAndPreferences, _ time.Time) bool {
					return oneOf(v.InvestmentStrategy, "core", "core_plus", "value_add", "opportunistic")
				}},
			{Field: "minimumInvestmentSize", Message: "minimum investment size must be greater than zero",
				Check: func(v *InvestorProfileAndPreferences, _ time.Time) bool { return v.MinimumInvestmentSize > 0 }},
			{Field: "maximumInvestmentSize", Message: "minimum investment size must be less than maximum investment size",
				Check: func(v *InvestorProfileAndPreferences, _ time.Time) bool {
					return v.MinimumInvestmentSize < v.MaximumInvestmentSize
				}},
			{Field: "riskAppetite", Message: "risk appetite must be between 1 and 10",
				Check: func(v *InvestorProfileAndPreferences, _ time.Time) bool {
					return v.RiskAppetite >= 1 && v.RiskAppetite <= 10
				}},
			{Field: "preferredRegions", Message: "select at least one preferred region",
				Check: func(v *InvestorProfileAndPreferences, _ time.Time) bool { return len(v.PreferredRegions) > 0 }},
			{Field: "targetIrr", Message: "target IRR cannot be negative",
				Check: func(v *InvestorProfileAndPreferences, _ time.Time) bool { return v.TargetIRR >= 0 }},
			{Field: "holdPeriodYears", Message: "hold period cannot be negative",
				Check: func(v *InvestorProfileAndPreferences, _ time.Time) bool { return v.HoldPeriodYears >= 0 }},
			{Field: "allocationStrategy", Message: "allocation strategy must be one of balanced, growth, income",
				Check: func(v *InvestorProfileAndPreferences, _ time.Time) bool {
					return blank(v.AllocationStrategy) || oneOf(v.AllocationStrategy, "balanced", "growth", "income")
				}},
		},
		toRemote: func(v InvestorProfileAndPreferences) procedures.InvestorProfileInput {
			return procedures.InvestorProfileInput{
				Strategy:    v.InvestmentStrategy,
				RiskProfile: riskBucket(v.RiskAppetite),
				RiskScore:   v.RiskAppetite,
				TicketSize: procedures.TicketSizeInput{
					Min: v.MinimumInvestmentSize,
					Max: v.MaximumInvestmentSize,
				},
				TargetIRR:          v.TargetIRR,
				HoldPeriodYears:    v.HoldPeriodYears,
				Regions:            v.PreferredRegions,
				PropertyTypes:      v.PropertyTypes,
				AllocationStrategy: orDefault(v.AllocationStrategy, "balanced"),
				ESGRequired:        v.ESG.Required,
				ESGMinimumRating:   v.ESG.MinimumRating,
			}
		},
		fromRemote: func(p procedures.InvestorProfileInput) InvestorProfileAndPreferences {
			return InvestorProfileAndPreferences{
				InvestmentStrategy:    p.Strategy,
				RiskAppetite:          p.RiskScore,
				MinimumInvestmentSize: p.TicketSize.Min,
				MaximumInvestmentSize: p.TicketSize.Max,
				TargetIRR:             p.TargetIRR,
				HoldPeriodYears:       p.HoldPeriodYears,
				PreferredRegions:      nonNil(p.Regions),
				PropertyTypes:         nonNil(p.PropertyTypes),
				AllocationStrategy:    p.AllocationStrategy,
				ESG:                   ESG{Required: p.ESGRequired, MinimumRating: p.ESGMinimumRating},
			}
		},
	}
}

// =====================================================
// Platform Training & Onboarding
// =====================================================

func platformTrainingForm() StepForm {
	return &Form[PlatformTrainingAndOnboarding, procedures.PlatformTrainingInput]{
		step:  StepPlatformTraining,
		guide: "Book a walkthrough with our onboarding team. The platform overview is required before your first allocation.",
		defaults: func(_ *AggregateData, now time.Time) PlatformTrainingAndOnboarding {
			return PlatformTrainingAndOnboarding{
				Session: TrainingSession{
					ScheduledDate: day(now, 7),
					Format:        "virtual",
					Attendees:     []string{},
				},
				PreferredContactMethod: "email",
			}
		},
		slot: func(agg *AggregateData) **PlatformTrainingAndOnboarding { return &agg.PlatformTraining },
		rules: []Rule[PlatformTrainingAndOnboarding]{
			{Field: "modules.platformOverview", Message: "the platform overview module must be completed",
				Check: func(v *PlatformTrainingAndOnboarding, _ time.Time) bool { return v.Modules.PlatformOverview }},
			{Field: "session.scheduledDate", Message: "choose a training date that is not in the past",
				Check: func(v *PlatformTrainingAndOnboarding, now time.Time) bool {
					d := v.Session.ScheduledDate
					return !d.IsZero() && !d.Before(now.UTC().Truncate(24*time.Hour))
				}},
			{Field: "session.format", Message: "session format must be virtual or in_person",
				Check: func(v *PlatformTrainingAndOnboarding, _ time.Time) bool {
					return blank(v.Session.Format) || oneOf(v.Session.Format, "virtual", "in_person")
				}},
			{Field: "session.attendees", Message: "every attendee must be a valid email address",
				Check: func(v *PlatformTrainingAndOnboarding, _ time.Time) bool {
					for _, a := range v.Session.Attendees {
						if !wellFormedEmail(a) {
							return false
						}
					}
					return true
				}},
			{Field: "preferredContactMethod", Message: "preferred contact method must be email, phone or video",
				Check: func(v *PlatformTrainingAndOnboarding, _ time.Time) bool {
					return blank(v.PreferredContactMethod) || oneOf(v.PreferredContactMethod, "email", "phone", "video")
				}},
		},
		toRemote: func(v PlatformTrainingAndOnboarding) procedures.PlatformTrainingInput {
			m := v.Modules
			var completed []string
			for _, mod := range []struct {
				done bool
				name string
			}{
				{m.PlatformOverview, "platform_overview"},
				{m.BuyBoxConfiguration, "buy_box_configuration"},
				{m.DealRoomNavigation, "deal_room_navigation"},
				{m.ReportingDashboard, "reporting_dashboard"},
				{m.ComplianceTraining, "compliance_training"},
			} {
				if mod.done {
					completed = append(completed, mod.name)
				}
			}
			return procedures.PlatformTrainingInput{
				TrainingComplete: len(completed) == 5,
				CompletedModules: completed,
				SessionDate:      v.Session.ScheduledDate,
				SessionFormat:    orDefault(v.Session.Format, "virtual"),
				Attendees:        v.Session.Attendees,
				ContactMethod:    orDefault(v.PreferredContactMethod, "email"),
			}
		},
		fromRemote: func(p procedures.PlatformTrainingInput) PlatformTrainingAndOnboarding {
			v := PlatformTrainingAndOnboarding{
				Session: TrainingSession{
					ScheduledDate: p.SessionDate,
					Format:        p.SessionFormat,
					Attendees:     nonNil(p.Attendees),
				},
				PreferredContactMethod: p.ContactMethod,
			}
			for _, name := range p.CompletedModules {
				switch name {
				case "platform_overview":
					v.Modules.PlatformOverview = true
				case "buy_box_configuration":
					v.Modules.BuyBoxConfiguration = true
				case "deal_room_navigation":
					v.Modules.DealRoomNavigation = true
				case "reporting_dashboard":
					v.Modules.ReportingDashboard = true
				case "compliance_training":
					v.Modules.ComplianceTraining = true
				}
			}
			return v
		},
	}
}

// =====================================================
// Buy Box Allocation & Investment
// =====================================================

// suggestedStrategy reads the investor profile when it exists
func suggestedStrategy(agg *AggregateData) string {
	if agg == nil || agg.InvestorProfile == nil {
		return "balanced"
	}
	return orDefault(agg.InvestorProfile.AllocationStrategy, "balanced")
}

func isoCurrency(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

func buyBoxAllocationForm() StepForm {
	return &Form[BuyBoxAllocationAndInvestment, procedures.BuyBoxAllocationInput]{
		step:  StepBuyBoxAllocation,
		guide: "Choose the Buy Boxes you want to fund and how capital should be drawn down.",
		defaults: func(agg *AggregateData, now time.Time) BuyBoxAllocationAndInvestment {
			return BuyBoxAllocationAndInvestment{
				SelectedBuyBoxes: []BuyBoxSelection{},
				Currency:         "USD",
				Funding: FundingPlan{
					Schedule:          "immediate",
					Phases:            1,
					FirstDrawdownDate: day(now, 30),
				},
				SuggestedStrategy: suggestedStrategy(agg),
			}
		},
		slot: func(agg *AggregateData) **BuyBoxAllocationAndInvestment { return &agg.BuyBoxAllocation },
		rules: []Rule[BuyBoxAllocationAndInvestment]{
			{Field: "selectedBuyBoxes", Message: "select at least one Buy Box",
				Check: func(v *BuyBoxAllocationAndInvestment, _ time.Time) bool { return len(v.SelectedBuyBoxes) > 0 }},
			{Field: "totalAllocation", Message: "total allocation must be greater than zero",
				Check: func(v *BuyBoxAllocationAndInvestment, _ time.Time) bool { return v.TotalAllocation > 0 }},
			{Field: "currency", Message: "currency is required",
				Check: func(v *BuyBoxAllocationAndInvestment, _ time.Time) bool { return !blank(v.Currency) }},
			{Field: "currency", Message: "currency must be a three-letter ISO code",
				Check: func(v *BuyBoxAllocationAndInvestment, _ time.Time) bool { return isoCurrency(v.Currency) }},
			{Field: "selectedBuyBoxes", Message: "every selected Buy Box needs an id",
				Check: func(v *BuyBoxAllocationAndInvestment, _ time.Time) bool {
					for _, b := range v.SelectedBuyBoxes {
						if blank(b.ID) {
							return false
						}
					}
					return true
				}},
			{Field: "selectedBuyBoxes", Message: "Buy Box allocations cannot be negative",
				Check: func(v *BuyBoxAllocationAndInvestment, _ time.Time) bool {
					for _, b := range v.SelectedBuyBoxes {
						if b.Allocation < 0 {
							return false
						}
					}
					return true
				}},
			{Field: "funding.schedule", Message: "funding schedule must be immediate or phased",
				Check: func(v *BuyBoxAllocationAndInvestment, _ time.Time) bool {
					return blank(v.Funding.Schedule) || oneOf(v.Funding.Schedule, "immediate", "phased")
				}},
			{Field: "funding.firstDrawdownDate", Message: "a first drawdown date is required",
				Check: func(v *BuyBoxAllocationAndInvestment, _ time.Time) bool { return !v.Funding.FirstDrawdownDate.IsZero() }},
		},
		toRemote: func(v BuyBoxAllocationAndInvestment) procedures.BuyBoxAllocationInput {
			boxes := make([]procedures.BuyBoxInput, 0, len(v.SelectedBuyBoxes))
			for _, b := range v.SelectedBuyBoxes {
				boxes = append(boxes, procedures.BuyBoxInput{BuyBoxID: b.ID, Name: b.Name, Amount: b.Allocation})
			}
			schedule := orDefault(v.Funding.Schedule, "immediate")
			tranches := 1
			if schedule == "phased" && v.Funding.Phases > 1 {
				tranches = v.Funding.Phases
			}
			return procedures.BuyBoxAllocationInput{
				BuyBoxes:        boxes,
				TotalCommitment: v.TotalAllocation,
				Currency:        strings.ToUpper(orDefault(v.Currency, "USD")),
				FundingSchedule: schedule,
				Tranches:        tranches,
				FirstDrawdown:   v.Funding.FirstDrawdownDate,
				Strategy:        v.SuggestedStrategy,
			}
		},
		fromRemote: func(p procedures.BuyBoxAllocationInput) BuyBoxAllocationAndInvestment {
			v := BuyBoxAllocationAndInvestment{
				SelectedBuyBoxes: make([]BuyBoxSelection, 0, len(p.BuyBoxes)),
				TotalAllocation:  p.TotalCommitment,
				Currency:         p.Currency,
				Funding: FundingPlan{
					Schedule:          p.FundingSchedule,
					Phases:            p.Tranches,
					FirstDrawdownDate: p.FirstDrawdown,
				},
				SuggestedStrategy: p.Strategy,
			}
			for _, b := range p.BuyBoxes {
				v.SelectedBuyBoxes = append(v.SelectedBuyBoxes, BuyBoxSelection{ID: b.BuyBoxID, Name: b.Name, Allocation: b.Amount})
			}
			return v
		},
	}
}
