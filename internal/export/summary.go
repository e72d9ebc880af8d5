package export

import (
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"buyer-portal/buyer-portal-backend/internal/onboarding"
)

// Row is one labelled value of a summary section
type Row struct {
	Label string
	Value interface{}
}

// Section groups the rows of one onboarding step
type Section struct {
	Step      onboarding.StepID
	Title     string
	Completed bool
	Rows      []Row
}

// Summary is the printable form of a session
type Summary struct {
	Key          string
	Organisation string
	Completed    bool
	GeneratedAt  time.Time
	Sections     []Section
}

var acronyms = map[string]string{
	"aum": "AUM", "ddq": "DDQ", "nda": "NDA", "irr": "IRR", "esg": "ESG",
	"kpis": "KPIs", "pep": "PEP", "swift": "SWIFT", "id": "ID", "sms": "SMS",
	"pdf": "PDF", "kyc": "KYC", "aml": "AML",
}

// BuildSummary flattens the aggregate into one section per step, in step order
func BuildSummary(view onboarding.View, now time.Time) Summary {
	steps := view.Steps
	if len(steps) == 0 {
		steps = onboarding.BuyerSteps()
	}
	records := recordsByStep(view.Data)

	s := Summary{
		Key:         view.Key,
		Completed:   view.Completed,
		GeneratedAt: now,
	}
	if inquiry := view.Data.InitialInquiry; inquiry != nil {
		s.Organisation = inquiry.OrganisationName
	}

	for _, step := range steps {
		sec := Section{Step: step.ID, Title: step.Label}
		rec := records[step.ID]
		if rec.IsValid() && !rec.IsNil() {
			sec.Completed = true
			sec.Rows = flatten("", rec.Elem(), nil)
		} else {
			sec.Rows = []Row{{Label: "Status", Value: "Not completed"}}
		}
		s.Sections = append(s.Sections, sec)
	}
	return s
}

func recordsByStep(d onboarding.AggregateData) map[onboarding.StepID]reflect.Value {
	return map[onboarding.StepID]reflect.Value{
		onboarding.StepInitialInquiry:       reflect.ValueOf(d.InitialInquiry),
		onboarding.StepQualification:        reflect.ValueOf(d.QualificationKYCAML),
		onboarding.StepDueDiligence:         reflect.ValueOf(d.DueDiligenceLegal),
		onboarding.StepInvestorProfile:      reflect.ValueOf(d.InvestorProfile),
		onboarding.StepPlatformTraining:     reflect.ValueOf(d.PlatformTraining),
		onboarding.StepBuyBoxAllocation:     reflect.ValueOf(d.BuyBoxAllocation),
		onboarding.StepTransactionExecution: reflect.ValueOf(d.TransactionExecution),
		onboarding.StepMonitoringReporting:  reflect.ValueOf(d.MonitoringReporting),
		onboarding.StepSecondaryMarketExit:  reflect.ValueOf(d.SecondaryMarketExit),
	}
}

// flatten walks a record in field order. Nested structs prefix their
// labels; lists of structs are numbered.
func flatten(prefix string, v reflect.Value, rows []Row) []Row {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := strings.Split(field.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			name = field.Name
		}
		label := joinLabel(prefix, humanize(name))
		fv := v.Field(i)

		switch {
		case fv.Type() == reflect.TypeOf(time.Time{}):
			rows = append(rows, Row{Label: label, Value: fv.Interface()})
		case fv.Kind() == reflect.Struct:
			rows = flatten(label, fv, rows)
		case fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() == reflect.Struct:
			if fv.Len() == 0 {
				rows = append(rows, Row{Label: label, Value: ""})
			}
			for j := 0; j < fv.Len(); j++ {
				rows = flatten(label+" "+strconv.Itoa(j+1), fv.Index(j), rows)
			}
		case fv.Kind() == reflect.Slice:
			parts := make([]string, 0, fv.Len())
			for j := 0; j < fv.Len(); j++ {
				parts = append(parts, strings.ReplaceAll(fv.Index(j).String(), "_", " "))
			}
			rows = append(rows, Row{Label: label, Value: strings.Join(parts, ", ")})
		case fv.Kind() == reflect.String:
			rows = append(rows, Row{Label: label, Value: strings.ReplaceAll(fv.String(), "_", " ")})
		default:
			rows = append(rows, Row{Label: label, Value: fv.Interface()})
		}
	}
	return rows
}

func joinLabel(prefix, label string) string {
	if prefix == "" {
		return label
	}
	return prefix + " / " + label
}

// humanize turns a camelCase key into title-cased words
func humanize(key string) string {
	var words []string
	start := 0
	runes := []rune(key)
	for i := 1; i < len(runes); i++ {
		if unicode.IsUpper(runes[i]) && !unicode.IsUpper(runes[i-1]) {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	words = append(words, string(runes[start:]))

	for i, w := range words {
		lower := strings.ToLower(w)
		if a, ok := acronyms[lower]; ok {
			words[i] = a
			continue
		}
		if lower == "" {
			continue
		}
		r := []rune(lower)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
