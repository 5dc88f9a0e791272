package export

import (
	"strconv"

	"github.com/tupadhub/tupadhub/internal/domain/project"
)

// column is one field of the fixed export layout. value returns a string,
// an int, a float64, or nil when the field is not recorded.
type column struct {
	header string
	value  func(p project.Project) any
}

// columns is the 33-column layout shared by CSV and XLSX exports. Downstream
// spreadsheet templates depend on this exact order.
var columns = []column{
	{"ADL No.", func(p project.Project) any { return project.ResolveADL(p) }},

	{"Date Received (RO)", func(p project.Project) any { return p.PreDetails.Tracking().DateReceivedRO }},
	{"NTP No.", func(p project.Project) any { return p.PreDetails.Tracking().NTPNumber }},
	{"Date Submitted (RO)", func(p project.Project) any { return p.PreDetails.Tracking().DateSubmittedRO }},
	{"Notice to Proceed", func(p project.Project) any { return p.PreDetails.Tracking().NoticeToProceedDate }},
	{"Name & Nature of Project", func(p project.Project) any { return p.PreDetails.Info().NameNature }},
	{"Name of Proponent", func(p project.Project) any { return p.PreDetails.Info().Proponent }},
	{"Project Location", func(p project.Project) any { return p.PreDetails.Info().Location }},
	{"Total Beneficiaries", func(p project.Project) any { return intValue(p.PreDetails.Info().TotalBeneficiaries) }},
	{"Total Female", func(p project.Project) any { return intValue(p.PreDetails.Info().TotalFemale) }},
	{"No. of Days", func(p project.Project) any { return intValue(p.PreDetails.Info().NoOfDays) }},
	{"Salary per Day", func(p project.Project) any { return floatValue(p.PreDetails.CostGroup().SalaryPerDay) }},
	{"Labor Cost", func(p project.Project) any { return floatValue(p.PreDetails.CostGroup().LaborCost) }},
	{"PPE", func(p project.Project) any { return floatValue(p.PreDetails.CostGroup().PPE) }},
	{"Insurance", func(p project.Project) any { return floatValue(p.PreDetails.CostGroup().Insurance) }},
	{"Total Cost", func(p project.Project) any { return floatValue(p.PreDetails.CostGroup().Total) }},
	{"Orientation Date", func(p project.Project) any { return p.PreDetails.Impl().OrientationDate }},
	{"Payment of Wages", func(p project.Project) any { return p.PreDetails.Impl().PaymentDate }},
	{"Pre Remarks", func(p project.Project) any { return p.PreDetails.Impl().Remarks }},

	{"Date Received (Post)", func(p project.Project) any { return p.PostDetails.Tracking().DateReceivedPost }},
	{"Submitted to RO", func(p project.Project) any { return p.PostDetails.Tracking().DateSubmittedRO }},
	{"Total Beneficiaries (Actual)", func(p project.Project) any { return intValue(p.PostDetails.Verified().TotalBeneficiariesActual) }},
	{"Total Female (Actual)", func(p project.Project) any { return intValue(p.PostDetails.Verified().TotalFemaleActual) }},
	{"No. of Days of Work", func(p project.Project) any { return intValue(p.PostDetails.Verified().NoOfDaysOfWork) }},
	{"Period Start", func(p project.Project) any { return p.PostDetails.Verified().PeriodStart }},
	{"Period End", func(p project.Project) any { return p.PostDetails.Verified().PeriodEnd }},
	{"Actual Salary per Day", func(p project.Project) any { return floatValue(p.PostDetails.CostGroup().SalaryPerDay) }},
	{"Actual Labor Cost", func(p project.Project) any { return floatValue(p.PostDetails.CostGroup().LaborCost) }},
	{"Actual PPE", func(p project.Project) any { return floatValue(p.PostDetails.CostGroup().PPE) }},
	{"Actual Insurance", func(p project.Project) any { return floatValue(p.PostDetails.CostGroup().Insurance) }},
	{"Actual Total Cost", func(p project.Project) any { return floatValue(p.PostDetails.CostGroup().Total) }},
	{"Payment Released", func(p project.Project) any { return p.PostDetails.Impl().PaymentReleasedDate }},
	{"Post Remarks", func(p project.Project) any { return p.PostDetails.Impl().Remarks }},
}

// Header returns the export column headers.
func Header() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.header
	}
	return out
}

// Row returns the export cells of p as text.
func Row(p project.Project) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = formatCell(c.value(p))
	}
	return out
}

func cells(p project.Project) []any {
	out := make([]any, len(columns))
	for i, c := range columns {
		out[i] = c.value(p)
	}
	return out
}

func formatCell(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// intValue and floatValue keep absent fields as an untyped nil cell.
func intValue(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatValue(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
