package export

import (
	"strconv"

	"github.com/tupadhub/tupadhub/internal/domain/project"
)

// Field is one labelled value of a printed report.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Section groups report fields under a heading.
type Section struct {
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// ProjectReport is the read-only print view of one project.
type ProjectReport struct {
	ID           string         `json:"id"`
	ADL          string         `json:"adl"`
	Municipality string         `json:"municipality"`
	Status       project.Status `json:"status"`
	Sections     []Section      `json:"sections"`
}

// PortfolioReport is the all-projects print view.
type PortfolioReport struct {
	Projects []ProjectReport `json:"projects"`
	Stats    project.Stats   `json:"stats"`
}

// Report builds the single-project print view.
func Report(p project.Project) ProjectReport {
	pre := p.PreDetails
	post := p.PostDetails
	info := pre.Info()

	return ProjectReport{
		ID:           p.ID,
		ADL:          project.ResolveADL(p),
		Municipality: p.Municipality,
		Status:       p.EffectiveStatus(),
		Sections: []Section{
			{
				Title: "Pre-Employment Details",
				Fields: []Field{
					{"Name & Nature of Project", project.ResolveNature(p)},
					{"Name of Proponent", info.Proponent},
					{"Project Location", info.Location},
					{"Total Beneficiaries", strconv.Itoa(project.ResolveEstimatedBeneficiaries(p))},
					{"Total Female", intText(info.TotalFemale)},
					{"No. of Days", intText(info.NoOfDays)},
					{"Date Received (RO)", pre.Tracking().DateReceivedRO},
					{"Date Submitted (RO)", pre.Tracking().DateSubmittedRO},
					{"Notice to Proceed", pre.Tracking().NoticeToProceedDate},
					{"Orientation Date", pre.Impl().OrientationDate},
					{"Implementation Period", project.ResolvePeriod(p)},
					{"Payment of Wages", pre.Impl().PaymentDate},
					{"Remarks", pre.Impl().Remarks},
				},
			},
			{
				Title: "Post-Employment Details",
				Fields: []Field{
					{"Total Beneficiaries (Actual)", intText(post.Verified().TotalBeneficiariesActual)},
					{"Total Female (Actual)", intText(post.Verified().TotalFemaleActual)},
					{"No. of Days of Work", intText(post.Verified().NoOfDaysOfWork)},
					{"Date Received (Post)", post.Tracking().DateReceivedPost},
					{"Submitted to RO", post.Tracking().DateSubmittedRO},
				},
			},
		},
	}
}

// Portfolio builds the all-projects print view with portfolio statistics.
func Portfolio(projects []project.Project) PortfolioReport {
	out := PortfolioReport{
		Projects: make([]ProjectReport, 0, len(projects)),
		Stats:    project.ComputeStats(projects),
	}
	for _, p := range projects {
		out.Projects = append(out.Projects, portfolioEntry(p))
	}
	return out
}

func portfolioEntry(p project.Project) ProjectReport {
	pre := p.PreDetails
	post := p.PostDetails
	info := pre.Info()

	return ProjectReport{
		ID:           p.ID,
		ADL:          project.ResolveADL(p),
		Municipality: p.Municipality,
		Status:       p.EffectiveStatus(),
		Sections: []Section{
			{
				Title: "Project Information",
				Fields: []Field{
					{"Name & Nature", project.ResolveNature(p)},
					{"Proponent", info.Proponent},
					{"Location", info.Location},
					{"Total Beneficiaries", strconv.Itoa(project.ResolveEstimatedBeneficiaries(p)) + " / " + intText(post.Verified().TotalBeneficiariesActual)},
					{"Total Female", intText(info.TotalFemale)},
					{"No. of Days", intText(info.NoOfDays)},
				},
			},
			{
				Title: "PRE • Document Tracking",
				Fields: []Field{
					{"Date Received (RO)", pre.Tracking().DateReceivedRO},
					{"Date Submitted (RO)", pre.Tracking().DateSubmittedRO},
					{"Notice to Proceed", pre.Tracking().NoticeToProceedDate},
				},
			},
			{
				Title: "PRE • Implementation",
				Fields: []Field{
					{"Orientation Date", pre.Impl().OrientationDate},
					{"Remarks", pre.Impl().Remarks},
				},
			},
			{
				Title: "POST • Implementation Summary",
				Fields: []Field{
					{"Payment Released", post.Impl().PaymentReleasedDate},
				},
			},
			{
				Title: "POST • Document Tracking",
				Fields: []Field{
					{"Date Received (Post)", post.Tracking().DateReceivedPost},
					{"Submitted to RO", post.Tracking().DateSubmittedRO},
				},
			},
			{
				Title: "POST • Verification",
				Fields: []Field{
					{"Total Beneficiaries (Actual)", intText(post.Verified().TotalBeneficiariesActual)},
					{"Total Female (Actual)", intText(post.Verified().TotalFemaleActual)},
					{"No. of Days of Work", intText(post.Verified().NoOfDaysOfWork)},
					{"Implementation Period", project.ResolvePeriod(p)},
				},
			},
		},
	}
}

func intText(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
