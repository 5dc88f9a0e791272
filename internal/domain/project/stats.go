package project

import "math"

// Stats aggregates a project portfolio for the dashboard.
type Stats struct {
	Total              int `json:"total"`
	Completed          int `json:"completed"`
	Ongoing            int `json:"ongoing"`
	TotalBeneficiaries int `json:"totalBeneficiaries"`
	TotalFemale        int `json:"totalFemale"`
	FemalePct          int `json:"femalePct"`
}

// ComputeStats reduces projects into portfolio statistics. It holds no
// state and is recomputed on every read.
func ComputeStats(projects []Project) Stats {
	var s Stats
	s.Total = len(projects)
	for _, p := range projects {
		if p.Status == StatusCompleted {
			s.Completed++
		}
		if v := ResolveBeneficiaries(p); v != nil {
			s.TotalBeneficiaries += *v
		}
		if v := ResolveFemale(p); v != nil {
			s.TotalFemale += *v
		}
	}
	s.Ongoing = s.Total - s.Completed
	s.FemalePct = femalePercent(s.TotalFemale, s.TotalBeneficiaries)
	return s
}

func femalePercent(female, total int) int {
	if total <= 0 {
		return 0
	}
	pct := math.Round(float64(female) / float64(total) * 100)
	return int(min(max(pct, 0), 100))
}
