package project

import "strings"

// ResolveADL returns the effective ADL number: the post-phase number, then
// the pre-phase number, then the code assigned at creation.
func ResolveADL(p Project) string {
	if adl := strings.TrimSpace(p.PostDetails.Tracking().ADLNumber); adl != "" {
		return adl
	}
	if adl := strings.TrimSpace(p.PreDetails.Tracking().ADLNumber); adl != "" {
		return adl
	}
	return strings.TrimSpace(p.ADL)
}

// ResolveNature returns the nature of the project, falling back to the
// pre-phase name and nature field.
func ResolveNature(p Project) string {
	if n := strings.TrimSpace(p.NatureOfProject); n != "" {
		return n
	}
	return strings.TrimSpace(p.PreDetails.Info().NameNature)
}

// ResolveBeneficiaries returns the actual signed beneficiaries when
// verified, else the pre-phase estimate. Nil means neither is recorded.
func ResolveBeneficiaries(p Project) *int {
	if v := p.PostDetails.Verified().TotalBeneficiariesActual; v != nil {
		return v
	}
	return p.PreDetails.Info().TotalBeneficiaries
}

// ResolveFemale mirrors ResolveBeneficiaries for female beneficiaries.
func ResolveFemale(p Project) *int {
	if v := p.PostDetails.Verified().TotalFemaleActual; v != nil {
		return v
	}
	return p.PreDetails.Info().TotalFemale
}

// ResolveEstimatedBeneficiaries returns the pre-phase estimate, falling
// back to the count given at creation.
func ResolveEstimatedBeneficiaries(p Project) int {
	if v := p.PreDetails.Info().TotalBeneficiaries; v != nil {
		return *v
	}
	return p.Beneficiaries
}

// ResolvePeriod formats the implementation period as "start - end".
func ResolvePeriod(p Project) string {
	v := p.PostDetails.Verified()
	start := strings.TrimSpace(v.PeriodStart)
	if start == "" {
		return ""
	}
	if end := strings.TrimSpace(v.PeriodEnd); end != "" {
		return start + " - " + end
	}
	return start
}
