package project

import "strings"

// IsPostComplete reports whether every field required to close the
// post-implementation phase is recorded. Numeric fields count as recorded
// when explicitly zero.
func IsPostComplete(post *PostDetails) bool {
	if post == nil {
		return false
	}
	dt := post.Tracking()
	v := post.Verified()
	cost := post.CostGroup()
	impl := post.Impl()

	return present(dt.DateReceivedPost) &&
		present(dt.DateSubmittedRO) &&
		v.TotalBeneficiariesActual != nil &&
		v.NoOfDaysOfWork != nil &&
		present(v.PeriodStart) &&
		present(v.PeriodEnd) &&
		cost.SalaryPerDay != nil &&
		present(impl.PaymentReleasedDate)
}

// MissingPostFields lists the completion fields that are still absent, in
// form order.
func MissingPostFields(post *PostDetails) []string {
	dt := post.Tracking()
	v := post.Verified()
	cost := post.CostGroup()
	impl := post.Impl()

	var missing []string
	check := func(ok bool, name string) {
		if !ok {
			missing = append(missing, name)
		}
	}
	check(present(dt.DateReceivedPost), "documentTracking.dateReceivedPost")
	check(present(dt.DateSubmittedRO), "documentTracking.dateSubmittedRO")
	check(v.TotalBeneficiariesActual != nil, "verification.totalBeneficiariesActual")
	check(v.NoOfDaysOfWork != nil, "verification.noOfDaysOfWork")
	check(present(v.PeriodStart), "verification.periodStart")
	check(present(v.PeriodEnd), "verification.periodEnd")
	check(cost.SalaryPerDay != nil, "cost.salaryPerDay")
	check(present(impl.PaymentReleasedDate), "implementation.paymentReleasedDate")
	return missing
}

func present(s string) bool {
	return strings.TrimSpace(s) != ""
}
