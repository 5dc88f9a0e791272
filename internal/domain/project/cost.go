package project

// Fixed per-head allowances, in pesos.
const (
	PPEPerHead       = 250
	InsurancePerHead = 50
)

// CostBreakdown is the derived cost of one phase.
type CostBreakdown struct {
	LaborCost float64 `json:"laborCost"`
	PPE       float64 `json:"ppe"`
	Insurance float64 `json:"insurance"`
	Total     float64 `json:"total"`
}

// ComputeCost derives labor, PPE, insurance and total cost. No rounding is
// applied. Negative inputs are outside the domain and are treated as zero.
func ComputeCost(beneficiaries, days int, salaryPerDay float64) CostBreakdown {
	b := float64(max(beneficiaries, 0))
	d := float64(max(days, 0))
	s := max(salaryPerDay, 0)

	labor := b * d * s
	ppe := b * PPEPerHead
	insurance := b * InsurancePerHead
	return CostBreakdown{
		LaborCost: labor,
		PPE:       ppe,
		Insurance: insurance,
		Total:     labor + ppe + insurance,
	}
}

// Group converts the breakdown into a stored cost group.
func (c CostBreakdown) Group(salaryPerDay float64) *Cost {
	return &Cost{
		SalaryPerDay: Float(salaryPerDay),
		LaborCost:    Float(c.LaborCost),
		PPE:          Float(c.PPE),
		Insurance:    Float(c.Insurance),
		Total:        Float(c.Total),
	}
}

// CostInputs carries a cost-form edit. Nil fields keep their current value.
type CostInputs struct {
	Beneficiaries *int     `json:"beneficiaries,omitempty"`
	Days          *int     `json:"days,omitempty"`
	SalaryPerDay  *float64 `json:"salaryPerDay,omitempty"`
}
