package project

// Status represents the lifecycle state of a project
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
)

// StatusSource records who last set a project's status
type StatusSource string

const (
	SourceInferred StatusSource = "inferred"
	SourceManual   StatusSource = "manual"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Project is a single employment project tracked through its pre and post phases
type Project struct {
	ID              string       `json:"id"`
	ADL             string       `json:"adl"`
	Municipality    string       `json:"municipality"`
	Beneficiaries   int          `json:"beneficiaries"`
	NatureOfProject string       `json:"natureOfProject,omitempty"`
	Status          Status       `json:"status,omitempty"`
	StatusSource    StatusSource `json:"statusSource,omitempty"`
	PreDetails      *PreDetails  `json:"preDetails,omitempty"`
	PostDetails     *PostDetails `json:"postDetails,omitempty"`
}

// EffectiveStatus returns the stored status, treating a missing value as pending.
func (p *Project) EffectiveStatus() Status {
	if p.Status == "" {
		return StatusPending
	}
	return p.Status
}

// Clone returns a deep copy so callers can edit without aliasing stored state.
func (p Project) Clone() Project {
	p.PreDetails = p.PreDetails.Clone()
	p.PostDetails = p.PostDetails.Clone()
	return p
}

// PreDetails holds the pre-implementation record
type PreDetails struct {
	DocumentTracking   *PreDocumentTracking `json:"documentTracking,omitempty"`
	ProjectInformation *ProjectInformation  `json:"projectInformation,omitempty"`
	ProjectCost        *Cost                `json:"projectCost,omitempty"`
	Implementation     *PreImplementation   `json:"implementation,omitempty"`
}

type PreDocumentTracking struct {
	DateReceivedRO      string `json:"dateReceivedRO,omitempty"`
	ADLNumber           string `json:"adlNumber,omitempty"`
	NTPNumber           string `json:"ntpNumber,omitempty"`
	DateSubmittedRO     string `json:"dateSubmittedRO,omitempty"`
	NoticeToProceedDate string `json:"noticeToProceedDate,omitempty"`
}

type ProjectInformation struct {
	NameNature         string `json:"nameNature,omitempty"`
	Proponent          string `json:"proponent,omitempty"`
	Location           string `json:"location,omitempty"`
	TotalBeneficiaries *int   `json:"totalBeneficiaries,omitempty"`
	TotalFemale        *int   `json:"totalFemale,omitempty"`
	NoOfDays           *int   `json:"noOfDays,omitempty"`
}

// Cost is the stored cost breakdown of either phase.
type Cost struct {
	SalaryPerDay *float64 `json:"salaryPerDay,omitempty"`
	LaborCost    *float64 `json:"laborCost,omitempty"`
	PPE          *float64 `json:"ppe,omitempty"`
	Insurance    *float64 `json:"insurance,omitempty"`
	Total        *float64 `json:"total,omitempty"`
}

type PreImplementation struct {
	OrientationDate string `json:"orientationDate,omitempty"`
	PaymentDate     string `json:"paymentDate,omitempty"`
	Remarks         string `json:"remarks,omitempty"`
}

// PostDetails holds the post-implementation record
type PostDetails struct {
	DocumentTracking *PostDocumentTracking `json:"documentTracking,omitempty"`
	Verification     *Verification         `json:"verification,omitempty"`
	Cost             *Cost                 `json:"cost,omitempty"`
	Implementation   *PostImplementation   `json:"implementation,omitempty"`
}

type PostDocumentTracking struct {
	ADLNumber        string `json:"adlNumber,omitempty"`
	DateReceivedPost string `json:"dateReceivedPost,omitempty"`
	DateSubmittedRO  string `json:"dateSubmittedRO,omitempty"`
}

type Verification struct {
	TotalBeneficiariesActual *int   `json:"totalBeneficiariesActual,omitempty"`
	TotalFemaleActual        *int   `json:"totalFemaleActual,omitempty"`
	NoOfDaysOfWork           *int   `json:"noOfDaysOfWork,omitempty"`
	PeriodStart              string `json:"periodStart,omitempty"`
	PeriodEnd                string `json:"periodEnd,omitempty"`
}

type PostImplementation struct {
	PaymentReleasedDate string `json:"paymentReleasedDate,omitempty"`
	Remarks             string `json:"remarks,omitempty"`
}

// Nil-safe accessors. A nil group reads as an empty group.

func (d *PreDetails) Tracking() PreDocumentTracking {
	if d == nil || d.DocumentTracking == nil {
		return PreDocumentTracking{}
	}
	return *d.DocumentTracking
}

func (d *PreDetails) Info() ProjectInformation {
	if d == nil || d.ProjectInformation == nil {
		return ProjectInformation{}
	}
	return *d.ProjectInformation
}

func (d *PreDetails) CostGroup() Cost {
	if d == nil || d.ProjectCost == nil {
		return Cost{}
	}
	return *d.ProjectCost
}

func (d *PreDetails) Impl() PreImplementation {
	if d == nil || d.Implementation == nil {
		return PreImplementation{}
	}
	return *d.Implementation
}

func (d *PostDetails) Tracking() PostDocumentTracking {
	if d == nil || d.DocumentTracking == nil {
		return PostDocumentTracking{}
	}
	return *d.DocumentTracking
}

func (d *PostDetails) Verified() Verification {
	if d == nil || d.Verification == nil {
		return Verification{}
	}
	return *d.Verification
}

func (d *PostDetails) CostGroup() Cost {
	if d == nil || d.Cost == nil {
		return Cost{}
	}
	return *d.Cost
}

func (d *PostDetails) Impl() PostImplementation {
	if d == nil || d.Implementation == nil {
		return PostImplementation{}
	}
	return *d.Implementation
}

// Clone returns a deep copy of d.
func (d *PreDetails) Clone() *PreDetails {
	if d == nil {
		return nil
	}
	out := &PreDetails{}
	if d.DocumentTracking != nil {
		v := *d.DocumentTracking
		out.DocumentTracking = &v
	}
	if d.ProjectInformation != nil {
		v := *d.ProjectInformation
		v.TotalBeneficiaries = cloneInt(v.TotalBeneficiaries)
		v.TotalFemale = cloneInt(v.TotalFemale)
		v.NoOfDays = cloneInt(v.NoOfDays)
		out.ProjectInformation = &v
	}
	out.ProjectCost = d.ProjectCost.clone()
	if d.Implementation != nil {
		v := *d.Implementation
		out.Implementation = &v
	}
	return out
}

// Clone returns a deep copy of d.
func (d *PostDetails) Clone() *PostDetails {
	if d == nil {
		return nil
	}
	out := &PostDetails{}
	if d.DocumentTracking != nil {
		v := *d.DocumentTracking
		out.DocumentTracking = &v
	}
	if d.Verification != nil {
		v := *d.Verification
		v.TotalBeneficiariesActual = cloneInt(v.TotalBeneficiariesActual)
		v.TotalFemaleActual = cloneInt(v.TotalFemaleActual)
		v.NoOfDaysOfWork = cloneInt(v.NoOfDaysOfWork)
		out.Verification = &v
	}
	out.Cost = d.Cost.clone()
	if d.Implementation != nil {
		v := *d.Implementation
		out.Implementation = &v
	}
	return out
}

func (c *Cost) clone() *Cost {
	if c == nil {
		return nil
	}
	return &Cost{
		SalaryPerDay: cloneFloat(c.SalaryPerDay),
		LaborCost:    cloneFloat(c.LaborCost),
		PPE:          cloneFloat(c.PPE),
		Insurance:    cloneFloat(c.Insurance),
		Total:        cloneFloat(c.Total),
	}
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// ProjectSummary is the list-card view of a project
type ProjectSummary struct {
	ID                     string `json:"id"`
	ADL                    string `json:"adl"`
	Municipality           string `json:"municipality"`
	Nature                 string `json:"nature,omitempty"`
	Status                 Status `json:"status"`
	EstimatedBeneficiaries *int   `json:"estimatedBeneficiaries,omitempty"`
	ActualBeneficiaries    *int   `json:"actualBeneficiaries,omitempty"`
	Female                 *int   `json:"female,omitempty"`
	NTPNumber              string `json:"ntpNumber,omitempty"`
	NTPDate                string `json:"ntpDate,omitempty"`
	Period                 string `json:"period,omitempty"`
	PreSubmitted           string `json:"preSubmitted,omitempty"`
	PostSubmitted          string `json:"postSubmitted,omitempty"`
	Expanded               bool   `json:"expanded"`
}
