// Package wire converts draft trees to and from the budget API's payload schema.
package wire

// Payload is the body of POST budget / PATCH budget/{id} and the document
// returned by GET budget/code/{code}/{year}.
type Payload struct {
	ID         string          `json:"_id,omitempty"`
	SchoolCode string          `json:"code" validate:"required"`
	Year       int             `json:"year" validate:"required,gte=2000"`
	Meta       Meta            `json:"meta"`
	Revenues   []RevenueRecord `json:"revenues" validate:"dive"`
	Budget     []BudgetGroup   `json:"budget" validate:"dive"`
}

// RevenueRecord is one flattened revenue line. Type and Group both carry the
// group name.
type RevenueRecord struct {
	Type        string  `json:"type" validate:"required,budget_group"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount" validate:"gte=0"`
	SourceCode  string  `json:"sourceCode"`
	Group       string  `json:"group"`
}

// BudgetGroup is the nested expenditure group on the wire.
type BudgetGroup struct {
	Group      string           `json:"group" validate:"required,budget_group"`
	Categories []BudgetCategory `json:"categories" validate:"dive"`
}

// BudgetCategory is the nested expenditure category on the wire.
type BudgetCategory struct {
	Category     string       `json:"category"`
	CategoryCode string       `json:"categoryCode"`
	Items        []BudgetLine `json:"items" validate:"dive"`
}

// BudgetLine is one expenditure line with needed items collapsed to names.
type BudgetLine struct {
	BudgetCode                 string   `json:"budgetCode"`
	Description                string   `json:"description"`
	NeededItems                []string `json:"neededItems"`
	Units                      float64  `json:"units" validate:"gte=0"`
	UnitCostSSP                float64  `json:"unitCostSSP" validate:"gte=0"`
	TotalCostSSP               float64  `json:"totalCostSSP" validate:"gte=0"`
	FundingSource              string   `json:"fundingSource"`
	MonthActivityToBeCompleted string   `json:"monthActivityToBeCompleted"`
}

// Meta is the school meta-information on the wire. Every field is always
// present; nothing is sent as null.
type Meta struct {
	SchoolName   string       `json:"schoolName"`
	SchoolCode   string       `json:"schoolCode"`
	County       string       `json:"county"`
	Payam        string       `json:"payam"`
	Demographics Demographics `json:"demographics"`
	Governance   Governance   `json:"governance"`
	Committee    Committee    `json:"committee"`
	Preparation  Preparation  `json:"preparation"`
}

// Demographics mirrors model.Demographics.
type Demographics struct {
	Learners       int `json:"learners"`
	Male           int `json:"male"`
	Female         int `json:"female"`
	WithDisability int `json:"withDisability"`
	Teachers       int `json:"teachers"`
	Classrooms     int `json:"classrooms"`
}

// Governance mirrors model.Governance.
type Governance struct {
	HasSMC           bool   `json:"hasSMC"`
	HasPTA           bool   `json:"hasPTA"`
	HasBankAccount   bool   `json:"hasBankAccount"`
	BankName         string `json:"bankName"`
	SignatoriesCount int    `json:"signatoriesCount"`
}

// Committee mirrors model.Committee with a non-null member list.
type Committee struct {
	Chairperson  string            `json:"chairperson"`
	MeetingsHeld int               `json:"meetingsHeld"`
	Members      []CommitteeMember `json:"members"`
}

// CommitteeMember mirrors model.CommitteeMember.
type CommitteeMember struct {
	Name   string `json:"name"`
	Role   string `json:"role"`
	Gender string `json:"gender"`
}

// Preparation mirrors model.Preparation with a non-null participant list.
type Preparation struct {
	PreparedBy   string   `json:"preparedBy"`
	Position     string   `json:"position"`
	Phone        string   `json:"phone"`
	PreparedOn   string   `json:"preparedOn"`
	Approved     bool     `json:"approved"`
	ApprovedBy   string   `json:"approvedBy"`
	Participants []string `json:"participants"`
}
