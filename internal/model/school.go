package model

import "time"

// MetaInfo is the school meta-information section of a budget.
// Sub-objects are nil until the corresponding form section is filled in.
type MetaInfo struct {
	SchoolName   string        `json:"schoolName"`
	SchoolCode   string        `json:"schoolCode"`
	County       string        `json:"county"`
	Payam        string        `json:"payam"`
	Demographics *Demographics `json:"demographics,omitempty"`
	Governance   *Governance   `json:"governance,omitempty"`
	Committee    *Committee    `json:"committee,omitempty"`
	Preparation  *Preparation  `json:"preparation,omitempty"`
}

// Demographics holds headcounts reported with the budget.
type Demographics struct {
	Learners       int `json:"learners" validate:"gte=0"`
	Male           int `json:"male" validate:"gte=0"`
	Female         int `json:"female" validate:"gte=0"`
	WithDisability int `json:"withDisability" validate:"gte=0"`
	Teachers       int `json:"teachers" validate:"gte=0"`
	Classrooms     int `json:"classrooms" validate:"gte=0"`
}

// Governance records the school's oversight bodies and banking.
type Governance struct {
	HasSMC           bool   `json:"hasSMC"`
	HasPTA           bool   `json:"hasPTA"`
	HasBankAccount   bool   `json:"hasBankAccount"`
	BankName         string `json:"bankName"`
	SignatoriesCount int    `json:"signatoriesCount" validate:"gte=0"`
}

// Committee describes the budget committee.
type Committee struct {
	Chairperson  string            `json:"chairperson"`
	MeetingsHeld int               `json:"meetingsHeld" validate:"gte=0"`
	Members      []CommitteeMember `json:"members" validate:"dive"`
}

// CommitteeMember is one committee seat.
type CommitteeMember struct {
	Name   string `json:"name" validate:"required"`
	Role   string `json:"role"`
	Gender string `json:"gender" validate:"omitempty,oneof=M F"`
}

// Preparation records who prepared and approved the budget.
type Preparation struct {
	PreparedBy   string   `json:"preparedBy"`
	Position     string   `json:"position"`
	Phone        string   `json:"phone"`
	PreparedOn   string   `json:"preparedOn"`
	Approved     bool     `json:"approved"`
	ApprovedBy   string   `json:"approvedBy"`
	Participants []string `json:"participants"`
}

// School is the school profile document of the school-data service.
type School struct {
	ID         string         `json:"_id"`
	Code       string         `json:"code"`
	Name       string         `json:"name"`
	County     string         `json:"county"`
	Payam      string         `json:"payam"`
	Ownership  string         `json:"ownership,omitempty"`
	Facilities map[string]int `json:"facilities,omitempty"`
	Location   *Location      `json:"location,omitempty"`
	Programs   []string       `json:"programs,omitempty"`
	Subjects   []string       `json:"subjects,omitempty"`
	Enrollment *Enrollment    `json:"enrollment,omitempty"`
}

// Location holds coordinates and connectivity of a school.
type Location struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Connectivity string  `json:"connectivity,omitempty"`
	HasPower     bool    `json:"hasPower"`
}

// Enrollment is the enrollment-completion record for one year.
type Enrollment struct {
	Year        int       `json:"year" validate:"required,gte=2000"`
	Complete    bool      `json:"isComplete"`
	Comments    string    `json:"comments" validate:"required"`
	Learners    int       `json:"learners" validate:"gte=0"`
	CompletedAt time.Time `json:"completedAt,omitempty"`
}

// SchoolPatch is a partial update of school profile sub-documents.
// Nil fields are left untouched by the server.
type SchoolPatch struct {
	Facilities map[string]int `json:"facilities,omitempty"`
	Location   *Location      `json:"location,omitempty"`
	Programs   []string       `json:"programs,omitempty"`
	Subjects   []string       `json:"subjects,omitempty"`
}

// IsEmpty reports whether the patch would change nothing.
func (p SchoolPatch) IsEmpty() bool {
	return p.Facilities == nil && p.Location == nil && p.Programs == nil && p.Subjects == nil
}

// Learner is one row of the learner roster.
type Learner struct {
	Name       string `json:"name"`
	Gender     string `json:"gender"`
	Class      string `json:"class"`
	Age        int    `json:"age"`
	Disability bool   `json:"isWithDisability"`
}

// Teacher is one row of the teacher roster.
type Teacher struct {
	Name          string `json:"name"`
	Gender        string `json:"gender"`
	Position      string `json:"position"`
	Qualification string `json:"qualification"`
	Disability    bool   `json:"isWithDisability"`
}
