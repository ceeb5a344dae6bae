package cmd

import (
	"strings"

	"github.com/theirongolddev/sims/internal/model"

	"github.com/spf13/cobra"
)

var metaFlags struct {
	name, county, payam string

	learners, male, female, disability, teachers, classrooms int

	smc, pta, bank bool
	bankName       string
	signatories    int

	chair    string
	meetings int
	members  []string

	preparedBy, position, phone, preparedOn, approvedBy string
	participants                                        []string
}

func addMetaFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringVar(&metaFlags.name, "name", "", "School name")
	f.StringVar(&metaFlags.county, "county", "", "County")
	f.StringVar(&metaFlags.payam, "payam", "", "Payam")

	f.IntVar(&metaFlags.learners, "learners", 0, "Number of learners")
	f.IntVar(&metaFlags.male, "male", 0, "Male learners")
	f.IntVar(&metaFlags.female, "female", 0, "Female learners")
	f.IntVar(&metaFlags.disability, "with-disability", 0, "Learners with a disability")
	f.IntVar(&metaFlags.teachers, "teachers", 0, "Number of teachers")
	f.IntVar(&metaFlags.classrooms, "classrooms", 0, "Number of classrooms")

	f.BoolVar(&metaFlags.smc, "smc", false, "School has a management committee")
	f.BoolVar(&metaFlags.pta, "pta", false, "School has a parent-teacher association")
	f.BoolVar(&metaFlags.bank, "bank-account", false, "School has a bank account")
	f.StringVar(&metaFlags.bankName, "bank-name", "", "Bank name")
	f.IntVar(&metaFlags.signatories, "signatories", 0, "Number of account signatories")

	f.StringVar(&metaFlags.chair, "chair", "", "Budget committee chairperson")
	f.IntVar(&metaFlags.meetings, "meetings", 0, "Committee meetings held")
	f.StringArrayVar(&metaFlags.members, "member", nil, "Committee member as name:role:gender (repeatable)")

	f.StringVar(&metaFlags.preparedBy, "prepared-by", "", "Who prepared the budget")
	f.StringVar(&metaFlags.position, "position", "", "Preparer's position")
	f.StringVar(&metaFlags.phone, "phone", "", "Preparer's phone")
	f.StringVar(&metaFlags.preparedOn, "prepared-on", "", "Preparation date (YYYY-MM-DD)")
	f.StringVar(&metaFlags.approvedBy, "approved-by", "", "Who approved the budget")
	f.StringArrayVar(&metaFlags.participants, "participant", nil, "Participant in preparation (repeatable)")
}

// applyMetaFlags copies only the flags that were set into m.
func applyMetaFlags(c *cobra.Command, m *model.MetaInfo) {
	set := c.Flags().Changed

	if set("name") {
		m.SchoolName = metaFlags.name
	}
	if set("county") {
		m.County = metaFlags.county
	}
	if set("payam") {
		m.Payam = metaFlags.payam
	}

	if set("learners") || set("male") || set("female") || set("with-disability") || set("teachers") || set("classrooms") {
		if m.Demographics == nil {
			m.Demographics = &model.Demographics{}
		}
		d := m.Demographics
		if set("learners") {
			d.Learners = metaFlags.learners
		}
		if set("male") {
			d.Male = metaFlags.male
		}
		if set("female") {
			d.Female = metaFlags.female
		}
		if set("with-disability") {
			d.WithDisability = metaFlags.disability
		}
		if set("teachers") {
			d.Teachers = metaFlags.teachers
		}
		if set("classrooms") {
			d.Classrooms = metaFlags.classrooms
		}
	}

	if set("smc") || set("pta") || set("bank-account") || set("bank-name") || set("signatories") {
		if m.Governance == nil {
			m.Governance = &model.Governance{}
		}
		g := m.Governance
		if set("smc") {
			g.HasSMC = metaFlags.smc
		}
		if set("pta") {
			g.HasPTA = metaFlags.pta
		}
		if set("bank-account") {
			g.HasBankAccount = metaFlags.bank
		}
		if set("bank-name") {
			g.BankName = metaFlags.bankName
		}
		if set("signatories") {
			g.SignatoriesCount = metaFlags.signatories
		}
	}

	if set("chair") || set("meetings") || set("member") {
		if m.Committee == nil {
			m.Committee = &model.Committee{}
		}
		cm := m.Committee
		if set("chair") {
			cm.Chairperson = metaFlags.chair
		}
		if set("meetings") {
			cm.MeetingsHeld = metaFlags.meetings
		}
		if set("member") {
			cm.Members = parseMembers(metaFlags.members)
		}
	}

	if set("prepared-by") || set("position") || set("phone") || set("prepared-on") || set("approved-by") || set("participant") {
		if m.Preparation == nil {
			m.Preparation = &model.Preparation{}
		}
		p := m.Preparation
		if set("prepared-by") {
			p.PreparedBy = metaFlags.preparedBy
		}
		if set("position") {
			p.Position = metaFlags.position
		}
		if set("phone") {
			p.Phone = metaFlags.phone
		}
		if set("prepared-on") {
			p.PreparedOn = metaFlags.preparedOn
		}
		if set("approved-by") {
			p.ApprovedBy = metaFlags.approvedBy
			p.Approved = metaFlags.approvedBy != ""
		}
		if set("participant") {
			p.Participants = metaFlags.participants
		}
	}
}

// parseMembers reads "name:role:gender" entries; role and gender are optional.
func parseMembers(specs []string) []model.CommitteeMember {
	out := make([]model.CommitteeMember, 0, len(specs))
	for _, s := range specs {
		parts := strings.SplitN(s, ":", 3)
		m := model.CommitteeMember{Name: strings.TrimSpace(parts[0])}
		if len(parts) > 1 {
			m.Role = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			m.Gender = strings.ToUpper(strings.TrimSpace(parts[2]))
		}
		out = append(out, m)
	}
	return out
}
