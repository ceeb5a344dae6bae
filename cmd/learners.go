package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/theirongolddev/sims/internal/cli"
	"github.com/theirongolddev/sims/internal/model"
	"github.com/theirongolddev/sims/internal/pipeline"
	"github.com/theirongolddev/sims/internal/sdapi"

	"github.com/spf13/cobra"
)

var (
	flagList      bool
	flagFillDraft bool
)

var learnersCmd = &cobra.Command{
	Use:   "learners",
	Short: "Learner and teacher statistics for the school",
	RunE:  runLearners,
}

func init() {
	learnersCmd.Flags().BoolVar(&flagList, "list", false, "Also list every learner")
	learnersCmd.Flags().BoolVar(&flagFillDraft, "fill-draft", false, "Copy the counts into the draft's demographics")
	rootCmd.AddCommand(learnersCmd)
}

// roster is the school's learner and teacher data. Fetches are independent;
// partial results are kept and the first error is reported.
type roster struct {
	Learners []model.Learner
	Teachers []model.Teacher
	Server   *model.GenderStats
	Err      error
}

func fetchRoster(ctx context.Context, c *sdapi.Client, code string) roster {
	var r roster
	var errs []error

	learners, err := c.FetchLearners(ctx, code)
	if err == nil {
		r.Learners = learners
	}
	errs = append(errs, err)

	teachers, err := c.FetchTeachers(ctx, code)
	if err == nil {
		r.Teachers = teachers
	}
	errs = append(errs, err)

	stats, err := c.FetchGenderStats(ctx, code)
	if err == nil {
		r.Server = stats
	}
	errs = append(errs, err)

	for _, err := range errs {
		if err != nil {
			r.Err = err
			break
		}
	}
	return r
}

func runLearners(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	code, err := schoolCode(cfg)
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	progress("Fetching roster for %s...", code)
	ctx, cancel := apiContext(cfg)
	defer cancel()
	r := fetchRoster(ctx, client, code)
	if r.Err != nil {
		if r.Learners == nil && r.Teachers == nil && r.Server == nil {
			return fmt.Errorf("fetching roster: %w", r.Err)
		}
		progress("Partial data: %v", r.Err)
	}

	learners := pipeline.AggregateLearners(r.Learners)
	teachers := pipeline.AggregateTeachers(r.Teachers)

	rows := [][]string{
		statsRow("Learners", learners),
		statsRow("Teachers", teachers),
	}
	if r.Server != nil {
		rows = append(rows, []string{cli.SeparatorRow}, statsRow("Learners (server)", *r.Server))
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle("ROSTER  " + code))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Gender and disability",
		Headers: []string{"", "Total", "Male", "Female", "Female %", "Disability"},
		Rows:    rows,
	}))
	fmt.Println()

	if flagList && len(r.Learners) > 0 {
		var lrows [][]string
		for _, l := range r.Learners {
			lrows = append(lrows, []string{l.Name, l.Gender, l.Class, strconv.Itoa(l.Age), cli.FormatBool(l.Disability)})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Learners",
			Headers: []string{"Name", "Gender", "Class", "Age", "Disability"},
			Rows:    lrows,
		}))
		fmt.Println()
	}

	if flagFillDraft {
		return fillDemographics(learners, teachers)
	}
	return nil
}

func statsRow(label string, s model.GenderStats) []string {
	return []string{
		label,
		cli.FormatNumber(int64(s.Total)),
		cli.FormatNumber(int64(s.Male)),
		cli.FormatNumber(int64(s.Female)),
		cli.FormatPercent(pipeline.FemaleShare(s)*100, s.Total > 0),
		cli.FormatNumber(int64(s.WithDisability)),
	}
}

// fillDemographics copies roster counts into the draft's school details.
func fillDemographics(learners, teachers model.GenderStats) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	meta := ws.draft.Snapshot().Meta
	d := model.Demographics{}
	if meta.Demographics != nil {
		d = *meta.Demographics
	}
	d.Learners = learners.Total
	d.Male = learners.Male
	d.Female = learners.Female
	d.WithDisability = learners.WithDisability
	d.Teachers = teachers.Total
	meta.Demographics = &d
	ws.draft.SetMeta(meta)
	if err := ws.save(); err != nil {
		return err
	}
	fmt.Println("  Draft demographics updated from the roster.")
	return nil
}
