package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/sims/internal/model"
	"github.com/theirongolddev/sims/internal/validate"

	"github.com/spf13/cobra"
)

var (
	flagComments       string
	flagEnrollLearners int
	flagEnrollYear     int
)

var enrollmentCmd = &cobra.Command{
	Use:   "enrollment",
	Short: "School enrollment records",
}

var enrollmentCompleteCmd = &cobra.Command{
	Use:   "complete [id-or-code]",
	Short: "Mark this year's enrollment as complete",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEnrollmentComplete,
}

func init() {
	enrollmentCompleteCmd.Flags().StringVar(&flagComments, "comments", "", "Comments (required)")
	enrollmentCompleteCmd.Flags().IntVar(&flagEnrollLearners, "learners", 0, "Learners enrolled")
	enrollmentCompleteCmd.Flags().IntVar(&flagEnrollYear, "enrollment-year", 0, "Enrollment year (default current year)")
	enrollmentCmd.AddCommand(enrollmentCompleteCmd)
	rootCmd.AddCommand(enrollmentCmd)
}

func runEnrollmentComplete(_ *cobra.Command, args []string) error {
	cfg := loadConfig()
	ident, err := schoolIdentifier(cfg, args)
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	year := flagEnrollYear
	if year == 0 {
		year = time.Now().Year()
	}
	e := model.Enrollment{
		Year:        year,
		Comments:    flagComments,
		Learners:    flagEnrollLearners,
		CompletedAt: time.Now().UTC(),
	}

	// Validate before any request is made.
	if err := validate.Struct(e); err != nil {
		return err
	}

	s, err := fetchSchool(cfg, client, ident)
	if err != nil {
		return err
	}
	ctx, cancel := apiContext(cfg)
	defer cancel()
	if err := client.CompleteEnrollment(ctx, s.ID, e); err != nil {
		return fmt.Errorf("completing enrollment: %w", err)
	}
	fmt.Printf("  Enrollment for %d marked complete for %s.\n", year, s.Name)
	return nil
}
