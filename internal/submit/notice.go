package submit

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/sims/internal/review"
	"github.com/theirongolddev/sims/internal/sdapi"
	"github.com/theirongolddev/sims/internal/validate"
)

// Notice is a user-facing message for a submission outcome.
type Notice struct {
	Title       string
	Description string
	// Long notices stay on screen until dismissed.
	Long bool
}

// NoticeFor maps an error from Submit (or the gate) to a message. A nil
// error yields the success notice.
func NoticeFor(res Result, err error) Notice {
	if err == nil {
		if res.Created {
			return Notice{Title: "Budget submitted", Description: fmt.Sprintf("The %d budget was created.", res.Year)}
		}
		return Notice{Title: "Budget updated", Description: "Your changes were saved."}
	}

	var exists *ExistsError
	var verrs validate.Errors
	switch {
	case errors.As(err, &exists):
		return Notice{
			Title: "Budget already exists",
			Description: fmt.Sprintf("A budget for %d has already been created for this school. "+
				"Open it in edit mode to make changes instead of creating a new one.", exists.Year),
			Long: true,
		}
	case errors.As(err, &verrs):
		return Notice{Title: "Please fix the highlighted fields", Description: verrs.Error(), Long: true}
	case errors.Is(err, ErrExistenceCheck):
		return Notice{Title: "Could not check for an existing budget", Description: "Please try again later."}
	case errors.Is(err, ErrNoBudgetID):
		return Notice{Title: "Nothing to update", Description: "Load a budget for editing first."}
	case errors.Is(err, review.ErrSubmitDisabled):
		return Notice{Title: "Submission disabled", Description: "Review every section and keep the budget within revenue."}
	case errors.Is(err, review.ErrInFlight):
		return Notice{Title: "Submission in progress", Description: "Please wait for the current submission to finish."}
	case errors.Is(err, sdapi.ErrUnauthorized):
		return Notice{Title: "Not authorized", Description: "Check the API token in your configuration."}
	}
	return Notice{Title: "Failed to save budget", Description: "Something went wrong. Please try again."}
}
