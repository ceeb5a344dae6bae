package pipeline

import (
	"strings"

	"github.com/theirongolddev/sims/internal/model"
)

// normalizeGender maps the roster's free-form gender values to "M", "F" or "".
func normalizeGender(g string) string {
	switch strings.ToLower(strings.TrimSpace(g)) {
	case "m", "male", "boy":
		return "M"
	case "f", "female", "girl":
		return "F"
	default:
		return ""
	}
}

// AggregateLearners counts learners by gender and disability.
// Rows with an unrecognized gender still count toward Total.
func AggregateLearners(learners []model.Learner) model.GenderStats {
	var s model.GenderStats
	for _, l := range learners {
		tally(&s, l.Gender, l.Disability)
	}
	return s
}

// AggregateTeachers counts teachers by gender and disability.
func AggregateTeachers(teachers []model.Teacher) model.GenderStats {
	var s model.GenderStats
	for _, t := range teachers {
		tally(&s, t.Gender, t.Disability)
	}
	return s
}

func tally(s *model.GenderStats, gender string, disabled bool) {
	s.Total++
	switch normalizeGender(gender) {
	case "M":
		s.Male++
	case "F":
		s.Female++
	}
	if disabled {
		s.WithDisability++
	}
}

// FemaleShare returns the fraction (0-1) of a roster that is female.
func FemaleShare(s model.GenderStats) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Female) / float64(s.Total)
}
