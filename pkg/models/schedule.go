package models

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
)

// ErrInvalidSchedule is returned when a schedule expression fails validation.
var ErrInvalidSchedule = errors.New("invalid schedule expression")

// ValidateSchedule checks a workflow's cron expression using the standard
// 5-field format (minute hour day month weekday). An empty expression is
// valid and means the workflow is triggered manually.
func ValidateSchedule(expr string) error {
	if expr == "" {
		return nil
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(expr); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	return nil
}
