// Package schedule parses planned-restart schedules.
package schedule

import (
	"errors"
	"fmt"
	"strings"

	robcron "github.com/robfig/cron/v3"
)

// Parse accepts a standard 5-field cron expression or a descriptor such as
// @daily or @every 1h and returns the schedule it describes.
func Parse(expr string) (robcron.Schedule, error) {
	text := strings.TrimSpace(expr)
	if text == "" {
		return nil, errors.New("schedule is empty")
	}
	parser := robcron.NewParser(robcron.Minute | robcron.Hour | robcron.Dom | robcron.Month | robcron.Dow | robcron.Descriptor)
	sched, err := parser.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse cron expr: %w", err)
	}
	return sched, nil
}
