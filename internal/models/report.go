package models

import (
	"fmt"
	"time"
)

// Status is the outcome of a single check.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusSkip Status = "skip"
)

func ParseStatus(s string) (Status, error) {
	switch s {
	case "pass":
		return StatusPass, nil
	case "fail":
		return StatusFail, nil
	case "skip":
		return StatusSkip, nil
	default:
		return "", fmt.Errorf("invalid check status: %s", s)
	}
}

// Run is one execution of the validation suite against a target.
type Run struct {
	ID         string
	Target     string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// CheckResult is the recorded outcome of one check within a run.
type CheckResult struct {
	RunID    string
	Name     string
	Category string
	Status   Status
	Detail   string
	Elapsed  time.Duration
}
