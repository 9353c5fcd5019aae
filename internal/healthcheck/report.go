package healthcheck

import "context"

// Report is the aggregated result of all checkers.
type Report struct {
	Status string        `json:"status"`
	Checks []CheckResult `json:"checks"`
}

// Runner evaluates a fixed set of checkers in order.
type Runner struct {
	checkers []Checker
}

func NewRunner(checkers ...Checker) *Runner {
	filtered := make([]Checker, 0, len(checkers))
	for _, c := range checkers {
		if c != nil {
			filtered = append(filtered, c)
		}
	}
	return &Runner{checkers: filtered}
}

// Run collects every check. The report status is the worst individual status;
// unknown counts as a warning.
func (r *Runner) Run(ctx context.Context) Report {
	report := Report{Status: StatusOK, Checks: []CheckResult{}}
	if r == nil {
		return report
	}
	for _, c := range r.checkers {
		for _, item := range c.ListChecks(ctx) {
			report.Checks = append(report.Checks, item)
			report.Status = worse(report.Status, item.Status)
		}
	}
	return report
}

func worse(a, b string) string {
	if rank(b) > rank(a) {
		if b == StatusUnknown {
			return StatusWarn
		}
		return b
	}
	return a
}

func rank(status string) int {
	switch status {
	case StatusOK:
		return 0
	case StatusWarn, StatusUnknown:
		return 1
	case StatusError:
		return 2
	default:
		return 1
	}
}
