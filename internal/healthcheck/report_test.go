package healthcheck

import (
	"context"
	"testing"
)

type testChecker struct {
	items []CheckResult
}

func (c *testChecker) ListChecks(ctx context.Context) []CheckResult {
	return c.items
}

func TestRunnerRun(t *testing.T) {
	t.Parallel()

	runner := NewRunner(
		&testChecker{items: []CheckResult{{ID: "a", Status: StatusOK}}},
		nil,
		&testChecker{items: []CheckResult{{ID: "b", Status: StatusWarn}, {ID: "c", Status: StatusOK}}},
	)

	report := runner.Run(context.Background())
	if len(report.Checks) != 3 {
		t.Fatalf("expected 3 checks, got %d", len(report.Checks))
	}
	if report.Checks[0].ID != "a" || report.Checks[2].ID != "c" {
		t.Fatalf("checks should keep checker order: %#v", report.Checks)
	}
	if report.Status != StatusWarn {
		t.Fatalf("unexpected status: %s", report.Status)
	}
}

func TestRunnerWorstStatusWins(t *testing.T) {
	t.Parallel()

	cases := []struct {
		statuses []string
		want     string
	}{
		{statuses: nil, want: StatusOK},
		{statuses: []string{StatusOK, StatusOK}, want: StatusOK},
		{statuses: []string{StatusUnknown}, want: StatusWarn},
		{statuses: []string{StatusError, StatusWarn}, want: StatusError},
		{statuses: []string{StatusWarn, StatusError, StatusOK}, want: StatusError},
	}
	for _, tc := range cases {
		items := make([]CheckResult, 0, len(tc.statuses))
		for _, s := range tc.statuses {
			items = append(items, CheckResult{Status: s})
		}
		got := NewRunner(&testChecker{items: items}).Run(context.Background()).Status
		if got != tc.want {
			t.Fatalf("statuses=%v want=%s got=%s", tc.statuses, tc.want, got)
		}
	}
}

func TestRunnerNil(t *testing.T) {
	t.Parallel()

	var runner *Runner
	report := runner.Run(context.Background())
	if report.Status != StatusOK || len(report.Checks) != 0 {
		t.Fatalf("unexpected report: %#v", report)
	}
}
