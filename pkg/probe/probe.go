package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"xpcgo/pkg/sim"
)

// CheckFunc is a function that performs a startup check.
// It returns nil if the check passes, or an error if it fails.
type CheckFunc func(ctx context.Context) error

// Probe represents a single startup check.
type Probe struct {
	Name     string
	Check    CheckFunc
	Critical bool // If true, a failure here should prevent application startup.
}

// Result holds the outcome of a single probe.
type Result struct {
	Probe    Probe
	Error    error
	Duration time.Duration
}

// Run executes a list of probes and returns their results.
// Each check gets its own timeout so a dead simulator can't hang startup.
func Run(ctx context.Context, probes []Probe) []Result {
	results := make([]Result, len(probes))

	for i, p := range probes {
		start := time.Now()

		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := p.Check(checkCtx)
		cancel()

		results[i] = Result{
			Probe:    p,
			Error:    err,
			Duration: time.Since(start),
		}
	}

	return results
}

// AnalyzeResults aggregates the results and returns a combined error if
// critical probes failed. Results are logged either way.
func AnalyzeResults(results []Result) error {
	var criticalErrors []error

	slog.Info("Startup Checks Summary")

	for _, r := range results {
		status := "PASS"
		if r.Error != nil {
			status = "FAIL"
		}

		msg := fmt.Sprintf("[%s] %-20s (%v)", status, r.Probe.Name, r.Duration.Round(time.Millisecond))

		if r.Error != nil {
			slog.Error(msg, "error", r.Error)
			if r.Probe.Critical {
				criticalErrors = append(criticalErrors, fmt.Errorf("%s: %w", r.Probe.Name, r.Error))
			}
		} else {
			slog.Info(msg)
		}
	}

	if len(criticalErrors) > 0 {
		return errors.Join(criticalErrors...)
	}

	return nil
}

// Simulator returns a probe that verifies the plugin answers a GETD round
// trip for the given dataref. The client's own receive timeout applies; the
// probe context only bounds scheduling.
func Simulator(client sim.Client, dataref string, critical bool) Probe {
	return Probe{
		Name:     "simulator",
		Critical: critical,
		Check: func(_ context.Context) error {
			_, err := client.GetDataref(dataref)
			return err
		},
	}
}
