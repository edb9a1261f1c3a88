package probe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xpcgo/pkg/sim/mockplane"
	"xpcgo/pkg/sim/xplane"
)

func TestRunCollectsResults(t *testing.T) {
	boom := errors.New("boom")
	probes := []Probe{
		{Name: "ok", Check: func(ctx context.Context) error { return nil }},
		{Name: "fails", Check: func(ctx context.Context) error { return boom }},
	}

	results := Run(context.Background(), probes)
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Error)
	assert.ErrorIs(t, results[1].Error, boom)
	assert.GreaterOrEqual(t, results[0].Duration, time.Duration(0))
}

func TestAnalyzeResults(t *testing.T) {
	boom := errors.New("boom")

	// Non-critical failures don't block startup.
	err := AnalyzeResults([]Result{
		{Probe: Probe{Name: "soft"}, Error: boom},
	})
	assert.NoError(t, err)

	// Critical failures do.
	err = AnalyzeResults([]Result{
		{Probe: Probe{Name: "hard", Critical: true}, Error: boom},
	})
	assert.ErrorIs(t, err, boom)
}

func TestRunHonorsCheckContext(t *testing.T) {
	probes := []Probe{{
		Name: "slow",
		Check: func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(10 * time.Second):
				return nil
			}
		},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := Run(ctx, probes)
	require.Len(t, results, 1)
	assert.Error(t, results[0].Error)
}

func TestSimulatorProbe(t *testing.T) {
	srv, err := mockplane.NewServer("127.0.0.1:0")
	require.NoError(t, err)
	defer srv.Close()
	srv.SetDataref("sim/flightmodel/position/latitude", 51.5)

	client, err := xplane.NewClient("127.0.0.1", srv.Addr().Port, 0, time.Second)
	require.NoError(t, err)
	defer client.Close()

	p := Simulator(client, "sim/flightmodel/position/latitude", true)
	results := Run(context.Background(), []Probe{p})
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Error)
	assert.NoError(t, AnalyzeResults(results))
}
