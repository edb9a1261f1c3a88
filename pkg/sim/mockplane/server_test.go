package mockplane

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xpcgo/pkg/sim"
	"xpcgo/pkg/sim/xplane"
)

func newPair(t *testing.T) (*Server, sim.Client) {
	t.Helper()

	srv, err := NewServer("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	client, err := xplane.NewClient("127.0.0.1", srv.Addr().Port, 0, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return srv, client
}

func TestPauseToggle(t *testing.T) {
	srv, client := newPair(t)

	require.NoError(t, client.PauseSim(sim.PauseOn))
	assert.Eventually(t, srv.Paused, time.Second, 10*time.Millisecond)

	require.NoError(t, client.PauseSim(sim.PauseToggle))
	assert.Eventually(t, func() bool { return !srv.Paused() }, time.Second, 10*time.Millisecond)
}

func TestPositionSentinelLeavesFieldsAlone(t *testing.T) {
	srv, client := newPair(t)

	require.NoError(t, client.SetPosition(0, sim.Position{
		Latitude:  sim.Float(51.5),
		Longitude: sim.Float(-0.12),
		Altitude:  sim.Float(300),
	}))
	assert.Eventually(t, func() bool {
		return srv.Position(0)[0] == 51.5
	}, time.Second, 10*time.Millisecond)

	// Update only the altitude; lat/lon arrive as the sentinel and must
	// keep their previous values.
	require.NoError(t, client.SetPosition(0, sim.Position{Altitude: sim.Float(450)}))
	assert.Eventually(t, func() bool {
		return srv.Position(0)[2] == 450
	}, time.Second, 10*time.Millisecond)

	pos := srv.Position(0)
	assert.Equal(t, float32(51.5), pos[0])
	assert.Equal(t, float32(-0.12), pos[1])
}

func TestControls(t *testing.T) {
	srv, client := newPair(t)

	require.NoError(t, client.SetControls(1, sim.Controls{
		Throttle:   sim.Float(0.75),
		Gear:       sim.GearPos(1),
		Speedbrake: sim.Float(-0.5),
	}))

	assert.Eventually(t, func() bool {
		return srv.Controls(1)[3] == 0.75
	}, time.Second, 10*time.Millisecond)

	ctrl := srv.Controls(1)
	assert.Equal(t, float32(1), ctrl[4], "gear")
	assert.Equal(t, float32(-0.5), ctrl[6], "speedbrake")
}

func TestDataRows(t *testing.T) {
	srv, client := newPair(t)

	rows := []sim.DataRow{
		{Index: 0, Values: [8]float32{1, 2, 3, 4, 5, 6, 7, 8}},
		{Index: 25, Values: [8]float32{-1, -2, -3, -4, -5, -6, -7, -8}},
	}
	require.NoError(t, client.SendData(rows))

	assert.Eventually(t, func() bool {
		_, ok := srv.DataRow(25)
		return ok
	}, time.Second, 10*time.Millisecond)

	got, ok := srv.DataRow(0)
	require.True(t, ok)
	assert.Equal(t, rows[0].Values, got)
}

func TestText(t *testing.T) {
	srv, client := newPair(t)

	require.NoError(t, client.SendText("Cleared for takeoff", -1, -1))

	assert.Eventually(t, func() bool {
		texts := srv.Texts()
		return len(texts) == 1 && texts[0] == "Cleared for takeoff"
	}, time.Second, 10*time.Millisecond)
}

func TestWaypointLifecycle(t *testing.T) {
	srv, client := newPair(t)

	points := []sim.Waypoint{
		{Lat: 37.524, Lon: -122.06899, Alt: 2500},
		{Lat: 37.533, Lon: -122.04, Alt: 2500},
	}
	require.NoError(t, client.SendWaypoints(sim.WaypointsAdd, points))
	assert.Eventually(t, func() bool {
		return len(srv.Waypoints()) == 2
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, client.SendWaypoints(sim.WaypointsRemove, points[:1]))
	assert.Eventually(t, func() bool {
		wps := srv.Waypoints()
		return len(wps) == 1 && wps[0] == points[1]
	}, time.Second, 10*time.Millisecond)

	// Clear wipes the list regardless of supplied points.
	require.NoError(t, client.SendWaypoints(sim.WaypointsClear, nil))
	assert.Eventually(t, func() bool {
		return len(srv.Waypoints()) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestRuntDatagramIgnored(t *testing.T) {
	srv, client := newPair(t)

	// A runt datagram must not kill the serve loop.
	raw, err := net.Dial("udp4", srv.Addr().String())
	require.NoError(t, err)
	defer raw.Close()
	_, err = raw.Write([]byte{0x01, 0x02})
	require.NoError(t, err)

	require.NoError(t, client.SendText("still alive", -1, -1))
	assert.Eventually(t, func() bool {
		return len(srv.Texts()) == 1
	}, time.Second, 10*time.Millisecond)
}
