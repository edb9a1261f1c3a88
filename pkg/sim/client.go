package sim

import (
	"errors"
)

var (
	// ErrTimeout is returned when no response arrives within the configured
	// receive window. It is distinct from ErrMalformedResponse: a timeout
	// means nothing answered, a malformed response means something did.
	ErrTimeout = errors.New("receive timed out")

	// ErrMalformedResponse is returned when a response datagram arrives but
	// cannot be parsed.
	ErrMalformedResponse = errors.New("malformed response")
)

// ValidationError reports an argument that violates a protocol constraint.
// It is always raised before any bytes are sent.
type ValidationError struct {
	Op     string // protocol operation, e.g. "CTRL"
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Op + ": " + e.Reason
}

// Client defines the interface for simulator interaction.
//
// A Client is not safe for concurrent use; each call blocks until the
// datagram is sent and, for query operations, until a response arrives or
// the receive timeout elapses. Serialize externally if needed.
type Client interface {
	// SetConnectionPort asks the plugin to redirect traffic to a new port.
	SetConnectionPort(port int) error
	// PauseSim pauses, resumes, or toggles the physics simulation.
	PauseSim(mode PauseMode) error
	// SendData writes one or more aircraft data rows.
	SendData(rows []DataRow) error
	// ReadData reads aircraft data rows. A nil slice with a nil error means
	// no data has arrived yet.
	ReadData() ([]DataRow, error)
	// SetPosition sets position state on the given aircraft (0 = player).
	SetPosition(ac int, pos Position) error
	// SetControls sets control surface state on the given aircraft.
	SetControls(ac int, ctrl Controls) error
	// SetDataref writes values to a named dataref.
	SetDataref(name string, values []float32) error
	// GetDataref reads a single dataref.
	GetDataref(name string) ([]float32, error)
	// GetDatarefs reads multiple datarefs in one round trip. Results are in
	// request order.
	GetDatarefs(names []string) ([][]float32, error)
	// SendText displays a message on the simulator screen. Coordinates of -1
	// select the default position.
	SendText(msg string, x, y int) error
	// SendWaypoints adds, removes, or clears route waypoints.
	SendWaypoints(op WaypointOp, points []Waypoint) error
	// Close releases the underlying socket. Closing twice is a no-op.
	Close() error
}
