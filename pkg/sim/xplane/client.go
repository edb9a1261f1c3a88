package xplane

import (
	"fmt"
	"log/slog"
	"net"
	"time"

	"xpcgo/pkg/sim"
)

// Defaults for a plugin running on the local machine.
const (
	DefaultHost = "localhost"
	DefaultPort = 49009
)

// Client talks to the X-Plane Connect plugin over a single UDP socket.
//
// Calls are synchronous and blocking; query operations apply the configured
// receive timeout to the one receive they perform. The Client is not safe
// for concurrent use from multiple goroutines.
type Client struct {
	conn    *net.UDPConn
	remote  *net.UDPAddr
	timeout time.Duration
	logger  *slog.Logger
	buf     [maxMessageSize]byte
}

var _ sim.Client = (*Client)(nil)

// NewClient resolves host, binds a local UDP socket, and returns a client.
//
// localPort 0 binds an ephemeral port. timeout applies to each receive;
// 0 blocks indefinitely. Name resolution failure is a construction error.
func NewClient(host string, port, localPort int, timeout time.Duration) (*Client, error) {
	if port < 0 || port > 65535 {
		return nil, errValidation("CONN", "remote port %d out of range [0, 65535]", port)
	}
	if localPort < 0 || localPort > 65535 {
		return nil, errValidation("CONN", "local port %d out of range [0, 65535]", localPort)
	}
	if timeout < 0 {
		return nil, errValidation("CONN", "timeout must be non-negative")
	}

	remote, err := net.ResolveUDPAddr("udp4", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", host, err)
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: localPort})
	if err != nil {
		return nil, fmt.Errorf("failed to bind local port %d: %w", localPort, err)
	}

	return &Client{
		conn:    conn,
		remote:  remote,
		timeout: timeout,
		logger:  slog.Default().With("component", "xplane"),
	}, nil
}

// Close releases the socket. Closing an already closed client is a no-op.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// LocalAddr returns the bound local address, for tests and diagnostics.
// It returns nil once the client is closed.
func (c *Client) LocalAddr() net.Addr {
	if c.conn == nil {
		return nil
	}
	return c.conn.LocalAddr()
}

func (c *Client) send(buf []byte) error {
	if c.conn == nil {
		return fmt.Errorf("client is closed")
	}
	if _, err := c.conn.WriteToUDP(buf, c.remote); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}
	c.logger.Debug("sent datagram", "tag", string(buf[:4]), "bytes", len(buf))
	return nil
}

func (c *Client) receive() ([]byte, error) {
	if c.conn == nil {
		return nil, fmt.Errorf("client is closed")
	}
	var deadline time.Time
	if c.timeout > 0 {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("failed to set read deadline: %w", err)
	}
	n, _, err := c.conn.ReadFromUDP(c.buf[:])
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, fmt.Errorf("%w after %v", sim.ErrTimeout, c.timeout)
		}
		return nil, fmt.Errorf("receive failed: %w", err)
	}
	return c.buf[:n], nil
}

// SetConnectionPort asks the plugin to redirect traffic to a new port.
func (c *Client) SetConnectionPort(port int) error {
	buf, err := encodeConn(port)
	if err != nil {
		return err
	}
	return c.send(buf)
}

// PauseSim pauses, resumes, or toggles the physics simulation.
func (c *Client) PauseSim(mode sim.PauseMode) error {
	buf, err := encodeSimu(mode)
	if err != nil {
		return err
	}
	return c.send(buf)
}

// SendData writes one or more aircraft data rows.
func (c *Client) SendData(rows []sim.DataRow) error {
	buf, err := encodeData(rows)
	if err != nil {
		return err
	}
	return c.send(buf)
}

// ReadData reads aircraft data rows pushed by the simulator. A nil slice
// with a nil error means a datagram arrived but carried no full row yet; a
// timeout is a transport error.
func (c *Client) ReadData() ([]sim.DataRow, error) {
	buf, err := c.receive()
	if err != nil {
		return nil, err
	}
	return decodeData(buf), nil
}

// SetPosition sets position state on the given aircraft (0 = player).
func (c *Client) SetPosition(ac int, pos sim.Position) error {
	buf, err := encodePosition(ac, pos)
	if err != nil {
		return err
	}
	return c.send(buf)
}

// SetControls sets control surface state on the given aircraft.
func (c *Client) SetControls(ac int, ctrl sim.Controls) error {
	buf, err := encodeControls(ac, ctrl)
	if err != nil {
		return err
	}
	return c.send(buf)
}

// SetDataref writes values to a named dataref.
func (c *Client) SetDataref(name string, values []float32) error {
	buf, err := encodeDref(name, values)
	if err != nil {
		return err
	}
	return c.send(buf)
}

// GetDataref reads a single dataref.
func (c *Client) GetDataref(name string) ([]float32, error) {
	results, err := c.GetDatarefs([]string{name})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: GETD response carried no results", sim.ErrMalformedResponse)
	}
	return results[0], nil
}

// GetDatarefs reads multiple datarefs in one round trip. Results are in
// request order.
func (c *Client) GetDatarefs(names []string) ([][]float32, error) {
	buf, err := encodeGetDrefs(names)
	if err != nil {
		return nil, err
	}
	if err := c.send(buf); err != nil {
		return nil, err
	}
	resp, err := c.receive()
	if err != nil {
		return nil, err
	}
	return decodeGetDrefs(resp)
}

// SendText displays a message on the simulator screen. Coordinates of -1
// select the default position.
func (c *Client) SendText(msg string, x, y int) error {
	buf, err := encodeText(msg, x, y)
	if err != nil {
		return err
	}
	return c.send(buf)
}

// SendWaypoints adds, removes, or clears route waypoints.
func (c *Client) SendWaypoints(op sim.WaypointOp, points []sim.Waypoint) error {
	buf, err := encodeWaypoints(op, points)
	if err != nil {
		return err
	}
	return c.send(buf)
}
