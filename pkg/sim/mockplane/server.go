// Package mockplane implements an in-process stand-in for the X-Plane
// Connect plugin: a UDP endpoint that decodes client messages, keeps a
// dataref table, and answers GETD requests. It backs the client tests and
// cmd/mockplane.
package mockplane

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"net"
	"sync"

	"xpcgo/pkg/sim"
)

const sentinel float32 = -998

// Server is a mock plugin endpoint. All state access is mutex-guarded, so
// unlike the client it is safe to inspect from test goroutines.
type Server struct {
	conn   *net.UDPConn
	logger *slog.Logger

	mu        sync.Mutex
	datarefs  map[string][]float32
	positions map[int][7]float32
	controls  map[int][7]float32
	rows      map[int][8]float32
	texts     []string
	waypoints []sim.Waypoint
	paused    bool

	wg sync.WaitGroup
}

// NewServer binds addr (e.g. "127.0.0.1:0") and starts serving datagrams.
func NewServer(addr string) (*Server, error) {
	udpAddr, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp4", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind %q: %w", addr, err)
	}

	s := &Server{
		conn:      conn,
		logger:    slog.Default().With("component", "mockplane"),
		datarefs:  make(map[string][]float32),
		positions: make(map[int][7]float32),
		controls:  make(map[int][7]float32),
		rows:      make(map[int][8]float32),
	}
	s.wg.Add(1)
	go s.serve()
	return s, nil
}

// Addr returns the bound UDP address.
func (s *Server) Addr() *net.UDPAddr {
	return s.conn.LocalAddr().(*net.UDPAddr)
}

// Close stops the serve loop and releases the socket.
func (s *Server) Close() error {
	err := s.conn.Close()
	s.wg.Wait()
	return err
}

// SetDataref seeds the dataref table, typically before a test.
func (s *Server) SetDataref(name string, values ...float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datarefs[name] = values
}

// Dataref returns the stored values for name.
func (s *Server) Dataref(name string) []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.datarefs[name]
}

// Position returns the seven stored position slots for aircraft ac.
func (s *Server) Position(ac int) [7]float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positions[ac]
}

// Controls returns the seven stored control slots for aircraft ac.
func (s *Server) Controls(ac int) [7]float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controls[ac]
}

// DataRow returns the stored values for one data row index.
func (s *Server) DataRow(index int) ([8]float32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.rows[index]
	return v, ok
}

// Texts returns the messages received via TEXT, oldest first.
func (s *Server) Texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.texts))
	copy(out, s.texts)
	return out
}

// Waypoints returns the current waypoint list.
func (s *Server) Waypoints() []sim.Waypoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sim.Waypoint, len(s.waypoints))
	copy(out, s.waypoints)
	return out
}

// Paused reports the simulated pause state.
func (s *Server) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *Server) serve() {
	defer s.wg.Done()
	buf := make([]byte, 16384)
	for {
		n, from, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			// Socket closed; leave quietly.
			return
		}
		s.handle(buf[:n], from)
	}
}

func (s *Server) handle(msg []byte, from *net.UDPAddr) {
	if len(msg) < 5 {
		s.logger.Warn("dropping runt datagram", "bytes", len(msg))
		return
	}
	tag := string(msg[:4])
	body := msg[5:]

	s.mu.Lock()
	defer s.mu.Unlock()

	switch tag {
	case "SIMU":
		s.handleSimu(body)
	case "DREF":
		s.handleDref(body)
	case "GETD":
		s.handleGetDrefs(body, from)
	case "POSI":
		s.handlePosition(body)
	case "CTRL":
		s.handleControls(body)
	case "DATA":
		s.handleData(body)
	case "TEXT":
		s.handleText(body)
	case "WYPT":
		s.handleWaypoints(body)
	case "CONN":
		// Port redirection is meaningless for a single-socket mock.
	default:
		s.logger.Warn("unknown message tag", "tag", tag)
	}
}

func (s *Server) handleSimu(body []byte) {
	if len(body) < 1 {
		return
	}
	switch body[0] {
	case 0:
		s.paused = false
	case 1:
		s.paused = true
	case 2:
		s.paused = !s.paused
	}
}

func (s *Server) handleDref(body []byte) {
	name, rest, ok := readPrefixedString(body)
	if !ok {
		return
	}
	values, _, ok := readPrefixedFloats(rest)
	if !ok {
		return
	}
	s.datarefs[name] = values
}

func (s *Server) handleGetDrefs(body []byte, from *net.UDPAddr) {
	if len(body) < 1 {
		return
	}
	count := int(body[0])
	rest := body[1:]

	resp := append([]byte("RESP"), 0, byte(count))
	for i := 0; i < count; i++ {
		name, tail, ok := readPrefixedString(rest)
		if !ok {
			return
		}
		rest = tail
		values := s.datarefs[name]
		resp = append(resp, byte(len(values)))
		for _, v := range values {
			resp = binary.LittleEndian.AppendUint32(resp, math.Float32bits(v))
		}
	}
	if _, err := s.conn.WriteToUDP(resp, from); err != nil {
		s.logger.Warn("failed to send GETD response", "error", err)
	}
}

func (s *Server) handlePosition(body []byte) {
	if len(body) < 1+7*4 {
		return
	}
	ac := int(body[0])
	slots := s.positions[ac]
	for i := 0; i < 7; i++ {
		v := readFloat32(body[1+i*4:])
		if v != sentinel {
			slots[i] = v
		}
	}
	s.positions[ac] = slots
}

func (s *Server) handleControls(body []byte) {
	// Four floats, gear byte, flaps float, aircraft byte, optional speedbrake.
	if len(body) < 4*4+1+4+1 {
		return
	}
	ac := int(body[21])
	slots := s.controls[ac]
	for i := 0; i < 4; i++ {
		if v := readFloat32(body[i*4:]); v != sentinel {
			slots[i] = v
		}
	}
	if gear := int8(body[16]); gear >= 0 {
		slots[4] = float32(gear)
	}
	if flaps := readFloat32(body[17:]); flaps != sentinel {
		slots[5] = flaps
	}
	if len(body) >= 22+4 {
		slots[6] = readFloat32(body[22:])
	}
	s.controls[ac] = slots
}

func (s *Server) handleData(body []byte) {
	for off := 0; off+36 <= len(body); off += 36 {
		index := int(binary.LittleEndian.Uint32(body[off:]))
		var values [8]float32
		for j := range values {
			values[j] = readFloat32(body[off+4+j*4:])
		}
		s.rows[index] = values
	}
}

func (s *Server) handleText(body []byte) {
	if len(body) < 9 {
		return
	}
	n := int(body[8])
	if 9+n > len(body) {
		return
	}
	s.texts = append(s.texts, string(body[9:9+n]))
}

func (s *Server) handleWaypoints(body []byte) {
	if len(body) < 2 {
		return
	}
	op := sim.WaypointOp(body[0])
	if op == sim.WaypointsClear {
		s.waypoints = nil
		return
	}
	floatCount := int(body[1])
	points := make([]sim.Waypoint, 0, floatCount/3)
	for i := 0; i+2 < floatCount; i += 3 {
		off := 2 + i*4
		if off+12 > len(body) {
			break
		}
		points = append(points, sim.Waypoint{
			Lat: readFloat32(body[off:]),
			Lon: readFloat32(body[off+4:]),
			Alt: readFloat32(body[off+8:]),
		})
	}
	switch op {
	case sim.WaypointsAdd:
		s.waypoints = append(s.waypoints, points...)
	case sim.WaypointsRemove:
		for _, p := range points {
			s.removeWaypoint(p)
		}
	}
}

func (s *Server) removeWaypoint(p sim.Waypoint) {
	for i, w := range s.waypoints {
		if w == p {
			s.waypoints = append(s.waypoints[:i], s.waypoints[i+1:]...)
			return
		}
	}
}

func readFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func readPrefixedString(b []byte) (string, []byte, bool) {
	if len(b) < 1 {
		return "", nil, false
	}
	n := int(b[0])
	if 1+n > len(b) {
		return "", nil, false
	}
	return string(b[1 : 1+n]), b[1+n:], true
}

func readPrefixedFloats(b []byte) ([]float32, []byte, bool) {
	if len(b) < 1 {
		return nil, nil, false
	}
	n := int(b[0])
	if 1+n*4 > len(b) {
		return nil, nil, false
	}
	values := make([]float32, n)
	for i := range values {
		values[i] = readFloat32(b[1+i*4:])
	}
	return values, b[1+n*4:], true
}
