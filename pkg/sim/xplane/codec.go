// Package xplane implements the X-Plane Connect plugin protocol: fixed-layout
// and length-prefixed binary messages exchanged over UDP datagrams.
package xplane

import (
	"encoding/binary"
	"fmt"
	"math"

	"xpcgo/pkg/sim"
)

const (
	// headerSize is the 4-byte ASCII tag plus one terminator byte.
	headerSize = 5

	// maxMessageSize is the receive buffer capacity on both ends. Encoders
	// must never produce a larger datagram.
	maxMessageSize = 16384

	// unchanged is the wire sentinel for "leave this field as is".
	unchanged float32 = -998

	// dataRowSize is 9 little-endian 32-bit fields per DATA row.
	dataRowSize = 36
)

func errValidation(op, format string, args ...any) error {
	return &sim.ValidationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// header returns a message buffer seeded with the 4-byte tag and terminator.
func header(tag string) []byte {
	b := make([]byte, 0, 64)
	b = append(b, tag...)
	return append(b, 0)
}

func appendFloat32(b []byte, v float32) []byte {
	return binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
}

func appendOptFloat32(b []byte, v *float32) []byte {
	if v == nil {
		return appendFloat32(b, unchanged)
	}
	return appendFloat32(b, *v)
}

// encodeConn builds a CONN message redirecting plugin traffic to port.
func encodeConn(port int) ([]byte, error) {
	if port < 0 || port > 65535 {
		return nil, errValidation("CONN", "port %d out of range [0, 65535]", port)
	}
	return binary.LittleEndian.AppendUint16(header("CONN"), uint16(port)), nil
}

// encodeSimu builds a SIMU pause/resume/toggle message.
func encodeSimu(mode sim.PauseMode) ([]byte, error) {
	if mode < sim.PauseOff || mode > sim.PauseToggle {
		return nil, errValidation("SIMU", "invalid pause mode %d", mode)
	}
	return append(header("SIMU"), byte(mode)), nil
}

// encodeData builds a DATA message setting one or more data rows.
func encodeData(rows []sim.DataRow) ([]byte, error) {
	if len(rows) > sim.MaxDataRows {
		return nil, errValidation("DATA", "too many rows: %d (max %d)", len(rows), sim.MaxDataRows)
	}
	b := header("DATA")
	for _, row := range rows {
		if row.Index < 0 || row.Index > sim.MaxDataRows {
			return nil, errValidation("DATA", "row index %d out of range [0, %d]", row.Index, sim.MaxDataRows)
		}
		b = binary.LittleEndian.AppendUint32(b, uint32(row.Index))
		for _, v := range row.Values {
			b = appendFloat32(b, v)
		}
	}
	return b, nil
}

// decodeData parses a DATA response into rows. A buffer too short to hold
// the header and one field is "no data yet", not an error. Trailing bytes
// that do not fill a whole row are ignored.
func decodeData(buf []byte) []sim.DataRow {
	if len(buf) < headerSize+1 {
		return nil
	}
	n := (len(buf) - headerSize) / dataRowSize
	rows := make([]sim.DataRow, 0, n)
	for i := 0; i < n; i++ {
		off := headerSize + i*dataRowSize
		row := sim.DataRow{
			Index: int(binary.LittleEndian.Uint32(buf[off : off+4])),
		}
		for j := range row.Values {
			bits := binary.LittleEndian.Uint32(buf[off+4+j*4 : off+8+j*4])
			row.Values[j] = math.Float32frombits(bits)
		}
		rows = append(rows, row)
	}
	return rows
}

// encodePosition builds a POSI message for aircraft ac. Unset fields are
// written as the sentinel so the simulator leaves them alone.
func encodePosition(ac int, pos sim.Position) ([]byte, error) {
	if pos.IsZero() {
		return nil, errValidation("POSI", "at least one position field must be set")
	}
	if ac < 0 || ac > 20 {
		return nil, errValidation("POSI", "aircraft %d out of range [0, 20]", ac)
	}
	b := append(header("POSI"), byte(ac))
	for _, v := range []*float32{
		pos.Latitude, pos.Longitude, pos.Altitude,
		pos.Roll, pos.Pitch, pos.Heading, pos.Gear,
	} {
		b = appendOptFloat32(b, v)
	}
	return b, nil
}

// encodeControls builds a CTRL message for aircraft ac. The wire layout is
// heterogeneous: four floats, the gear as a signed byte, the flaps float,
// the aircraft byte, and the speedbrake float only when set.
func encodeControls(ac int, ctrl sim.Controls) ([]byte, error) {
	if ctrl.IsZero() {
		return nil, errValidation("CTRL", "at least one control field must be set")
	}
	if ac < 0 || ac > 20 {
		return nil, errValidation("CTRL", "aircraft %d out of range [0, 20]", ac)
	}
	b := header("CTRL")
	b = appendOptFloat32(b, ctrl.Elevator)
	b = appendOptFloat32(b, ctrl.Aileron)
	b = appendOptFloat32(b, ctrl.Rudder)
	b = appendOptFloat32(b, ctrl.Throttle)
	// Unset gear travels as signed -1, the plugin's "unchanged" for this field.
	gear := int8(-1)
	if ctrl.Gear != nil {
		gear = *ctrl.Gear
	}
	b = append(b, byte(gear))
	b = appendOptFloat32(b, ctrl.Flaps)
	b = append(b, byte(ac))
	if ctrl.Speedbrake != nil {
		b = appendFloat32(b, *ctrl.Speedbrake)
	}
	return b, nil
}

// encodeDref builds a DREF message setting a named dataref.
func encodeDref(name string, values []float32) ([]byte, error) {
	if len(name) == 0 || len(name) > 255 {
		return nil, errValidation("DREF", "dataref name must be 1-255 bytes, got %d", len(name))
	}
	if len(values) == 0 {
		return nil, errValidation("DREF", "values must contain at least one float")
	}
	if len(values) > 255 {
		return nil, errValidation("DREF", "too many values: %d (max 255)", len(values))
	}
	b := append(header("DREF"), byte(len(name)))
	b = append(b, name...)
	b = append(b, byte(len(values)))
	for _, v := range values {
		b = appendFloat32(b, v)
	}
	return b, nil
}

// encodeGetDrefs builds a GETD request for one or more datarefs.
func encodeGetDrefs(names []string) ([]byte, error) {
	if len(names) == 0 {
		return nil, errValidation("GETD", "at least one dataref name required")
	}
	if len(names) > 255 {
		return nil, errValidation("GETD", "too many datarefs: %d (max 255)", len(names))
	}
	b := append(header("GETD"), byte(len(names)))
	for _, name := range names {
		if len(name) == 0 || len(name) > 255 {
			return nil, errValidation("GETD", "dataref name must be 1-255 bytes, got %d", len(name))
		}
		b = append(b, byte(len(name)))
		b = append(b, name...)
	}
	if len(b) > maxMessageSize {
		return nil, errValidation("GETD", "request of %d bytes exceeds %d byte limit", len(b), maxMessageSize)
	}
	return b, nil
}

// decodeGetDrefs parses a GETD response: a result count followed by one
// float-count-prefixed row per requested dataref. It never reads past the
// buffer; a declared length that does is a malformed response.
func decodeGetDrefs(buf []byte) ([][]float32, error) {
	if len(buf) < headerSize+1 {
		return nil, fmt.Errorf("%w: GETD response of %d bytes is shorter than header", sim.ErrMalformedResponse, len(buf))
	}
	count := int(buf[headerSize])
	off := headerSize + 1
	results := make([][]float32, 0, count)
	for i := 0; i < count; i++ {
		if off >= len(buf) {
			return nil, fmt.Errorf("%w: GETD response truncated at result %d of %d", sim.ErrMalformedResponse, i+1, count)
		}
		n := int(buf[off])
		off++
		if off+n*4 > len(buf) {
			return nil, fmt.Errorf("%w: GETD result %d declares %d floats past end of buffer", sim.ErrMalformedResponse, i+1, n)
		}
		row := make([]float32, n)
		for j := range row {
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4]))
			off += 4
		}
		results = append(results, row)
	}
	return results, nil
}

// encodeText builds a TEXT message. Coordinates of -1 select the default
// screen position.
func encodeText(msg string, x, y int) ([]byte, error) {
	if y < -1 {
		return nil, errValidation("TEXT", "y must be >= -1, got %d", y)
	}
	if len(msg) > 255 {
		return nil, errValidation("TEXT", "message must be at most 255 bytes, got %d", len(msg))
	}
	b := header("TEXT")
	b = binary.LittleEndian.AppendUint32(b, uint32(int32(x)))
	b = binary.LittleEndian.AppendUint32(b, uint32(int32(y)))
	b = append(b, byte(len(msg)))
	return append(b, msg...), nil
}

// encodeWaypoints builds a WYPT message. A clear operation ignores points
// and carries a fixed two-byte trailer.
func encodeWaypoints(op sim.WaypointOp, points []sim.Waypoint) ([]byte, error) {
	if op < sim.WaypointsAdd || op > sim.WaypointsClear {
		return nil, errValidation("WYPT", "invalid operation %d", op)
	}
	if len(points) > sim.MaxWaypoints {
		return nil, errValidation("WYPT", "too many points: %d (max %d)", len(points), sim.MaxWaypoints)
	}
	if op == sim.WaypointsClear {
		return append(header("WYPT"), byte(sim.WaypointsClear), 0), nil
	}
	b := append(header("WYPT"), byte(op), byte(len(points)*3))
	for _, p := range points {
		b = appendFloat32(b, p.Lat)
		b = appendFloat32(b, p.Lon)
		b = appendFloat32(b, p.Alt)
	}
	return b, nil
}
