package sim

// PauseMode selects the SIMU operation.
type PauseMode int

// Pause modes understood by the plugin.
const (
	PauseOff    PauseMode = 0 // resume the simulation
	PauseOn     PauseMode = 1 // pause the simulation
	PauseToggle PauseMode = 2 // flip the current state
)

// MaxDataRows is the most rows a single DATA message may carry.
const MaxDataRows = 134

// MaxWaypoints is the most waypoints a single WYPT message may carry.
const MaxWaypoints = 255

// DataRow is one indexed record of the simulator's fixed data output.
// Index selects the row (0-134); Values are the eight floats in that row.
type DataRow struct {
	Index  int
	Values [8]float32
}

// Position holds position state for one aircraft. Nil fields are left
// unchanged by the simulator; the wire sentinel is applied at encode time.
type Position struct {
	Latitude  *float32 // degrees
	Longitude *float32 // degrees
	Altitude  *float32 // meters above MSL
	Roll      *float32 // degrees
	Pitch     *float32 // degrees
	Heading   *float32 // degrees true
	Gear      *float32 // 0 = up, 1 = down
}

// IsZero reports whether no field is set.
func (p Position) IsZero() bool {
	return p.Latitude == nil && p.Longitude == nil && p.Altitude == nil &&
		p.Roll == nil && p.Pitch == nil && p.Heading == nil && p.Gear == nil
}

// Controls holds control surface state for one aircraft. Nil fields are left
// unchanged. The wire format is positional and heterogeneous (gear travels as
// a signed byte); this struct exists so callers never deal with that.
type Controls struct {
	Elevator   *float32 // latitudinal stick, [-1, 1]
	Aileron    *float32 // longitudinal stick, [-1, 1]
	Rudder     *float32 // [-1, 1]
	Throttle   *float32 // [-1, 1]
	Gear       *int8    // 0 = up, 1 = down
	Flaps      *float32 // [0, 1]
	Speedbrake *float32 // [-0.5, 1.5]; only sent when set
}

// IsZero reports whether no field is set.
func (c Controls) IsZero() bool {
	return c.Elevator == nil && c.Aileron == nil && c.Rudder == nil &&
		c.Throttle == nil && c.Gear == nil && c.Flaps == nil && c.Speedbrake == nil
}

// WaypointOp selects the WYPT operation.
type WaypointOp int

// Waypoint operations.
const (
	WaypointsAdd    WaypointOp = 1
	WaypointsRemove WaypointOp = 2
	WaypointsClear  WaypointOp = 3
)

// Waypoint is a point on or above the Earth's surface.
type Waypoint struct {
	Lat float32 // fractional degrees
	Lon float32 // fractional degrees
	Alt float32 // meters above MSL
}

// Float returns a pointer to v, for filling optional fields.
func Float(v float32) *float32 { return &v }

// GearPos returns a pointer to v, for filling the Controls gear field.
func GearPos(v int8) *int8 { return &v }
