package model

import "math"

// EntityID identifies an entity inside the field that registered it.
type EntityID int

// FieldID is a non-owning handle to the field an entity is registered on.
type FieldID int

// ClusterID identifies the cluster a peripheral belongs to.
type ClusterID int

// NoCluster marks a peripheral that has not been assigned to a cluster yet.
const NoCluster ClusterID = -1

// Location is an integer cell of the field.
type Location struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// DistanceTo returns the Euclidean distance between two cells.
func (l Location) DistanceTo(o Location) float64 {
	return math.Hypot(float64(o.X-l.X), float64(o.Y-l.Y))
}

// Kind tags the variant of an entity registered on the field.
type Kind int

const (
	KindPeripheral Kind = iota
	KindCharger
	KindStation
)

func (k Kind) String() string {
	switch k {
	case KindPeripheral:
		return "peripheral"
	case KindCharger:
		return "charger"
	case KindStation:
		return "station"
	default:
		return "unknown"
	}
}

// Entity is anything that can occupy a cell. The field assigns the identity
// and location through Bind at registration time.
type Entity interface {
	Kind() Kind
	Identity() EntityID
	Position() Location
	Bind(id EntityID, field FieldID, loc Location)
}

// Receiver can be credited with energy.
type Receiver interface {
	Need() float64
	Receive(amount float64)
}

// Source can be debited to credit a Receiver.
type Source interface {
	Available() float64
	Debit(amount float64)
}

// Battery is the charge record shared by peripherals and charging nodes.
type Battery struct {
	Capacity float64 `json:"capacity"`
	Charge   float64 `json:"charge"`
}

// Need returns how much energy fits before the battery is full.
func (b *Battery) Need() float64 {
	n := b.Capacity - b.Charge
	if n < 0 {
		return 0
	}
	return n
}

// Receive credits amount without clamping; callers size the amount.
func (b *Battery) Receive(amount float64) { b.Charge += amount }

// Ratio returns the state of charge in [0,1]. An empty capacity reads as 0.
func (b *Battery) Ratio() float64 {
	if b.Capacity <= 0 {
		return 0
	}
	return b.Charge / b.Capacity
}

// Peripheral is a fixed sensor device. Its charge changes only through the
// ledger and leakage.
type Peripheral struct {
	ID        EntityID  `json:"id"`
	Location  Location  `json:"location"`
	Field     FieldID   `json:"field"`
	Cluster   ClusterID `json:"cluster"`
	Threshold float64   `json:"threshold,omitempty"` // optional admission threshold in (0,1]
	Failed    bool      `json:"failed"`
	Battery
}

// NewPeripheral returns an unregistered peripheral with the given capacity
// and initial charge. The charge is clamped to [0, capacity].
func NewPeripheral(capacity, charge float64) *Peripheral {
	if capacity < 0 {
		capacity = 0
	}
	charge = math.Max(0, math.Min(charge, capacity))
	return &Peripheral{Cluster: NoCluster, Battery: Battery{Capacity: capacity, Charge: charge}}
}

func (p *Peripheral) Kind() Kind         { return KindPeripheral }
func (p *Peripheral) Identity() EntityID { return p.ID }
func (p *Peripheral) Position() Location { return p.Location }

// Bind records the identity assigned by the field.
func (p *Peripheral) Bind(id EntityID, field FieldID, loc Location) {
	p.ID, p.Field, p.Location = id, field, loc
}

// Need is zero for a failed peripheral.
func (p *Peripheral) Need() float64 {
	if p.Failed {
		return 0
	}
	return p.Battery.Need()
}

// Fail destroys the peripheral logically. It stays in the registry.
func (p *Peripheral) Fail() {
	p.Failed = true
	p.Capacity = 0
	p.Charge = 0
}

// Below reports whether the charge ratio is at or under threshold. A
// peripheral-specific threshold takes precedence.
func (p *Peripheral) Below(threshold float64) bool {
	if p.Failed {
		return false
	}
	if p.Threshold > 0 {
		threshold = p.Threshold
	}
	return p.Ratio() <= threshold
}

// State returns a value copy suitable for snapshots.
func (p *Peripheral) State() PeripheralState {
	return PeripheralState{
		ID:       p.ID,
		Location: p.Location,
		Cluster:  p.Cluster,
		Capacity: p.Capacity,
		Charge:   p.Charge,
		Failed:   p.Failed,
	}
}

// PeripheralState is an immutable view of a peripheral at one point in time.
type PeripheralState struct {
	ID       EntityID  `json:"id"`
	Location Location  `json:"location"`
	Cluster  ClusterID `json:"cluster"`
	Capacity float64   `json:"capacity"`
	Charge   float64   `json:"charge"`
	Failed   bool      `json:"failed"`
}

// ChargingNode sources energy. A master node docks at the station, a
// dedicated node serves a single cluster.
type ChargingNode struct {
	ID       EntityID  `json:"id"`
	Location Location  `json:"location"`
	Field    FieldID   `json:"field"`
	Master   bool      `json:"master"`
	Cluster  ClusterID `json:"cluster"`
	Battery
}

// NewChargingNode returns a full charging node.
func NewChargingNode(capacity float64, master bool) *ChargingNode {
	return &ChargingNode{Master: master, Cluster: NoCluster, Battery: Battery{Capacity: capacity, Charge: capacity}}
}

func (c *ChargingNode) Kind() Kind         { return KindCharger }
func (c *ChargingNode) Identity() EntityID { return c.ID }
func (c *ChargingNode) Position() Location { return c.Location }

// Bind records the identity assigned by the field.
func (c *ChargingNode) Bind(id EntityID, field FieldID, loc Location) {
	c.ID, c.Field, c.Location = id, field, loc
}

// Available returns the energy the node can still give away.
func (c *ChargingNode) Available() float64 { return c.Charge }

// Debit removes amount from the node.
func (c *ChargingNode) Debit(amount float64) { c.Charge -= amount }

// Refill tops the node up to capacity and returns the restored amount.
func (c *ChargingNode) Refill() float64 {
	restored := c.Battery.Need()
	c.Charge = c.Capacity
	return restored
}

// ChargingStation is a docking place marker without charge state.
type ChargingStation struct {
	ID       EntityID `json:"id"`
	Location Location `json:"location"`
	Field    FieldID  `json:"field"`
}

func (s *ChargingStation) Kind() Kind         { return KindStation }
func (s *ChargingStation) Identity() EntityID { return s.ID }
func (s *ChargingStation) Position() Location { return s.Location }

// Bind records the identity assigned by the field.
func (s *ChargingStation) Bind(id EntityID, field FieldID, loc Location) {
	s.ID, s.Field, s.Location = id, field, loc
}
