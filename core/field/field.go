// Package field implements the occupancy-checked 2-D registry holding the
// peripherals, charging nodes and charging station of a simulation. The
// field owns every entity; entities keep only a FieldID handle back to it.
// Topology is static: nothing moves once registered.
package field

import (
	"sync/atomic"

	"github.com/kilianp07/wrsn/core/model"
)

var fieldSeq atomic.Int64

// Field is a width x height grid of cells.
type Field struct {
	id     model.FieldID
	width  int
	height int

	cells    map[model.Location]model.EntityID
	entities map[model.EntityID]model.Entity
	nextID   model.EntityID

	peripherals []*model.Peripheral
	chargers    []*model.ChargingNode
	station     *model.ChargingStation
}

// New returns an empty field. Both dimensions must be positive.
func New(width, height int) (*Field, error) {
	if width <= 0 || height <= 0 {
		return nil, model.Configurationf("field dimensions must be positive, got %dx%d", width, height)
	}
	return &Field{
		id:       model.FieldID(fieldSeq.Add(1)),
		width:    width,
		height:   height,
		cells:    make(map[model.Location]model.EntityID),
		entities: make(map[model.EntityID]model.Entity),
	}, nil
}

func (f *Field) ID() model.FieldID { return f.id }
func (f *Field) Width() int        { return f.width }
func (f *Field) Height() int       { return f.height }

// Contains reports whether (x,y) lies inside the field.
func (f *Field) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < f.width && y < f.height
}

// Register places e on (x,y) and appends it to the registry matching its
// kind. It fails with a *model.LocationOccupiedError when the cell is taken.
func (f *Field) Register(e model.Entity, x, y int) error {
	if e == nil {
		return model.Invariantf("cannot register a nil entity")
	}
	if !f.Contains(x, y) {
		return model.Configurationf("location (%d,%d) outside %dx%d field", x, y, f.width, f.height)
	}
	loc := model.Location{X: x, Y: y}
	if occupant, ok := f.cells[loc]; ok {
		return &model.LocationOccupiedError{Location: loc, Occupant: occupant}
	}
	switch v := e.(type) {
	case *model.Peripheral:
		if v == nil {
			return model.Invariantf("cannot register a nil peripheral")
		}
		f.peripherals = append(f.peripherals, v)
	case *model.ChargingNode:
		if v == nil {
			return model.Invariantf("cannot register a nil charging node")
		}
		f.chargers = append(f.chargers, v)
	case *model.ChargingStation:
		if v == nil {
			return model.Invariantf("cannot register a nil station")
		}
		if f.station != nil {
			return model.Configurationf("field already has a station at (%d,%d)", f.station.Location.X, f.station.Location.Y)
		}
		f.station = v
	default:
		return model.Invariantf("unsupported entity %T", e)
	}
	id := f.nextID
	f.nextID++
	e.Bind(id, f.id, loc)
	f.cells[loc] = id
	f.entities[id] = e
	return nil
}

// Occupied reports whether a cell holds an entity.
func (f *Field) Occupied(x, y int) bool {
	_, ok := f.cells[model.Location{X: x, Y: y}]
	return ok
}

// At returns the entity on a cell, if any.
func (f *Field) At(x, y int) (model.Entity, bool) {
	id, ok := f.cells[model.Location{X: x, Y: y}]
	if !ok {
		return nil, false
	}
	return f.entities[id], true
}

// Entity resolves an id handed out at registration.
func (f *Field) Entity(id model.EntityID) (model.Entity, bool) {
	e, ok := f.entities[id]
	return e, ok
}

// Peripheral resolves a peripheral id.
func (f *Field) Peripheral(id model.EntityID) (*model.Peripheral, bool) {
	p, ok := f.entities[id].(*model.Peripheral)
	return p, ok
}

// Peripherals returns the registry in registration order. The slice is a
// copy; the peripherals are shared.
func (f *Field) Peripherals() []*model.Peripheral {
	out := make([]*model.Peripheral, len(f.peripherals))
	copy(out, f.peripherals)
	return out
}

// Chargers returns the charging nodes in registration order.
func (f *Field) Chargers() []*model.ChargingNode {
	out := make([]*model.ChargingNode, len(f.chargers))
	copy(out, f.chargers)
	return out
}

// MasterCharger returns the first master node, if any.
func (f *Field) MasterCharger() (*model.ChargingNode, bool) {
	for _, c := range f.chargers {
		if c.Master {
			return c, true
		}
	}
	return nil, false
}

// Station returns the charging station, if one was registered.
func (f *Field) Station() (*model.ChargingStation, bool) {
	return f.station, f.station != nil
}

func (f *Field) NumPeripherals() int { return len(f.peripherals) }

// Snapshot copies the state of every peripheral.
func (f *Field) Snapshot() []model.PeripheralState {
	out := make([]model.PeripheralState, len(f.peripherals))
	for i, p := range f.peripherals {
		out[i] = p.State()
	}
	return out
}

// NearestFree returns a free cell near loc: the closest one on the first
// square ring around loc that has any. Ties keep scan order (x, then y).
func (f *Field) NearestFree(loc model.Location) (model.Location, bool) {
	maxRing := f.width
	if f.height > maxRing {
		maxRing = f.height
	}
	for r := 0; r <= maxRing; r++ {
		best, found := model.Location{}, false
		bestDist := 0.0
		for x := loc.X - r; x <= loc.X+r; x++ {
			for y := loc.Y - r; y <= loc.Y+r; y++ {
				if x != loc.X-r && x != loc.X+r && y != loc.Y-r && y != loc.Y+r {
					continue
				}
				if !f.Contains(x, y) || f.Occupied(x, y) {
					continue
				}
				c := model.Location{X: x, Y: y}
				if d := loc.DistanceTo(c); !found || d < bestDist {
					best, bestDist, found = c, d, true
				}
			}
		}
		if found {
			return best, true
		}
	}
	return model.Location{}, false
}
