package app

import (
	"fmt"

	"github.com/kilianp07/wrsn/config"
	"github.com/kilianp07/wrsn/core/cluster"
	"github.com/kilianp07/wrsn/core/field"
	"github.com/kilianp07/wrsn/core/model"
	"github.com/kilianp07/wrsn/core/placement"
	"github.com/kilianp07/wrsn/core/scheduler"
)

// World is a populated field with its clusters.
type World struct {
	Field       *field.Field
	Master      *model.ChargingNode
	Peripherals []*model.Peripheral
	Clusters    []cluster.Cluster
}

// BuildWorld creates the field, docks the master charger next to the
// station, places the peripherals and clusters them. With dedicated
// chargers enabled every cluster gets a node on the free cell nearest to
// its centroid.
func BuildWorld(cfg *config.Config) (*World, error) {
	f, err := field.New(cfg.Field.Width, cfg.Field.Height)
	if err != nil {
		return nil, err
	}
	station := &model.ChargingStation{}
	if err := f.Register(station, cfg.Field.StationX, cfg.Field.StationY); err != nil {
		return nil, fmt.Errorf("station: %w", err)
	}
	dock, ok := f.NearestFree(station.Location)
	if !ok {
		return nil, model.Configurationf("no free cell for the master charger")
	}
	master := model.NewChargingNode(cfg.Field.MasterCapacity, true)
	if err := f.Register(master, dock.X, dock.Y); err != nil {
		return nil, fmt.Errorf("master charger: %w", err)
	}

	peripherals, err := placePeripherals(f, cfg)
	if err != nil {
		return nil, err
	}
	clusters, err := cluster.Build(peripherals, cfg.Field.Radius)
	if err != nil {
		return nil, err
	}
	cluster.Assign(clusters)
	if cfg.Simulation.DedicatedChargers {
		if clusters, err = attachChargers(f, clusters, cfg.Simulation); err != nil {
			return nil, err
		}
	}
	return &World{Field: f, Master: master, Peripherals: peripherals, Clusters: clusters}, nil
}

func placePeripherals(f *field.Field, cfg *config.Config) ([]*model.Peripheral, error) {
	if len(cfg.Field.Peripherals) == 0 {
		p, err := placement.New(cfg.Placement)
		if err != nil {
			return nil, err
		}
		return p.Place(f)
	}
	out := make([]*model.Peripheral, 0, len(cfg.Field.Peripherals))
	for i, pc := range cfg.Field.Peripherals {
		p := model.NewPeripheral(pc.Capacity, pc.Charge)
		p.Threshold = pc.Threshold
		if err := f.Register(p, pc.X, pc.Y); err != nil {
			return nil, fmt.Errorf("peripheral %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func attachChargers(f *field.Field, clusters []cluster.Cluster, sim scheduler.Config) ([]cluster.Cluster, error) {
	out := make([]cluster.Cluster, len(clusters))
	for i, c := range clusters {
		loc, ok := f.NearestFree(c.Centroid)
		if !ok {
			return nil, model.Configurationf("no free cell for the charger of cluster %d", c.ID)
		}
		node := model.NewChargingNode(sim.DedicatedCapacity, false)
		if err := f.Register(node, loc.X, loc.Y); err != nil {
			return nil, fmt.Errorf("charger of cluster %d: %w", c.ID, err)
		}
		out[i] = c.WithCharger(node)
	}
	return out, nil
}
