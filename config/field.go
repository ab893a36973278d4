package config

import (
	"fmt"
	"math"
)

// PeripheralConfig places one peripheral explicitly.
type PeripheralConfig struct {
	X         int     `json:"x" yaml:"x"`
	Y         int     `json:"y" yaml:"y"`
	Capacity  float64 `json:"capacity" yaml:"capacity"`
	Charge    float64 `json:"charge" yaml:"charge"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

// FieldConfig describes the grid, the station and the master charger.
type FieldConfig struct {
	Width          int     `json:"width" yaml:"width"`
	Height         int     `json:"height" yaml:"height"`
	StationX       int     `json:"station_x" yaml:"station_x"`
	StationY       int     `json:"station_y" yaml:"station_y"`
	MasterCapacity float64 `json:"master_capacity" yaml:"master_capacity"`
	// Radius bounds the distance between a cluster centroid and its members.
	Radius float64 `json:"radius" yaml:"radius"`
	// Peripherals, when set, replace random placement.
	Peripherals []PeripheralConfig `json:"peripherals" yaml:"peripherals"`
}

// SetDefaults mirrors the reference experiment: a 20x20 plane with the
// station at the origin and a 60 unit master charger.
func (c *FieldConfig) SetDefaults() {
	if c.Width == 0 {
		c.Width = 20
	}
	if c.Height == 0 {
		c.Height = 20
	}
	if c.MasterCapacity == 0 {
		c.MasterCapacity = 60
	}
	if c.Radius == 0 {
		c.Radius = 5
	}
}

// Validate checks mandatory fields. Cell collisions are reported when the
// field is built.
func (c FieldConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("field dimensions must be positive")
	}
	if c.StationX < 0 || c.StationY < 0 || c.StationX >= c.Width || c.StationY >= c.Height {
		return fmt.Errorf("station (%d,%d) outside the field", c.StationX, c.StationY)
	}
	if c.MasterCapacity <= 0 {
		return fmt.Errorf("master_capacity must be positive")
	}
	if c.Radius < 0 || math.IsNaN(c.Radius) {
		return fmt.Errorf("radius must not be negative")
	}
	for i, p := range c.Peripherals {
		if p.Capacity <= 0 {
			return fmt.Errorf("peripheral %d: capacity must be positive", i)
		}
		if p.Charge < 0 || p.Charge > p.Capacity {
			return fmt.Errorf("peripheral %d: charge outside [0,capacity]", i)
		}
	}
	return nil
}
