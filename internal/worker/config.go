// Package worker provides background cache warming for Curbwise.
package worker

import (
	"time"
)

// Corridor is an origin/destination pair whose driving estimate is kept warm.
type Corridor struct {
	// Name is the human-readable name of the corridor.
	Name string

	// Origin and Destination are free-text addresses, the same form the
	// API receives them in.
	Origin      string
	Destination string

	// Priority determines refresh order (lower = higher priority).
	Priority int
}

// RefreshConfig holds configuration for the cache warming job.
type RefreshConfig struct {
	// Corridors are the commuter corridors to refresh.
	// If empty, uses DefaultCorridors.
	Corridors []Corridor

	// Concurrency is the number of concurrent refresh operations.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for each refresh operation.
	// Default: 30 seconds
	Timeout time.Duration

	// RefreshDirections enables driving-estimate warming.
	// Default: true
	RefreshDirections bool

	// RefreshParking enables parking snapshot warming.
	// Default: true
	RefreshParking bool

	// RefreshTransit enables transit alert refresh.
	// Default: true
	RefreshTransit bool
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Corridors:         DefaultCorridors(),
		Concurrency:       3,
		Timeout:           30 * time.Second,
		RefreshDirections: true,
		RefreshParking:    true,
		RefreshTransit:    true,
	}
}

// DefaultCorridors returns the default commuter corridors: the pairs the app
// sees most, biased toward Manhattan-bound morning traffic.
func DefaultCorridors() []Corridor {
	return []Corridor{
		{Name: "Park Slope to Midtown", Origin: "Park Slope, Brooklyn", Destination: "Midtown Manhattan", Priority: 1},
		{Name: "Astoria to Midtown", Origin: "Astoria, Queens", Destination: "Midtown Manhattan", Priority: 1},
		{Name: "Upper West Side to Financial District", Origin: "Upper West Side, Manhattan", Destination: "Wall Street, Manhattan", Priority: 1},
		{Name: "Williamsburg to SoHo", Origin: "Williamsburg, Brooklyn", Destination: "SoHo, Manhattan", Priority: 2},
		{Name: "Riverdale to Midtown", Origin: "Riverdale, Bronx", Destination: "Midtown Manhattan", Priority: 2},
		{Name: "Long Island City to Downtown Brooklyn", Origin: "Long Island City, Queens", Destination: "Downtown Brooklyn", Priority: 2},
		{Name: "St. George to Financial District", Origin: "St. George, Staten Island", Destination: "Wall Street, Manhattan", Priority: 3},
		{Name: "Forest Hills to Midtown", Origin: "Forest Hills, Queens", Destination: "Midtown Manhattan", Priority: 3},
	}
}

// TotalCorridors returns the number of corridors to refresh.
func (c RefreshConfig) TotalCorridors() int {
	return len(c.Corridors)
}
