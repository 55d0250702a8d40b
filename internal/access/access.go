// Package access holds the default data-access handle shared by the
// record layer.
package access

import (
	"sync"

	"infostore/internal/repository"
)

// Point is a replaceable reference to the DataAccess used by records that
// were not given one explicitly. The zero value is unconfigured and ready
// to use.
type Point struct {
	mu sync.RWMutex
	da repository.DataAccess
}

// NewPoint returns a Point configured with da, which may be nil
func NewPoint(da repository.DataAccess) *Point {
	return &Point{da: da}
}

// Set replaces the configured DataAccess. The last call wins.
func (p *Point) Set(da repository.DataAccess) {
	p.mu.Lock()
	p.da = da
	p.mu.Unlock()
}

// Get returns the configured DataAccess, or ErrDataAccessUnconfigured when
// none was set. A nil Point is unconfigured.
func (p *Point) Get() (repository.DataAccess, error) {
	if p == nil {
		return nil, repository.ErrDataAccessUnconfigured
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.da == nil {
		return nil, repository.ErrDataAccessUnconfigured
	}
	return p.da, nil
}

// Configured reports whether Get would succeed
func (p *Point) Configured() bool {
	if p == nil {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.da != nil
}
