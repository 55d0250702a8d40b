package access

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infostore/internal/repository"
	"infostore/internal/repository/sqlite"
)

func TestPointUnconfigured(t *testing.T) {
	var p Point

	da, err := p.Get()
	assert.Nil(t, da)
	assert.ErrorIs(t, err, repository.ErrDataAccessUnconfigured)
	assert.False(t, p.Configured())

	da, err = NewPoint(nil).Get()
	assert.Nil(t, da)
	assert.ErrorIs(t, err, repository.ErrDataAccessUnconfigured)
}

func TestPointLastSetWins(t *testing.T) {
	first := sqlite.NewProvider()
	second := sqlite.NewProvider()

	p := NewPoint(first)
	got, err := p.Get()
	require.NoError(t, err)
	assert.Same(t, first, got)

	p.Set(second)
	got, err = p.Get()
	require.NoError(t, err)
	assert.Same(t, second, got)

	p.Set(nil)
	_, err = p.Get()
	assert.ErrorIs(t, err, repository.ErrDataAccessUnconfigured)
}

func TestPointConcurrentAccess(t *testing.T) {
	p := &Point{}
	provider := sqlite.NewProvider()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			p.Set(provider)
		}()
		go func() {
			defer wg.Done()
			p.Get()
		}()
	}
	wg.Wait()

	got, err := p.Get()
	require.NoError(t, err)
	assert.Same(t, provider, got)
}

func TestNilPoint(t *testing.T) {
	var p *Point

	_, err := p.Get()
	assert.ErrorIs(t, err, repository.ErrDataAccessUnconfigured)
	assert.False(t, p.Configured())
}
