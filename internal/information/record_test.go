package information

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infostore/internal/access"
	"infostore/internal/domain"
	"infostore/internal/repository"
	"infostore/internal/repository/sqlite"
)

// countingAccess counts Get calls made through it
type countingAccess struct {
	repository.DataAccess
	gets int
}

func (c *countingAccess) Get(ctx context.Context, id uuid.UUID) (*domain.Information, error) {
	c.gets++
	return c.DataAccess.Get(ctx, id)
}

// setupTestStore opens an in-memory store behind a counting access point
func setupTestStore(t *testing.T) (*access.Point, *countingAccess) {
	t.Helper()
	provider := sqlite.NewProvider()
	require.NoError(t, provider.Open(context.Background(), &sqlite.ConnectionInfo{Path: sqlite.MemoryPath}))
	t.Cleanup(func() { provider.Release() })

	counter := &countingAccess{DataAccess: provider}
	return access.NewPoint(counter), counter
}

func save(t *testing.T, point *access.Point, info *domain.Information) *Record {
	t.Helper()
	r := New(point, info)
	require.NoError(t, r.Save(context.Background()))
	require.True(t, r.IsStored())
	return r
}

func TestUnconfiguredAccess(t *testing.T) {
	ctx := context.Background()
	r := New(&access.Point{}, domain.NewChild(uuid.New(), "contains", 0))

	_, err := r.Parent(ctx)
	assert.ErrorIs(t, err, repository.ErrDataAccessUnconfigured)
	assert.ErrorIs(t, r.Save(ctx), repository.ErrDataAccessUnconfigured)

	_, err = Load(ctx, nil, uuid.New())
	assert.ErrorIs(t, err, repository.ErrDataAccessUnconfigured)

	_, err = repository.Collect(r.Children(ctx))
	assert.ErrorIs(t, err, repository.ErrDataAccessUnconfigured)
}

func TestParentCache(t *testing.T) {
	ctx := context.Background()
	point, counter := setupTestStore(t)

	parent := save(t, point, domain.NewInformation("parent", ""))
	other := save(t, point, domain.NewInformation("other", ""))
	child := save(t, point, domain.NewChild(parent.ID, "contains", 0))

	t.Run("first read resolves", func(t *testing.T) {
		counter.gets = 0
		got, err := child.Parent(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, parent.ID, got.ID)
		assert.Equal(t, 1, counter.gets)
	})

	t.Run("unchanged id is a cache hit", func(t *testing.T) {
		counter.gets = 0
		got, err := child.Parent(ctx)
		require.NoError(t, err)
		assert.Equal(t, parent.ID, got.ID)
		assert.Zero(t, counter.gets)
	})

	t.Run("reassigned id resolves again", func(t *testing.T) {
		counter.gets = 0
		child.ParentID = other.ID
		got, err := child.Parent(ctx)
		require.NoError(t, err)
		assert.Equal(t, other.ID, got.ID)
		assert.Equal(t, 1, counter.gets)
	})

	t.Run("discard forces resolution", func(t *testing.T) {
		counter.gets = 0
		child.DiscardCache()
		_, err := child.Parent(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, counter.gets)
	})
}

func TestRelationCacheHitOnAbsence(t *testing.T) {
	ctx := context.Background()
	point, counter := setupTestStore(t)

	t.Run("zero id needs no access", func(t *testing.T) {
		counter.gets = 0
		root := New(point, domain.NewInformation("root", ""))

		for i := 0; i < 2; i++ {
			got, err := root.Parent(ctx)
			require.NoError(t, err)
			assert.Nil(t, got)

			got, err = root.CloneFrom(ctx)
			require.NoError(t, err)
			assert.Nil(t, got)
		}
		assert.Zero(t, counter.gets)
	})

	t.Run("missing record is cached as absent", func(t *testing.T) {
		counter.gets = 0
		dangling := New(point, &domain.Information{ContentFromID: uuid.New()})

		got, err := dangling.CloneFrom(ctx)
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.Equal(t, 1, counter.gets)

		got, err = dangling.CloneFrom(ctx)
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.Equal(t, 1, counter.gets)

		dangling.DiscardCache()
		_, err = dangling.CloneFrom(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, counter.gets)
	})
}

func TestCloneFromCacheIsIndependent(t *testing.T) {
	ctx := context.Background()
	point, counter := setupTestStore(t)

	parent := save(t, point, domain.NewInformation("parent", ""))
	origin := save(t, point, domain.NewInformation("origin", "shared"))
	clone := save(t, point, &domain.Information{ParentID: parent.ID, ContentFromID: origin.ID})

	_, err := clone.Parent(ctx)
	require.NoError(t, err)
	_, err = clone.CloneFrom(ctx)
	require.NoError(t, err)

	counter.gets = 0
	clone.ParentID = uuid.Nil
	got, err := clone.CloneFrom(ctx)
	require.NoError(t, err)
	assert.Equal(t, origin.ID, got.ID)

	p, err := clone.Parent(ctx)
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Zero(t, counter.gets)
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	point, _ := setupTestStore(t)

	r := save(t, point, domain.NewInformation("draft", "v1"))

	r.Description = "final"
	r.Content = "v2"
	require.NoError(t, r.Save(ctx))

	loaded, err := Load(ctx, point, r.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, r.Information, loaded.Information)

	// Save with a known but unstored id creates it.
	explicit := New(point, &domain.Information{ID: uuid.New(), Description: "explicit"})
	require.NoError(t, explicit.Save(ctx))
	found, err := explicit.Load(ctx)
	require.NoError(t, err)
	assert.True(t, found)

	missing, err := Load(ctx, point, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRecordLoadRefreshes(t *testing.T) {
	ctx := context.Background()
	point, _ := setupTestStore(t)
	r := save(t, point, domain.NewInformation("stored", ""))

	r.Description = "local edit"
	found, err := r.Load(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "stored", r.Description)

	unsaved := New(point, domain.NewInformation("unsaved", ""))
	found, err = unsaved.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "unsaved", unsaved.Description)
}

func TestTreeOperations(t *testing.T) {
	ctx := context.Background()
	point, _ := setupTestStore(t)

	root := save(t, point, domain.NewInformation("root", ""))
	a := save(t, point, domain.NewChild(root.ID, "contains", 0))
	b := save(t, point, domain.NewChild(root.ID, "contains", 1))
	save(t, point, domain.NewChild(a.ID, "contains", 0))

	has, err := root.HasChildren(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	children, err := repository.Collect(root.Children(ctx))
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a.ID, b.ID}, children)

	deleted, err := b.Delete(ctx)
	require.NoError(t, err)
	assert.True(t, deleted)

	n, err := root.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestCloneOperations(t *testing.T) {
	ctx := context.Background()
	point, _ := setupTestStore(t)

	origin := save(t, point, &domain.Information{Content: "42", ContentType: domain.ContentTypeNumeric})
	middle := save(t, point, &domain.Information{Content: "stale", ContentFromID: origin.ID})
	tail := save(t, point, &domain.Information{ContentFromID: middle.ID})

	clones, err := repository.Collect(origin.Clones(ctx))
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{middle.ID}, clones)

	resolved, err := tail.Origin(ctx)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, origin.ID, resolved.ID)

	self, err := origin.Origin(ctx)
	require.NoError(t, err)
	assert.Same(t, origin, self)

	content, kind, err := tail.EffectiveContent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "42", content)
	assert.Equal(t, domain.ContentTypeNumeric, kind)

	unsaved := New(point, &domain.Information{ContentFromID: middle.ID})
	content, _, err = unsaved.EffectiveContent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "42", content)
}

func TestEffectiveContentOfCycleFallsBack(t *testing.T) {
	ctx := context.Background()
	point, _ := setupTestStore(t)

	a := save(t, point, &domain.Information{Content: "mine"})
	b := save(t, point, &domain.Information{Content: "theirs", ContentFromID: a.ID})
	a.ContentFromID = b.ID
	require.NoError(t, a.Save(ctx))

	origin, err := a.Origin(ctx)
	require.NoError(t, err)
	assert.Nil(t, origin)

	content, _, err := a.EffectiveContent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "mine", content)
}
