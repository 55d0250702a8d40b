package codec

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infostore/internal/domain"
	"infostore/internal/repository"
	"infostore/internal/repository/sqldb"
	"infostore/internal/repository/sqlite"
)

func openStore(t *testing.T) *sqldb.Provider {
	t.Helper()
	p := sqlite.NewProvider()
	require.NoError(t, p.Open(context.Background(), &sqlite.ConnectionInfo{Path: sqlite.MemoryPath}))
	t.Cleanup(func() { p.Release() })
	return p
}

// seed builds a root with two children, the second cloning the first
func seed(t *testing.T, da repository.DataAccess) (root, first, second uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	var err error

	root, err = da.Create(ctx, domain.NewInformation("catalog", ""))
	require.NoError(t, err)

	firstInfo := domain.NewChild(root, "contains", 0)
	firstInfo.Description = "price"
	firstInfo.Content = "12.5"
	firstInfo.ContentType = domain.ContentTypeNumeric
	first, err = da.Create(ctx, firstInfo)
	require.NoError(t, err)

	secondInfo := domain.NewChild(root, "contains", 1)
	secondInfo.Description = "price copy"
	secondInfo.ContentFromID = first
	second, err = da.Create(ctx, secondInfo)
	require.NoError(t, err)
	return root, first, second
}

func TestForFormat(t *testing.T) {
	assert.Equal(t, "yaml", ForFormat("yaml", Options{}).Format())
	assert.Equal(t, "yaml", ForFormat("yml", Options{}).Format())
	assert.Equal(t, "json", ForFormat("json", Options{}).Format())
	assert.Nil(t, ForFormat("ansible", Options{}))
}

func TestYAMLExport(t *testing.T) {
	ctx := context.Background()
	src := openStore(t)
	root, first, second := seed(t, src)

	var buf bytes.Buffer
	require.NoError(t, NewYAMLCodec(Options{}).Export(ctx, src, []uuid.UUID{root}, &buf))

	expected := "records:\n" +
		"  - id: " + root.String() + "\n" +
		"    description: catalog\n" +
		"    children:\n" +
		"      - id: " + first.String() + "\n" +
		"        description: price\n" +
		"        content: \"12.5\"\n" +
		"        content_type: Numeric\n" +
		"        relation: contains\n" +
		"      - id: " + second.String() + "\n" +
		"        description: price copy\n" +
		"        relation: contains\n" +
		"        order: 1\n" +
		"        content_from: " + first.String() + "\n"
	assert.Equal(t, expected, buf.String())
}

func TestExportMissingRoot(t *testing.T) {
	src := openStore(t)

	err := NewYAMLCodec(Options{}).Export(context.Background(), src, []uuid.UUID{uuid.New()}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "not found")
}

func TestRoundTrip(t *testing.T) {
	for _, format := range []string{"yaml", "json"} {
		t.Run(format, func(t *testing.T) {
			ctx := context.Background()
			src := openStore(t)
			root, first, second := seed(t, src)
			codec := ForFormat(format, Options{})

			var buf bytes.Buffer
			require.NoError(t, codec.Export(ctx, src, []uuid.UUID{root}, &buf))

			dst := openStore(t)
			result, err := codec.Import(ctx, dst, uuid.Nil, &buf)
			require.NoError(t, err)
			assert.Equal(t, 3, result.Created)
			assert.Equal(t, 1, result.CloneLinks)
			assert.Empty(t, result.IDs)

			for _, id := range []uuid.UUID{root, first, second} {
				want, err := src.Get(ctx, id)
				require.NoError(t, err)
				got, err := dst.Get(ctx, id)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestImportFreshIDs(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	root, first, _ := seed(t, store)

	var buf bytes.Buffer
	require.NoError(t, NewJSONCodec(Options{}).Export(ctx, store, []uuid.UUID{root}, &buf))

	result, err := NewJSONCodec(Options{FreshIDs: true}).Import(ctx, store, uuid.Nil, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Created)
	require.Len(t, result.IDs, 3)

	copied := result.IDs[first.String()]
	clones, err := repository.Collect(store.ContentTo(ctx, copied))
	require.NoError(t, err)
	require.Len(t, clones, 1)

	clone, err := store.Get(ctx, clones[0])
	require.NoError(t, err)
	assert.Equal(t, result.IDs[root.String()], clone.ParentID)

	roots, err := repository.Collect(store.Roots(ctx))
	require.NoError(t, err)
	assert.Len(t, roots, 2)
}

func TestImportBelowParent(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	parent, err := store.Create(ctx, domain.NewInformation("inbox", ""))
	require.NoError(t, err)

	doc := `
records:
  - description: note
    content: hello
  - description: echo
    content_from: 7f1c2a5e-0000-4000-8000-000000000001
  - id: 7f1c2a5e-0000-4000-8000-000000000001
    description: source
    order: 2
`
	result, err := NewYAMLCodec(Options{}).Import(ctx, store, parent, strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Created)
	assert.Equal(t, 1, result.CloneLinks)

	children, err := repository.Collect(store.Children(ctx, parent))
	require.NoError(t, err)
	assert.Len(t, children, 3)

	source := uuid.MustParse("7f1c2a5e-0000-4000-8000-000000000001")
	has, err := store.HasContentTo(ctx, source)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestImportErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		doc      string
		contains string
	}{
		{name: "malformed yaml", doc: "records: [", contains: "failed to parse YAML"},
		{name: "unknown field", doc: "records:\n  - label: x\n", contains: "failed to parse YAML"},
		{name: "invalid id", doc: "records:\n  - id: nope\n", contains: "invalid id"},
		{name: "invalid clone link", doc: "records:\n  - content_from: nope\n", contains: "invalid content_from"},
		{name: "missing clone origin", doc: "records:\n  - content_from: " + uuid.NewString() + "\n", contains: "failed to link"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := openStore(t)
			_, err := NewYAMLCodec(Options{}).Import(ctx, store, uuid.Nil, strings.NewReader(tt.doc))
			assert.ErrorContains(t, err, tt.contains)
		})
	}
}

func TestImportDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	root, _, _ := seed(t, store)

	var buf bytes.Buffer
	require.NoError(t, NewYAMLCodec(Options{}).Export(ctx, store, []uuid.UUID{root}, &buf))

	result, err := NewYAMLCodec(Options{}).Import(ctx, store, uuid.Nil, &buf)
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)
	assert.Zero(t, result.Created)
}
