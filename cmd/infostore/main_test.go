package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infostore/internal/config"
	"infostore/internal/domain"
)

// withTestStore points the commands at a fresh SQLite store and captures
// their output
func withTestStore(t *testing.T) *bytes.Buffer {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "infostore.yaml")
	cfg := config.DefaultConfig()
	cfg.SQLite.Path = filepath.Join(dir, "info.db")
	require.NoError(t, cfg.Save(cfgPath))

	savedCfg, savedOut := *baseCfg, out
	t.Cleanup(func() {
		*baseCfg = savedCfg
		out = savedOut
	})

	baseCfg.Store = storeConfig{Config: cfgPath}
	buf := &bytes.Buffer{}
	out = buf
	return buf
}

func ptr[T any](v T) *T {
	return &v
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AutoCreate = false

	applyOverrides(cfg, storeConfig{
		Backend:    "postgres",
		DSN:        "postgres://db/",
		Database:   "info",
		AutoCreate: "true",
		PageSize:   50,
	}, LogConfig{Level: "debug"})

	assert.Equal(t, config.BackendPostgres, cfg.Backend)
	assert.Equal(t, "postgres://db/", cfg.Postgres.DSN)
	assert.Equal(t, "info", cfg.Postgres.Database)
	assert.True(t, cfg.AutoCreate)
	assert.Equal(t, 50, cfg.DeletePageSize)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "./infostore.db", cfg.SQLite.Path)

	applyOverrides(cfg, storeConfig{AutoCreate: "false"}, LogConfig{})
	assert.False(t, cfg.AutoCreate)

	applyOverrides(cfg, storeConfig{}, LogConfig{})
	assert.False(t, cfg.AutoCreate, "an unset flag keeps the config value")
}

func TestAutoCreateFlag(t *testing.T) {
	for _, tt := range []struct {
		args     []string
		expected string
	}{
		{nil, ""},
		{[]string{"--auto-create"}, "true"},
		{[]string{"--auto-create=false"}, "false"},
		{[]string{"--auto-create=true"}, "true"},
	} {
		var store storeConfig
		_, err := flags.ParseArgs(&store, tt.args)
		require.NoError(t, err, "%v", tt.args)
		assert.Equal(t, tt.expected, store.AutoCreate, "%v", tt.args)
	}

	var store storeConfig
	_, err := flags.ParseArgs(&store, []string{"--auto-create=maybe"})
	assert.Error(t, err)
}

func TestFieldFlagsApply(t *testing.T) {
	parent := uuid.New()
	info := &domain.Information{Description: "keep", ContentFromID: uuid.New()}

	flags := FieldFlags{
		Content:     ptr("7"),
		ContentType: ptr("numeric"),
		Parent:      ptr(parent.String()),
		Order:       ptr(int64(2)),
		CloneFrom:   ptr(""),
	}
	require.NoError(t, flags.apply(info))

	assert.Equal(t, "keep", info.Description)
	assert.Equal(t, "7", info.Content)
	assert.Equal(t, domain.ContentTypeNumeric, info.ContentType)
	assert.Equal(t, parent, info.ParentID)
	assert.Equal(t, int64(2), info.SiblingOrder)
	assert.Equal(t, uuid.Nil, info.ContentFromID)

	bad := FieldFlags{Parent: ptr("not-an-id")}
	assert.ErrorContains(t, bad.apply(info), `invalid parent "not-an-id"`)
}

func TestCommands(t *testing.T) {
	buf := withTestStore(t)

	require.NoError(t, (&cmdInit{}).Execute(nil))
	assert.Contains(t, buf.String(), "Backend: sqlite")

	create := func(cmd *cmdCreate) uuid.UUID {
		buf.Reset()
		require.NoError(t, cmd.Execute(nil))
		id, err := uuid.Parse(strings.TrimSpace(buf.String()))
		require.NoError(t, err)
		return id
	}

	root := create(&cmdCreate{FieldFlags: FieldFlags{Description: ptr("root")}})
	origin := create(&cmdCreate{FieldFlags: FieldFlags{
		Description: ptr("origin"),
		Content:     ptr("42"),
		ContentType: ptr("Numeric"),
		Parent:      ptr(root.String()),
	}})
	clone := create(&cmdCreate{FieldFlags: FieldFlags{
		Description: ptr("clone"),
		Parent:      ptr(root.String()),
		Order:       ptr(int64(1)),
		CloneFrom:   ptr(origin.String()),
	}})

	t.Run("get resolves clone content", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, (&cmdGet{Format: "json", Args: idArg{ID: clone.String()}}).Execute(nil))

		var v view
		require.NoError(t, json.Unmarshal(buf.Bytes(), &v))
		assert.Equal(t, "clone", v.Description)
		assert.Equal(t, root.String(), v.Parent)
		assert.Equal(t, "42", v.EffectiveContent)
		assert.Equal(t, "Numeric", v.EffectiveContentType)
	})

	t.Run("get table", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, (&cmdGet{Format: "table", Args: idArg{ID: root.String()}}).Execute(nil))
		assert.Contains(t, buf.String(), "root")
		assert.Contains(t, buf.String(), "<none>")
	})

	t.Run("update keeps unset fields", func(t *testing.T) {
		cmd := &cmdUpdate{FieldFlags: FieldFlags{Content: ptr("43")}, Args: idArg{ID: origin.String()}}
		require.NoError(t, cmd.Execute(nil))

		buf.Reset()
		require.NoError(t, (&cmdGet{Format: "json", Args: idArg{ID: origin.String()}}).Execute(nil))
		var v view
		require.NoError(t, json.Unmarshal(buf.Bytes(), &v))
		assert.Equal(t, "origin", v.Description)
		assert.Equal(t, "43", v.Content)
	})

	t.Run("origin", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, (&cmdOrigin{Args: idArg{ID: clone.String()}}).Execute(nil))
		assert.Equal(t, origin.String()+"\n", buf.String())
	})

	t.Run("children and clones", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, (&cmdChildren{Args: idArg{ID: root.String()}}).Execute(nil))
		assert.Contains(t, buf.String(), origin.String())
		assert.Contains(t, buf.String(), clone.String())

		buf.Reset()
		require.NoError(t, (&cmdClones{Args: idArg{ID: origin.String()}}).Execute(nil))
		assert.Contains(t, buf.String(), clone.String())
		assert.NotContains(t, buf.String(), root.String())
	})

	t.Run("export and import", func(t *testing.T) {
		docPath := filepath.Join(t.TempDir(), "tree.yaml")
		require.NoError(t, (&cmdExport{Format: "yaml", Output: docPath}).Execute(nil))

		doc, err := os.ReadFile(docPath)
		require.NoError(t, err)
		assert.Contains(t, string(doc), "content_from: "+origin.String())

		buf.Reset()
		cmd := &cmdImport{Format: "yaml", FreshIDs: true}
		cmd.Args.Path = docPath
		require.NoError(t, cmd.Execute(nil))
		assert.Equal(t, "imported 3 records, 1 clone link\n", buf.String())
	})

	t.Run("delete refuses parents without cascade", func(t *testing.T) {
		err := (&cmdDelete{Args: idArg{ID: root.String()}}).Execute(nil)
		assert.Error(t, err)

		buf.Reset()
		require.NoError(t, (&cmdDelete{Cascade: true, Args: idArg{ID: root.String()}}).Execute(nil))
		assert.Equal(t, "deleted 3 records\n", buf.String())
	})

	t.Run("missing record", func(t *testing.T) {
		err := (&cmdGet{Format: "table", Args: idArg{ID: uuid.NewString()}}).Execute(nil)
		assert.ErrorContains(t, err, "not found")
	})
}

func TestOpenStoreDeniedWithoutAutoCreate(t *testing.T) {
	withTestStore(t)
	cfg, err := loadConfig()
	require.NoError(t, err)
	cfg.AutoCreate = false
	require.NoError(t, cfg.Save(baseCfg.Store.Config))

	err = (&cmdRoots{}).Execute(nil)
	assert.ErrorContains(t, err, "creation is not permitted")
}
