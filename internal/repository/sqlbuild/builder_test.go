package sqlbuild

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infostore/internal/domain"
	"infostore/internal/repository/naming"
)

func TestNamedDialectGet(t *testing.T) {
	b := New(NamedDialect{}, nil)
	id := uuid.New()

	st := b.Get(id)

	assert.Equal(t, "get", st.Op)
	assert.Equal(t, `SELECT "Id", "Description", "Content", "ContentType", "ParentId", "ParentRelation", "ContentFromId", "SiblingOrder" FROM "Information" WHERE "Id" = @Id`, st.Text)
	assert.Equal(t, []any{sql.Named("Id", id.String())}, st.Args)
}

func TestOrdinalDialectUpdate(t *testing.T) {
	b := New(OrdinalDialect{}, nil)
	info := &domain.Information{
		ID:           uuid.New(),
		Description:  "d",
		Content:      "42",
		ContentType:  domain.ContentTypeNumeric,
		ParentID:     uuid.New(),
		SiblingOrder: 7,
	}

	st := b.Update(info)

	assert.Equal(t, `UPDATE "Information" SET "Description" = $1, "Content" = $2, "ContentType" = $3, "ParentId" = $4, "ParentRelation" = $5, "ContentFromId" = $6, "SiblingOrder" = $7 WHERE "Id" = $8`, st.Text)
	assert.Equal(t, []any{"d", "42", "Numeric", info.ParentID.String(), "", nil, int64(7), info.ID.String()}, st.Args)
}

func TestInsertBindsZeroReferencesAsNull(t *testing.T) {
	b := New(OrdinalDialect{}, nil)
	info := domain.NewInformation("root", "body")
	info.ID = uuid.New()

	st := b.Insert(info)

	assert.Equal(t, `INSERT INTO "Information" ("Id", "Description", "Content", "ContentType", "ParentId", "ParentRelation", "ContentFromId", "SiblingOrder") VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, st.Text)
	require.Len(t, st.Args, 8)
	assert.Equal(t, info.ID.String(), st.Args[0])
	assert.Nil(t, st.Args[4])
	assert.Nil(t, st.Args[6])
	assert.Equal(t, int64(0), st.Args[7])
}

func TestDeleteMany(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	t.Run("named", func(t *testing.T) {
		st := New(NamedDialect{}, nil).DeleteMany(ids)
		assert.Equal(t, `DELETE FROM "Information" WHERE "Id" IN (@Id0, @Id1, @Id2)`, st.Text)
		assert.Equal(t, sql.Named("Id2", ids[2].String()), st.Args[2])
	})

	t.Run("ordinal", func(t *testing.T) {
		st := New(OrdinalDialect{}, nil).DeleteMany(ids)
		assert.Equal(t, `DELETE FROM "Information" WHERE "Id" IN ($1, $2, $3)`, st.Text)
		assert.Equal(t, []any{ids[0].String(), ids[1].String(), ids[2].String()}, st.Args)
	})
}

func TestRelationListings(t *testing.T) {
	b := New(NamedDialect{}, nil)
	id := uuid.New()

	assert.Equal(t, `SELECT 1 FROM "Information" WHERE "ParentId" = @ParentId LIMIT 1`, b.HasChildren(id).Text)
	assert.Equal(t, `SELECT "Id" FROM "Information" WHERE "ParentId" = @ParentId ORDER BY "SiblingOrder", "Id"`, b.Children(id).Text)
	assert.Equal(t, `SELECT 1 FROM "Information" WHERE "ContentFromId" = @ContentFromId LIMIT 1`, b.HasContentTo(id).Text)
	assert.Equal(t, `SELECT "Id" FROM "Information" WHERE "ContentFromId" = @ContentFromId ORDER BY "SiblingOrder", "Id"`, b.ContentTo(id).Text)
	assert.Equal(t, `SELECT "ContentFromId" FROM "Information" WHERE "Id" = @Id`, b.ContentFromOf(id).Text)
	assert.Equal(t, `SELECT "Id" FROM "Information" WHERE "ParentId" IS NULL ORDER BY "SiblingOrder", "Id"`, b.Roots().Text)
	assert.Empty(t, b.Roots().Args)
}

func TestSchemaFollowsNaming(t *testing.T) {
	names := &naming.Names{
		TableName: "Nodes",
		Overrides: map[naming.Column]string{naming.ColumnContentFromID: "CloneFromId"},
	}
	b := New(OrdinalDialect{}, names)

	table := b.CreateTable().Text
	assert.Contains(t, table, `CREATE TABLE IF NOT EXISTS "Nodes"`)
	assert.Contains(t, table, `"CloneFromId" TEXT NULL`)
	assert.Contains(t, table, `"SiblingOrder" BIGINT NOT NULL DEFAULT 0`)
	assert.Contains(t, table, `"ContentType" TEXT NOT NULL DEFAULT 'Text'`)
	assert.Contains(t, table, `CONSTRAINT "FK_Nodes_CloneFromId" FOREIGN KEY ("CloneFromId") REFERENCES "Nodes" ("Id") ON DELETE RESTRICT`)
	assert.NotContains(t, table, "ContentFromId")

	indexes := b.CreateIndexes()
	require.Len(t, indexes, 2)
	assert.Equal(t, `CREATE INDEX IF NOT EXISTS "IX_Nodes_ParentId_SiblingOrder" ON "Nodes" ("ParentId", "SiblingOrder")`, indexes[0].Text)
	assert.Equal(t, `CREATE INDEX IF NOT EXISTS "IX_Nodes_CloneFromId" ON "Nodes" ("CloneFromId")`, indexes[1].Text)
}

func TestNamedDialectIntegerType(t *testing.T) {
	assert.Equal(t, "INTEGER", NamedDialect{}.ColumnType(KindInteger))
	assert.Equal(t, "BIGINT", NamedDialect{IntegerType: "BIGINT"}.ColumnType(KindInteger))
	assert.Equal(t, "TEXT", NamedDialect{}.ColumnType(KindText))
}

func TestQuoteEscapes(t *testing.T) {
	assert.Equal(t, `"a""b"`, NamedDialect{}.Quote(`a"b`))
}
