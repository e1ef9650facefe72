package idmap_test

import (
	"testing"

	"github.com/dalemusser/cityseva/internal/app/migration/idmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMapper_PutLookup(t *testing.T) {
	m := idmap.New()
	doc := primitive.NewObjectID()

	got, inserted := m.Put(idmap.Users, 1, doc)
	assert.True(t, inserted)
	assert.Equal(t, doc, got)

	id, ok := m.Lookup(idmap.Users, 1)
	require.True(t, ok)
	assert.Equal(t, doc, id)

	_, ok = m.Lookup(idmap.Users, 2)
	assert.False(t, ok)
	_, ok = m.Lookup(idmap.Categories, 1)
	assert.False(t, ok, "tables are per kind")
}

func TestMapper_PutNeverOverwrites(t *testing.T) {
	m := idmap.New()
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()

	m.Put(idmap.Complaints, 9, first)
	got, inserted := m.Put(idmap.Complaints, 9, second)

	assert.False(t, inserted)
	assert.Equal(t, first, got)
	id, _ := m.Lookup(idmap.Complaints, 9)
	assert.Equal(t, first, id)
	assert.Equal(t, 1, m.Len(idmap.Complaints))
}

func TestMapper_UntrackedKindIgnored(t *testing.T) {
	m := idmap.New()
	_, inserted := m.Put(idmap.Kind("feedback"), 1, primitive.NewObjectID())
	assert.False(t, inserted)
	assert.False(t, m.Tracks(idmap.Kind("feedback")))
	assert.True(t, m.Tracks(idmap.Users))
}

func TestMapper_Snapshot(t *testing.T) {
	m := idmap.New()
	u := primitive.NewObjectID()
	m.Put(idmap.Users, 42, u)

	snap := m.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, map[string]string{"42": u.Hex()}, snap["users"])
	assert.Empty(t, snap["categories"])
	assert.NotNil(t, snap["complaints"])
}
