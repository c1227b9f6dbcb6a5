package schemacache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SylphxAI/flux/schema"
	"github.com/SylphxAI/flux/schemacache"
	"github.com/SylphxAI/flux/value"
)

func schemaOf(t *testing.T, js string) schema.Schema {
	t.Helper()
	v, err := value.Parse([]byte(js))
	require.NoError(t, err)

	return *schema.InferSchema(v)
}

func TestRegisterNewSchemaNeedsDefine(t *testing.T) {
	c := schemacache.New(0)
	s := schemaOf(t, `{"id":1,"name":"a"}`)

	reg, err := c.Register(s)
	require.NoError(t, err)
	assert.True(t, reg.NeedsDefine)
	assert.Equal(t, uint32(1), reg.ID)
}

func TestRegisterSameSchemaTwiceReusesID(t *testing.T) {
	c := schemacache.New(0)
	s1 := schemaOf(t, `{"id":1,"name":"a"}`)
	s2 := schemaOf(t, `{"id":2,"name":"b"}`)

	reg1, err := c.Register(s1)
	require.NoError(t, err)

	reg2, err := c.Register(s2)
	require.NoError(t, err)

	assert.Equal(t, reg1.ID, reg2.ID)
	assert.False(t, reg2.NeedsDefine)
}

func TestRegisterDistinctSchemasGetDistinctIDs(t *testing.T) {
	c := schemacache.New(0)
	s1 := schemaOf(t, `{"id":1}`)
	s2 := schemaOf(t, `{"name":"a"}`)

	reg1, err := c.Register(s1)
	require.NoError(t, err)
	reg2, err := c.Register(s2)
	require.NoError(t, err)

	assert.NotEqual(t, reg1.ID, reg2.ID)
}

func TestLookupUnknownID(t *testing.T) {
	c := schemacache.New(0)
	_, err := c.Lookup(42)
	require.Error(t, err)
}

func TestLookupReservedZero(t *testing.T) {
	c := schemacache.New(0)
	_, err := c.Lookup(0)
	require.Error(t, err)
}

func TestRegisterEvictsLRUAtCapacity(t *testing.T) {
	c := schemacache.New(2)

	s1 := schemaOf(t, `{"a":1}`)
	s2 := schemaOf(t, `{"b":1}`)
	s3 := schemaOf(t, `{"c":1}`)

	reg1, err := c.Register(s1)
	require.NoError(t, err)
	_, err = c.Register(s2)
	require.NoError(t, err)

	// touch s1 so s2 becomes the LRU victim
	_, err = c.Lookup(reg1.ID)
	require.NoError(t, err)

	reg3, err := c.Register(s3)
	require.NoError(t, err)
	assert.True(t, reg3.DidEvict)

	assert.Equal(t, 2, c.Len())
	_, err = c.Lookup(reg1.ID)
	assert.NoError(t, err)
}
