package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SylphxAI/flux/schema"
	"github.com/SylphxAI/flux/value"
)

func mustParse(t *testing.T, s string) value.Value {
	t.Helper()
	v, err := value.Parse([]byte(s))
	require.NoError(t, err)

	return v
}

func TestInferScalarTags(t *testing.T) {
	v := mustParse(t, `{"id":1,"price":3.5,"active":true,"name":"bob","tags":null}`)
	s := schema.InferSchema(v)

	require.Len(t, s.Fields, 5)
	assert.Equal(t, schema.TagInt, s.Fields[0].Type.Tag)
	assert.Equal(t, schema.TagFloat, s.Fields[1].Type.Tag)
	assert.Equal(t, schema.TagBool, s.Fields[2].Type.Tag)
	assert.Equal(t, schema.TagString, s.Fields[3].Type.Tag)
	assert.Equal(t, schema.TagNull, s.Fields[4].Type.Tag)
	assert.True(t, s.Fields[4].Nullable)
}

func TestInferExtendedStringTags(t *testing.T) {
	v := mustParse(t, `{
		"id":"550e8400-e29b-41d4-a716-446655440000",
		"created":"2024-01-15T10:30:00Z",
		"day":"2024-01-15",
		"amount":"19.99",
		"label":"plain"
	}`)
	s := schema.InferSchema(v)

	require.Len(t, s.Fields, 5)
	assert.Equal(t, schema.TagUUID, s.Fields[0].Type.Tag)
	assert.Equal(t, schema.TagTimestamp, s.Fields[1].Type.Tag)
	assert.Equal(t, schema.TagDate, s.Fields[2].Type.Tag)
	assert.Equal(t, schema.TagDecimal, s.Fields[3].Type.Tag)
	assert.Equal(t, schema.TagString, s.Fields[4].Type.Tag)
}

func TestInferNestedObjectAndArray(t *testing.T) {
	v := mustParse(t, `{"user":{"id":1,"name":"a"},"scores":[1,2,3]}`)
	s := schema.InferSchema(v)

	require.Len(t, s.Fields, 2)
	assert.Equal(t, schema.TagObject, s.Fields[0].Type.Tag)
	require.NotNil(t, s.Fields[0].Type.Nested)
	assert.Len(t, s.Fields[0].Type.Nested.Fields, 2)

	assert.Equal(t, schema.TagArray, s.Fields[1].Type.Tag)
	require.NotNil(t, s.Fields[1].Type.Elem)
	assert.Equal(t, schema.TagInt, s.Fields[1].Type.Elem.Tag)
}

func TestHashStableAcrossEqualSchemas(t *testing.T) {
	v1 := mustParse(t, `{"id":1,"name":"a"}`)
	v2 := mustParse(t, `{"id":2,"name":"b"}`)

	s1 := schema.InferSchema(v1)
	s2 := schema.InferSchema(v2)

	assert.Equal(t, s1.Hash, s2.Hash)
	assert.True(t, schema.Equal(*s1, *s2))
}

func TestHashDiffersOnFieldNameOrType(t *testing.T) {
	base := schema.InferSchema(mustParse(t, `{"id":1,"name":"a"}`))
	renamed := schema.InferSchema(mustParse(t, `{"id":1,"title":"a"}`))
	retyped := schema.InferSchema(mustParse(t, `{"id":"1","name":"a"}`))

	assert.NotEqual(t, base.Hash, renamed.Hash)
	assert.NotEqual(t, base.Hash, retyped.Hash)
}

func TestMergeTypeNullWidening(t *testing.T) {
	a := schema.FieldType{Tag: schema.TagNull}
	b := schema.FieldType{Tag: schema.TagInt}
	assert.Equal(t, schema.TagInt, schema.MergeType(a, b).Tag)
	assert.Equal(t, schema.TagInt, schema.MergeType(b, a).Tag)
}

func TestMergeTypeIntFloatWidensToFloat(t *testing.T) {
	a := schema.FieldType{Tag: schema.TagInt}
	b := schema.FieldType{Tag: schema.TagFloat}
	assert.Equal(t, schema.TagFloat, schema.MergeType(a, b).Tag)
}

func TestMergeTypeDisagreementBecomesUnion(t *testing.T) {
	a := schema.FieldType{Tag: schema.TagBool}
	b := schema.FieldType{Tag: schema.TagString}
	merged := schema.MergeType(a, b)

	require.Equal(t, schema.TagUnion, merged.Tag)
	require.Len(t, merged.Members, 2)
}

func TestMergeSchemaFieldPresenceBecomesNullable(t *testing.T) {
	s1 := schema.InferSchema(mustParse(t, `{"id":1,"name":"a"}`))
	s2 := schema.InferSchema(mustParse(t, `{"id":2,"extra":true}`))

	merged := schema.Merge(s1, s2)

	var name, extra *schema.FieldDef
	for i := range merged.Fields {
		switch merged.Fields[i].Name {
		case "name":
			name = &merged.Fields[i]
		case "extra":
			extra = &merged.Fields[i]
		}
	}

	require.NotNil(t, name)
	require.NotNil(t, extra)
	assert.True(t, name.Nullable)
	assert.True(t, extra.Nullable)
}
