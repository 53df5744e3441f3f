package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestParseDocumentNumbers(t *testing.T) {
	doc, err := ParseDocument(`{"small":1,"big":3000000000,"real":1.5}`)
	require.NoError(t, err)

	assert.Equal(t, []string{"small", "big", "real"}, doc.Keys())

	small, _ := doc.Lookup("small")
	assert.Equal(t, int32(1), small)

	big, _ := doc.Lookup("big")
	assert.Equal(t, int64(3000000000), big)

	decimal, _ := doc.Lookup("real")
	assert.Equal(t, 1.5, decimal)
}

func TestParseDocumentNested(t *testing.T) {
	doc, err := ParseDocument(`{"user":{"name":"a","tags":["x","y"]},"gone":null,"ok":true}`)
	require.NoError(t, err)

	user, ok := doc.Lookup("user")
	require.True(t, ok)
	assert.Equal(t, bson.D{{Key: "name", Value: "a"}, {Key: "tags", Value: bson.A{"x", "y"}}}, user)

	gone, ok := doc.Lookup("gone")
	assert.True(t, ok)
	assert.Nil(t, gone)

	flag, _ := doc.Lookup("ok")
	assert.Equal(t, true, flag)
}

func TestParseDocumentAcceptsCommentsAndTrailingCommas(t *testing.T) {
	doc, err := ParseDocument(`{/* owner */"name":"a","age":1,}`)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"a","age":1}`, doc.String())
}

func TestParseDocumentEmptyObject(t *testing.T) {
	doc, err := ParseDocument(" {} ")
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Len())
}

func TestParseDocumentRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"null", "null"},
		{"array", `[1,2]`},
		{"number", "42"},
		{"string", `"name"`},
		{"unterminated", `{"name":"a"`},
		{"unquoted key", `{name:"a"}`},
		{"trailing garbage", `{"a":1}x`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument(tt.raw)
			assert.Error(t, err)
		})
	}
}
