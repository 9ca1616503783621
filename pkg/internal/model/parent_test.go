package model_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filevault/pkg/internal/model"
)

func TestParentIDDecodesRootVariants(t *testing.T) {
	for _, raw := range []string{`0`, `"0"`, `""`, `null`} {
		var p model.ParentID
		require.NoError(t, json.Unmarshal([]byte(raw), &p), raw)
		assert.True(t, p.IsRoot(), raw)
	}
}

func TestParentIDDecodesReference(t *testing.T) {
	var p model.ParentID
	require.NoError(t, json.Unmarshal([]byte(`"01HZX3"`), &p))
	assert.False(t, p.IsRoot())
	assert.Equal(t, "01HZX3", p.ID())

	require.NoError(t, json.Unmarshal([]byte(`42`), &p))
	assert.Equal(t, "42", p.ID())

	assert.Error(t, json.Unmarshal([]byte(`{}`), &p))
}

func TestFileJSONShape(t *testing.T) {
	f := model.File{
		ID:        "abc",
		OwnerID:   "u1",
		Name:      "a.txt",
		Type:      model.TypeFile,
		ParentID:  model.Root(),
		LocalPath: "secret-key",
	}

	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"abc","userId":"u1","name":"a.txt","type":"file","isPublic":false,"parentId":0}`, string(b))

	f.ParentID = model.Ref("p1")
	b, err = json.Marshal(f)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"parentId":"p1"`)
	assert.NotContains(t, string(b), "secret-key")
}

func TestParentIDScan(t *testing.T) {
	var p model.ParentID
	require.NoError(t, p.Scan(""))
	assert.True(t, p.IsRoot())

	require.NoError(t, p.Scan([]byte("x1")))
	assert.Equal(t, "x1", p.Key())

	v, err := model.Root().Value()
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestFileTypeValid(t *testing.T) {
	assert.True(t, model.TypeImage.Valid())
	assert.False(t, model.FileType("video").Valid())
	assert.False(t, model.TypeFolder.HasContent())
}

func TestNewIDIsMonotonic(t *testing.T) {
	prev := model.NewID()
	for range 100 {
		next := model.NewID()
		assert.Less(t, prev, next)
		prev = next
	}
}
