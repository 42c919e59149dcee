package docstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func TestRead_FallbackWhenAbsent(t *testing.T) {
	s := New(t.TempDir())

	var got doc
	fallback := doc{Name: "default", Items: []string{"a"}}
	require.NoError(t, s.Read(context.Background(), "missing.json", &got, fallback))
	assert.Equal(t, fallback, got)

	got.Items[0] = "changed"
	assert.Equal(t, "a", fallback.Items[0], "fallback must not be aliased")
}

func TestWriteThenRead(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s := New(dir)
	ctx := context.Background()

	want := []doc{{Name: "one"}, {Name: "two", Items: []string{"x"}}}
	require.NoError(t, s.Write(ctx, "docs.json", want))

	var got []doc
	require.NoError(t, s.Read(ctx, "docs.json", &got, []doc{}))
	assert.Equal(t, want, got)

	require.NoError(t, s.Write(ctx, "docs.json", []doc{{Name: "three"}}))
	got = nil
	require.NoError(t, s.Read(ctx, "docs.json", &got, []doc{}))
	assert.Equal(t, []doc{{Name: "three"}}, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestRead_ParseError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644))

	var got doc
	err := New(dir).Read(context.Background(), "bad.json", &got, doc{})

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "bad.json", perr.Name)
}

func TestInvalidNames(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	for _, name := range []string{"", "../escape.json", "a/b.json", ".hidden"} {
		var got doc
		assert.Error(t, s.Read(ctx, name, &got, doc{}), name)
		assert.Error(t, s.Write(ctx, name, doc{}), name)
	}
}

func TestCanceledContext(t *testing.T) {
	s := New(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Write(ctx, "docs.json", doc{}), context.Canceled)
}
