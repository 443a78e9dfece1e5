package kb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkKB(t *testing.T, root, name string, markers ...string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, m := range markers {
		switch m {
		case MarkerNumberedItems:
			require.NoError(t, os.WriteFile(filepath.Join(dir, numberedItemsFile), []byte("[]"), 0o600))
		default:
			require.NoError(t, os.MkdirAll(filepath.Join(dir, m), 0o755))
		}
	}
}

func TestScanMissingRoot(t *testing.T) {
	entries, err := Scan(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestScanMarkers(t *testing.T) {
	root := t.TempDir()
	mkKB(t, root, "full", MarkerRAGStorage, MarkerContentList, MarkerNumberedItems)
	mkKB(t, root, "partial", MarkerContentList)
	mkKB(t, root, "empty")

	// Plain files in the root are not knowledge bases.
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray.txt"), nil, 0o600))

	entries, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byName := map[string]Entry{}
	for _, e := range entries {
		byName[e.Name] = e
	}

	assert.Equal(t, []string{MarkerRAGStorage, MarkerContentList, MarkerNumberedItems}, byName["full"].Markers)
	assert.False(t, byName["full"].Empty())

	// A directory with a single marker is usable, not empty.
	assert.Equal(t, []string{MarkerContentList}, byName["partial"].Markers)
	assert.False(t, byName["partial"].Empty())

	assert.Empty(t, byName["empty"].Markers)
	assert.True(t, byName["empty"].Empty())
}

func TestUsableExcludesEmpty(t *testing.T) {
	root := t.TempDir()
	mkKB(t, root, "good", MarkerRAGStorage)
	mkKB(t, root, "bare")

	entries, err := Scan(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"good"}, Usable(entries))
}

func TestLoadContentList(t *testing.T) {
	kbDir := t.TempDir()
	dir := filepath.Join(kbDir, MarkerContentList)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	doc := `[
		{"type":"text","text":"First passage.","page_idx":0},
		{"type":"image","text":"","page_idx":1},
		{"type":"text","text":"   ","page_idx":1},
		{"type":"text","text":"Second passage.","page_idx":2}
	]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lecture1.json"), []byte(doc), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	contents, err := LoadContentList(kbDir)
	require.NoError(t, err)
	require.Contains(t, contents, "lecture1")

	items := contents["lecture1"]
	require.Len(t, items, 2)
	assert.Equal(t, "First passage.", items[0].Text)
	assert.Equal(t, 2, items[1].PageIdx)
}

func TestLoadNumberedItems(t *testing.T) {
	kbDir := t.TempDir()
	data := `[{"number":1,"source":"lecture1","content":"Intro"},{"number":2,"source":"lecture1","content":"Methods"}]`
	require.NoError(t, os.WriteFile(filepath.Join(kbDir, numberedItemsFile), []byte(data), 0o600))

	items, err := LoadNumberedItems(kbDir)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].Number)
	assert.Equal(t, "Methods", items[1].Content)
}
