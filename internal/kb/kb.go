// Package kb inspects the on-disk knowledge base layout used by DeepTutor.
//
// A knowledge base is a directory under <data>/knowledge_bases containing up
// to three markers: a rag_storage directory with derived indexes, a
// content_list directory with parsed document JSON, and a numbered_items.json
// manifest. The package reads this layout; it never writes to it.
package kb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Marker labels reported by Scan, in the order they are checked.
const (
	MarkerRAGStorage    = "rag_storage"
	MarkerContentList   = "content_list"
	MarkerNumberedItems = "numbered_items"
)

// numberedItemsFile is the manifest filename behind MarkerNumberedItems.
const numberedItemsFile = "numbered_items.json"

// Entry describes one knowledge base directory and which markers it carries.
type Entry struct {
	Name    string   `json:"name"`
	Path    string   `json:"path"`
	Markers []string `json:"markers"`
}

// Empty reports whether the directory carries none of the expected markers.
func (e Entry) Empty() bool {
	return len(e.Markers) == 0
}

// Scan lists the immediate subdirectories of root and checks each for the
// expected markers. A missing root is not an error; it returns a nil slice.
func Scan(root string) ([]Entry, error) {
	dirents, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("kb: reading %s: %w", root, err)
	}

	var entries []Entry
	for _, d := range dirents {
		if !d.IsDir() {
			continue
		}
		dir := filepath.Join(root, d.Name())
		e := Entry{Name: d.Name(), Path: dir}
		for _, m := range []struct{ label, rel string }{
			{MarkerRAGStorage, MarkerRAGStorage},
			{MarkerContentList, MarkerContentList},
			{MarkerNumberedItems, numberedItemsFile},
		} {
			if _, err := os.Stat(filepath.Join(dir, m.rel)); err == nil {
				e.Markers = append(e.Markers, m.label)
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Usable returns the names of entries carrying at least one marker.
func Usable(entries []Entry) []string {
	var names []string
	for _, e := range entries {
		if !e.Empty() {
			names = append(names, e.Name)
		}
	}
	return names
}

// ContentItem is one parsed block from a content_list document.
type ContentItem struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	PageIdx int    `json:"page_idx"`
}

// LoadContentList reads every JSON file under the knowledge base's
// content_list directory and returns the text items, tagged with the source
// file they came from.
func LoadContentList(kbDir string) (map[string][]ContentItem, error) {
	dir := filepath.Join(kbDir, MarkerContentList)
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("kb: reading content_list: %w", err)
	}

	out := make(map[string][]ContentItem)
	for _, d := range dirents {
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, d.Name()))
		if err != nil {
			return nil, fmt.Errorf("kb: reading %s: %w", d.Name(), err)
		}
		var items []ContentItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("kb: parsing %s: %w", d.Name(), err)
		}
		source := strings.TrimSuffix(d.Name(), ".json")
		for _, it := range items {
			if it.Type == "text" && strings.TrimSpace(it.Text) != "" {
				out[source] = append(out[source], it)
			}
		}
	}
	return out, nil
}

// NumberedItem is one entry of the numbered_items.json manifest, which maps
// citation numbers to document snippets.
type NumberedItem struct {
	Number  int    `json:"number"`
	Source  string `json:"source"`
	Content string `json:"content"`
}

// LoadNumberedItems reads the numbered_items.json manifest.
func LoadNumberedItems(kbDir string) ([]NumberedItem, error) {
	raw, err := os.ReadFile(filepath.Join(kbDir, numberedItemsFile))
	if err != nil {
		return nil, fmt.Errorf("kb: reading %s: %w", numberedItemsFile, err)
	}
	var items []NumberedItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("kb: parsing %s: %w", numberedItemsFile, err)
	}
	return items, nil
}
