// Package imdb models the persistent definition store: the
// (language, name, extra)-tagged lookup that hands back raw
// description-tree source for the loader to compile. The engine only
// depends on the Store interface; MemStore is an in-memory
// implementation for tests and imrun.
package imdb

import (
	"fmt"
	"strconv"

	"github.com/mike-fabian/m17n-lib-sub004/internal/desctree"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Tag identifies one description in the store by its
// (input-method, language, name, extra) tuple. The reserved tag
// `language=t, name=nil, extra=command` (and `extra=variable`) stores
// the global command/variable schema documents.
type Tag struct {
	InputMethod string
	Language    string
	Name        string
	Extra       string
}

// key joins the tag components with "/", which gjson/sjson treat as a
// plain character (unlike "." nesting or "|" piping), so each tag is one
// flat manifest entry rather than a nested path.
func (t Tag) key() string {
	return fmt.Sprintf("%s/%s/%s/%s", t.InputMethod, t.Language, t.Name, t.Extra)
}

// Handle is an opaque reference returned by Find and consumed by Load.
type Handle struct {
	key string
}

// ErrNotFound is returned by Load/LoadForKeys for a handle the store no
// longer recognizes (e.g. concurrent eviction in a real store).
var ErrNotFound = fmt.Errorf("imdb: handle not found")

// Store is the lookup contract the engine depends on. File resolution
// is a separate, narrower interface since only icon lookup needs it.
type Store interface {
	Find(tag Tag) (Handle, bool)
	Load(h Handle) (desctree.Value, error)
	LoadForKeys(h Handle, keys []string) (desctree.Value, error)
}

// FileResolver resolves icon and asset names to paths.
type FileResolver interface {
	FindFile(name string) (string, bool)
}

// SchemaSource is implemented by stores that serve the global
// variable/command schema documents kept under the reserved tags
// (language=t, name=nil, extra=variable or extra=command). The documents
// are raw YAML; the loader parses and merges them.
type SchemaSource interface {
	LoadSchema(tag Tag) ([]byte, bool)
}

// entry is one stored description: its original source text (so
// LoadForKeys can re-parse a filtered view) and the file name it was
// registered under.
type entry struct {
	source string
	file   string
}

// MemStore is an in-process Store backed by a gjson/sjson-indexed JSON
// manifest, the way a lightweight embedded catalog would be represented
// on disk. Production deployments would swap this for a real definition
// cache; MemStore exists for `imrun` fixtures and tests.
type MemStore struct {
	manifest string // JSON object: key -> {"file": "..."}
	entries  map[string]entry
	files    map[string]string
	schemas  map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{
		manifest: "{}",
		entries:  make(map[string]entry),
		files:    make(map[string]string),
		schemas:  make(map[string][]byte),
	}
}

// Register adds (or replaces) the description source for tag, indexing it
// into the manifest so Find can answer from the JSON view alone.
func (m *MemStore) Register(tag Tag, source, file string) error {
	k := tag.key()
	m.entries[k] = entry{source: source, file: file}
	updated, err := sjson.SetRaw(m.manifest, gjsonKey(k)+".file", quoteJSON(file))
	if err != nil {
		return err
	}
	m.manifest = updated
	return nil
}

// RegisterFile records a resolvable icon/asset path for FindFile.
func (m *MemStore) RegisterFile(name, path string) {
	m.files[name] = path
}

// RegisterSchema stores a raw YAML schema document under tag, normally
// one of the reserved variable/command tags.
func (m *MemStore) RegisterSchema(tag Tag, doc []byte) {
	m.schemas[tag.key()] = doc
}

func (m *MemStore) LoadSchema(tag Tag) ([]byte, bool) {
	doc, ok := m.schemas[tag.key()]
	return doc, ok
}

func (m *MemStore) Find(tag Tag) (Handle, bool) {
	k := tag.key()
	res := gjson.Get(m.manifest, k)
	if !res.Exists() {
		return Handle{}, false
	}
	return Handle{key: k}, true
}

func (m *MemStore) Load(h Handle) (desctree.Value, error) {
	e, ok := m.entries[h.key]
	if !ok {
		return desctree.Value{}, ErrNotFound
	}
	return desctree.Parse(e.source, e.file)
}

// LoadForKeys parses the full tree then keeps only the named top-level
// sections, standing in for the partial read a disk-backed store would
// do (fetching just title, description, variable, or command).
func (m *MemStore) LoadForKeys(h Handle, keys []string) (desctree.Value, error) {
	tree, err := m.Load(h)
	if err != nil {
		return desctree.Value{}, err
	}
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	filtered := desctree.NewList(nil, tree.Pos)
	for _, section := range tree.Items {
		if head, ok := section.Head(); ok && want[head] {
			filtered.Items = append(filtered.Items, section)
		}
	}
	return filtered, nil
}

func (m *MemStore) FindFile(name string) (string, bool) {
	p, ok := m.files[name]
	return p, ok
}

// gjsonKey passes a manifest key through unchanged: Tag.key already joins
// components with "/", never ".", so it needs no gjson/sjson path escaping.
func gjsonKey(key string) string { return key }

func quoteJSON(s string) string { return strconv.Quote(s) }
