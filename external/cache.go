// Package external caches the declared nullability of symbols from
// modules outside the one being analyzed, so that a repeated build over
// an unchanged dependency does not have to ask the binder to re-resolve
// every external signature (spec.md section 4.1, "External symbols").
// Entries are gob-encoded and zstd-compressed into a sqlite table; a
// small JSON sidecar manifest records which modules the cache currently
// covers, so a caller can decide whether to invalidate without opening
// the database.
package external

import (
	"bytes"
	"database/sql"
	"encoding/gob"
	"fmt"
	"os"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	_ "modernc.org/sqlite"

	"github.com/nullgraph/nullgraph/lang"
)

// cachedType is a flattened, serialization-friendly mirror of lang.Type:
// gob cannot encode the lang.Type interface directly without registering
// every concrete implementation, and doing so would leak this package's
// storage format into lang's otherwise binder-facing contract. A few
// details necessarily do not round-trip (tuple member names, the exact
// parameter/return split of a delegate type, and generic type-parameter
// identity): cached external symbols are a performance optimization over
// re-resolving from the binder, not a second source of truth, so this
// lossiness only costs a slightly coarser result for those rare shapes.
type cachedType struct {
	Kind        lang.TypeKind
	Name        string
	IsRef       bool
	WellKnown   lang.WellKnown
	ArgVariance []lang.Variance
	Args        []cachedType
}

func toCached(t lang.Type) cachedType {
	if t == nil {
		return cachedType{}
	}
	args := make([]cachedType, len(t.TypeArguments()))
	for i, a := range t.TypeArguments() {
		args[i] = toCached(a)
	}
	c := cachedType{
		Kind:      t.Kind(),
		Name:      t.Name(),
		IsRef:     t.IsReferenceType(),
		WellKnown: t.WellKnown(),
		Args:      args,
	}
	if named, ok := t.(*lang.NamedType); ok {
		c.ArgVariance = named.ArgVariance
	}
	return c
}

func (c cachedType) toType() lang.Type {
	elems := make([]lang.Type, len(c.Args))
	for i, a := range c.Args {
		elems[i] = a.toType()
	}
	switch c.Kind {
	case lang.ValueKind:
		return &lang.ValueType{TypeName: c.Name}
	case lang.NullableValueKind:
		if len(elems) == 1 {
			return &lang.NullableValueType{Elem: elems[0]}
		}
		return &lang.NullableValueType{}
	case lang.TypeParamKind:
		// Generic type-parameter identity does not survive the cache
		// round trip; an external use site keyed to this placeholder
		// simply never matches a caller's TypeSubstitution, which is a
		// safe (if imprecise) default.
		return &lang.TypeParamType{Param: &lang.TypeParamSymbol{SymbolName: c.Name, Ordinal: -1}}
	case lang.ArrayKind:
		if len(elems) == 1 {
			return &lang.ArrayType{Elem: elems[0]}
		}
		return &lang.ArrayType{}
	case lang.TupleKind:
		return &lang.TupleType{Elems: elems}
	case lang.DelegateKind:
		if len(elems) == 0 {
			return &lang.DelegateType{}
		}
		return &lang.DelegateType{Params: elems[:len(elems)-1], Return: elems[len(elems)-1]}
	default:
		return &lang.NamedType{TypeName: c.Name, TypeArgs: elems, Special: c.WellKnown, ArgVariance: c.ArgVariance}
	}
}

// record is the gob payload stored for one external symbol.
type record struct {
	Ann  lang.NullAnnotation
	Type cachedType
}

// Cache is a sqlite-backed store of (module, symbol name) -> declared
// nullability, compressed with zstd to keep the database small across
// the many structurally similar entries a large dependency graph
// produces.
type Cache struct {
	db           *sql.DB
	encoder      *zstd.Encoder
	decoder      *zstd.Decoder
	manifestPath string
}

// Open opens (creating if absent) the sqlite database at dbPath and its
// JSON sidecar manifest at manifestPath.
func Open(dbPath, manifestPath string) (*Cache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("external: opening cache %s: %w", dbPath, err)
	}
	const schema = `CREATE TABLE IF NOT EXISTS symbols (
		module TEXT NOT NULL,
		name   TEXT NOT NULL,
		blob   BLOB NOT NULL,
		PRIMARY KEY (module, name)
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("external: creating schema: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("external: creating zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("external: creating zstd decoder: %w", err)
	}
	return &Cache{db: db, encoder: enc, decoder: dec, manifestPath: manifestPath}, nil
}

// Close releases the underlying database handle and zstd resources.
func (c *Cache) Close() error {
	c.encoder.Close()
	c.decoder.Close()
	return c.db.Close()
}

// Get returns the cached annotation and type for (module, name), or
// ok=false on a cache miss.
func (c *Cache) Get(module, name string) (lang.NullAnnotation, lang.Type, bool, error) {
	var blob []byte
	err := c.db.QueryRow(`SELECT blob FROM symbols WHERE module = ? AND name = ?`, module, name).Scan(&blob)
	if err == sql.ErrNoRows {
		return 0, nil, false, nil
	}
	if err != nil {
		return 0, nil, false, fmt.Errorf("external: querying %s.%s: %w", module, name, err)
	}
	raw, err := c.decoder.DecodeAll(blob, nil)
	if err != nil {
		return 0, nil, false, fmt.Errorf("external: decompressing %s.%s: %w", module, name, err)
	}
	var rec record
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&rec); err != nil {
		return 0, nil, false, fmt.Errorf("external: decoding %s.%s: %w", module, name, err)
	}
	return rec.Ann, rec.Type.toType(), true, nil
}

// Put stores the declared annotation and type for (module, name),
// overwriting any existing entry.
func (c *Cache) Put(module, name string, ann lang.NullAnnotation, ty lang.Type) error {
	var buf bytes.Buffer
	rec := record{Ann: ann, Type: toCached(ty)}
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return fmt.Errorf("external: encoding %s.%s: %w", module, name, err)
	}
	blob := c.encoder.EncodeAll(buf.Bytes(), nil)
	_, err := c.db.Exec(`INSERT INTO symbols (module, name, blob) VALUES (?, ?, ?)
		ON CONFLICT(module, name) DO UPDATE SET blob = excluded.blob`, module, name, blob)
	if err != nil {
		return fmt.Errorf("external: storing %s.%s: %w", module, name, err)
	}
	return c.touchManifest(module)
}

// touchManifest records module as covered by this cache, with the time
// it was last written, in the JSON sidecar manifest. The manifest is
// read-modify-written with gjson/sjson rather than unmarshaled into a Go
// struct, since it is consulted only for quick "is this module already
// cached" checks by tooling that should not need to import this package
// just to read one field.
func (c *Cache) touchManifest(module string) error {
	if c.manifestPath == "" {
		return nil
	}
	data, err := os.ReadFile(c.manifestPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("external: reading manifest %s: %w", c.manifestPath, err)
	}
	doc := string(data)
	if doc == "" {
		doc = "{}"
	}
	doc, err = sjson.Set(doc, "modules."+escapeManifestKey(module)+".lastWrite", time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("external: updating manifest: %w", err)
	}
	return os.WriteFile(c.manifestPath, []byte(doc), 0o644)
}

// Covers reports whether the manifest has ever recorded an entry for
// module, without touching the sqlite database.
func (c *Cache) Covers(module string) bool {
	if c.manifestPath == "" {
		return false
	}
	data, err := os.ReadFile(c.manifestPath)
	if err != nil {
		return false
	}
	return gjson.GetBytes(data, "modules."+escapeManifestKey(module)).Exists()
}

// escapeManifestKey escapes path separators sjson/gjson treat specially
// in a dotted path so a module name containing "." or "*" cannot be
// misread as a nested path segment or wildcard.
func escapeManifestKey(module string) string {
	var b bytes.Buffer
	for _, r := range module {
		switch r {
		case '.', '*', '?':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
