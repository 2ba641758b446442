// Package parsed holds the immutable partition type handed to the merge
// coordinator: an already-deduplicated, ordered collection of asset and
// resource entries. Partitions are built once by the upstream merger and
// read-only afterwards.
package parsed

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/arthur-debert/resmerge/pkg/types"
)

// AssetEntry is one (key, value) pair from the asset sub-collection.
type AssetEntry struct {
	Key   types.AssetPath
	Value types.DataAsset
}

// ResourceEntry is one (key, value) pair from the resource sub-collection.
type ResourceEntry struct {
	Key   types.ResourceName
	Value types.DataResource
}

// ParsedData is an immutable partition of merged entries, split into an
// asset sub-collection and a resource sub-collection. Within one
// partition no two entries share a key; conflict resolution happened
// upstream and is not re-checked here. Iteration order is sorted by key
// for reproducible output.
type ParsedData struct {
	assets    []AssetEntry
	resources []ResourceEntry
}

// Empty returns a partition with no entries.
func Empty() *ParsedData {
	return &ParsedData{}
}

// AssetEntries returns a snapshot of the asset entries in key order.
// The returned slice is the caller's to keep; iterating it repeatedly
// always yields the same sequence.
func (p *ParsedData) AssetEntries() []AssetEntry {
	out := make([]AssetEntry, len(p.assets))
	copy(out, p.assets)
	return out
}

// ResourceEntries returns a snapshot of the resource entries in key order.
func (p *ParsedData) ResourceEntries() []ResourceEntry {
	out := make([]ResourceEntry, len(p.resources))
	copy(out, p.resources)
	return out
}

// AssetCount returns the number of asset entries.
func (p *ParsedData) AssetCount() int {
	return len(p.assets)
}

// ResourceCount returns the number of resource entries.
func (p *ParsedData) ResourceCount() int {
	return len(p.resources)
}

// Equal reports structural equality: same keys in the same order with
// interchangeable values.
func (p *ParsedData) Equal(other *ParsedData) bool {
	if p == other {
		return true
	}
	if other == nil {
		return false
	}
	if len(p.assets) != len(other.assets) || len(p.resources) != len(other.resources) {
		return false
	}
	for i, e := range p.assets {
		o := other.assets[i]
		if e.Key != o.Key || e.Value.Fingerprint() != o.Value.Fingerprint() {
			return false
		}
	}
	for i, e := range p.resources {
		o := other.resources[i]
		if e.Key != o.Key || e.Value.Fingerprint() != o.Value.Fingerprint() {
			return false
		}
	}
	return true
}

// Hash returns a hash consistent with Equal.
func (p *ParsedData) Hash() uint64 {
	h := fnv.New64a()
	for _, e := range p.assets {
		fmt.Fprintf(h, "a|%s|%s\n", e.Key, e.Value.Fingerprint())
	}
	for _, e := range p.resources {
		fmt.Fprintf(h, "r|%s|%s\n", e.Key, e.Value.Fingerprint())
	}
	return h.Sum64()
}

func (p *ParsedData) String() string {
	return fmt.Sprintf("ParsedData{assets: %d, resources: %d}", len(p.assets), len(p.resources))
}

// Builder accumulates entries for a ParsedData. A later put for an
// existing key replaces the earlier one; the upstream merger resolves
// conflicts before it gets here, so a replacement means it combined two
// declarations on purpose.
type Builder struct {
	assets    map[string]AssetEntry
	resources map[string]ResourceEntry
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		assets:    make(map[string]AssetEntry),
		resources: make(map[string]ResourceEntry),
	}
}

// PutAsset stages an asset entry.
func (b *Builder) PutAsset(key types.AssetPath, value types.DataAsset) *Builder {
	b.assets[key.String()] = AssetEntry{Key: key, Value: value}
	return b
}

// PutResource stages a resource entry.
func (b *Builder) PutResource(key types.ResourceName, value types.DataResource) *Builder {
	b.resources[key.String()] = ResourceEntry{Key: key, Value: value}
	return b
}

// Build produces the immutable partition. The Builder may be reused;
// the built partition does not observe later puts.
func (b *Builder) Build() *ParsedData {
	p := &ParsedData{
		assets:    make([]AssetEntry, 0, len(b.assets)),
		resources: make([]ResourceEntry, 0, len(b.resources)),
	}
	for _, e := range b.assets {
		p.assets = append(p.assets, e)
	}
	for _, e := range b.resources {
		p.resources = append(p.resources, e)
	}
	sort.Slice(p.assets, func(i, j int) bool {
		return p.assets[i].Key.String() < p.assets[j].Key.String()
	})
	sort.Slice(p.resources, func(i, j int) bool {
		return p.resources[i].Key.String() < p.resources[j].Key.String()
	})
	return p
}
