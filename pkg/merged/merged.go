// Package merged implements the merge-staging coordinator: it holds the
// finished primary and transitive partitions plus an optional manifest,
// and commits them through a single write protocol. Precedence between
// the partitions is enforced by write order (primary first); the
// coordinator never re-deduplicates.
package merged

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/arthur-debert/resmerge/pkg/logging"
	"github.com/arthur-debert/resmerge/pkg/parsed"
	"github.com/arthur-debert/resmerge/pkg/types"
)

// UnwrittenData is merged resource data that has yet to be written to a
// sink. It is immutable after construction and intended for a single
// commit; nothing prevents a second commit beyond the double-write it
// would cause.
type UnwrittenData struct {
	manifest   string
	primary    *parsed.ParsedData
	transitive *parsed.ParsedData
}

// New stages merged data for commit. manifest may be empty, meaning no
// manifest to copy. Both partitions must be non-nil and already
// deduplicated; this is a precondition, not re-validated here. No I/O
// happens until one of the commit operations is invoked.
func New(manifest string, primary, transitive *parsed.ParsedData) *UnwrittenData {
	return &UnwrittenData{
		manifest:   manifest,
		primary:    primary,
		transitive: transitive,
	}
}

// Write commits every entry to the sink: the primary partition first,
// then the transitive partition, assets before resources within each.
// If a manifest was staged it is copied last. The sink is flushed
// exactly once on every exit path; an error writing an entry still
// propagates after the flush attempt, and a flush failure after clean
// writes is surfaced. On error no MergedData is returned.
func (u *UnwrittenData) Write(w types.DataWriter) (result *types.MergedData, err error) {
	logger := logging.GetLogger("merged")
	start := time.Now()

	defer func() {
		// Flush to make sure all writing completed before handing the
		// result to the caller; a partially-flushed sink would make the
		// MergedData invalid.
		if flushErr := w.Flush(); flushErr != nil {
			if err == nil {
				result = nil
				err = flushErr
			} else {
				logger.Warn().Err(flushErr).Msg("flush failed with a write error already in flight")
			}
		}
	}()

	if err = writeParsedData(u.primary, w); err != nil {
		return nil, err
	}
	if err = writeParsedData(u.transitive, w); err != nil {
		return nil, err
	}

	var manifestOut string
	if u.manifest != "" {
		if manifestOut, err = w.CopyManifest(u.manifest); err != nil {
			return nil, err
		}
	}

	logger.Debug().
		Int("primaryAssets", u.primary.AssetCount()).
		Int("primaryResources", u.primary.ResourceCount()).
		Int("transitiveAssets", u.transitive.AssetCount()).
		Int("transitiveResources", u.transitive.ResourceCount()).
		Dur("duration", time.Since(start)).
		Msg("Merged data written")

	return &types.MergedData{
		ResourceDir: w.ResourceDirectory(),
		AssetDir:    w.AssetDirectory(),
		Manifest:    manifestOut,
	}, nil
}

func writeParsedData(p *parsed.ParsedData, w types.DataWriter) error {
	for _, entry := range p.AssetEntries() {
		if err := entry.Value.WriteAsset(entry.Key, w); err != nil {
			return err
		}
	}
	for _, entry := range p.ResourceEntries() {
		if err := entry.Value.WriteResource(entry.Key, w); err != nil {
			return err
		}
	}
	return nil
}

// WriteResourceClass writes every resource entry's symbol contribution,
// primary then transitive, then flushes the class sink. Assets carry no
// symbols and are skipped. An error writing an item propagates without
// flushing; the artifact is only valid after a clean flush.
func (u *UnwrittenData) WriteResourceClass(w types.ResourceClassWriter) error {
	if err := writeResourceClassItems(u.primary, w); err != nil {
		return err
	}
	if err := writeResourceClassItems(u.transitive, w); err != nil {
		return err
	}
	return w.Flush()
}

func writeResourceClassItems(p *parsed.ParsedData, w types.ResourceClassWriter) error {
	for _, entry := range p.ResourceEntries() {
		if err := entry.Value.WriteResourceToClass(entry.Key, w); err != nil {
			return err
		}
	}
	return nil
}

// SerializeTo enqueues the primary partition's entries, assets then
// resources, for later serialization into a cache blob. Transitive
// entries are intentionally excluded: the cache artifact covers what
// this build unit directly owns, not what it inherited. The queue's own
// commit point is external to this coordinator.
func (u *UnwrittenData) SerializeTo(s types.Serializer) {
	for _, entry := range u.primary.AssetEntries() {
		s.QueueForSerialization(entry.Key, entry.Value)
	}
	for _, entry := range u.primary.ResourceEntries() {
		s.QueueForSerialization(entry.Key, entry.Value)
	}
}

// Manifest returns the staged manifest path, empty when absent.
func (u *UnwrittenData) Manifest() string {
	return u.manifest
}

// Primary returns the primary partition.
func (u *UnwrittenData) Primary() *parsed.ParsedData {
	return u.primary
}

// Transitive returns the transitive partition.
func (u *UnwrittenData) Transitive() *parsed.ParsedData {
	return u.transitive
}

// Equal reports structural equality of the manifest path and both
// partitions. Needed by tests that compare an expected staging against
// one produced by a merge step.
func (u *UnwrittenData) Equal(other *UnwrittenData) bool {
	if u == other {
		return true
	}
	if other == nil {
		return false
	}
	return u.manifest == other.manifest &&
		u.primary.Equal(other.primary) &&
		u.transitive.Equal(other.transitive)
}

// Hash returns a hash consistent with Equal.
func (u *UnwrittenData) Hash() uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%d|%d", u.manifest, u.primary.Hash(), u.transitive.Hash())
	return h.Sum64()
}

// String is a diagnostic representation, not a stable format.
func (u *UnwrittenData) String() string {
	return fmt.Sprintf("UnwrittenData{manifest: %s, primary: %s, transitive: %s}",
		u.manifest, u.primary, u.transitive)
}
