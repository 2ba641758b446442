package types

import (
	"io/fs"
)

// FS is the filesystem interface required for resmerge sink operations.
// Kept narrow so tests can supply an in-memory implementation with
// error injection.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error
	Remove(name string) error
}

// DataValue is the capability set shared by asset and resource entries.
// A value knows where its bytes come from and exposes a stable
// fingerprint used for structural equality and cache identity.
type DataValue interface {
	// Source returns the path of the file backing this value, or the
	// empty string for inline values.
	Source() string

	// Fingerprint returns a stable string identifying this value's
	// content source. Two values with equal fingerprints are
	// interchangeable for merge purposes.
	Fingerprint() string
}

// DataAsset is an entry under the assets directory. It writes itself to a
// sink via double dispatch: the coordinator calls WriteAsset on the value,
// the value calls back into the sink it was handed.
type DataAsset interface {
	DataValue
	WriteAsset(key AssetPath, w DataWriter) error
}

// DataResource is a typed resource entry. Like DataAsset, it writes
// itself through the sink it is handed, both for resource content and
// for the generated symbol table.
type DataResource interface {
	DataValue
	WriteResource(key ResourceName, w DataWriter) error
	WriteResourceToClass(key ResourceName, w ResourceClassWriter) error
}

// ValuePayload is the structured body of an inline value resource,
// merged into a per-qualifier values document when the sink flushes.
type ValuePayload struct {
	// Tag is the XML element tag, e.g. "string", "color".
	Tag string
	// Text is the element's character data.
	Text string
	// Attributes are extra element attributes beyond name.
	Attributes map[string]string
}

// DataWriter receives resource and asset writes and a manifest copy
// request. It must be flushed exactly once per commit; writes are not
// guaranteed durable until Flush returns nil.
type DataWriter interface {
	WriteAsset(key AssetPath, asset DataAsset) error
	WriteResource(key ResourceName, res DataResource) error
	WriteValueResource(key ResourceName, payload ValuePayload) error

	// CopyManifest copies the given manifest into the output tree and
	// returns its output location.
	CopyManifest(manifest string) (string, error)

	Flush() error

	ResourceDirectory() string
	AssetDirectory() string
}

// ResourceClassWriter receives resource symbol contributions for a
// generated constants artifact. Assets have no symbols and never reach
// this sink.
type ResourceClassWriter interface {
	WriteResourceSymbol(key ResourceName, res DataResource) error
	Flush() error
}

// Serializer accepts (key, value) pairs for later serialization into a
// cache blob. Enqueueing never fails; errors surface when the queue is
// drained.
type Serializer interface {
	QueueForSerialization(key DataKey, value DataValue)
}

// MergedData records where a successful commit placed its output: the
// resource directory, the asset directory, and the copied manifest.
// Manifest is empty when no manifest was staged.
type MergedData struct {
	ResourceDir string
	AssetDir    string
	Manifest    string
}
