package parsed

import (
	"sort"
	"strings"

	"github.com/arthur-debert/resmerge/pkg/types"
)

// FileAsset is an asset entry backed by a file on disk. Writing it copies
// the source bytes into the merged asset directory.
type FileAsset struct {
	source string
}

// NewFileAsset creates an asset entry for the given source file.
func NewFileAsset(source string) FileAsset {
	return FileAsset{source: source}
}

func (f FileAsset) Source() string {
	return f.source
}

func (f FileAsset) Fingerprint() string {
	return "asset:" + f.source
}

func (f FileAsset) WriteAsset(key types.AssetPath, w types.DataWriter) error {
	return w.WriteAsset(key, f)
}

// FileResource is a typed resource backed by a whole file, e.g. a layout
// or a drawable. Writing it copies the source into the matching res/
// type directory.
type FileResource struct {
	source string
}

// NewFileResource creates a resource entry for the given source file.
func NewFileResource(source string) FileResource {
	return FileResource{source: source}
}

func (f FileResource) Source() string {
	return f.source
}

func (f FileResource) Fingerprint() string {
	return "file:" + f.source
}

func (f FileResource) WriteResource(key types.ResourceName, w types.DataWriter) error {
	return w.WriteResource(key, f)
}

func (f FileResource) WriteResourceToClass(key types.ResourceName, w types.ResourceClassWriter) error {
	return w.WriteResourceSymbol(key, f)
}

// ValueResource is an inline value resource, e.g. a single string or
// color declaration. Writing it stages the payload into the sink's
// per-qualifier values document, emitted when the sink flushes.
type ValueResource struct {
	source  string
	payload types.ValuePayload
}

// NewValueResource creates an inline resource entry. source records the
// declaring file for diagnostics and caching; it is not read at write
// time.
func NewValueResource(source string, payload types.ValuePayload) ValueResource {
	return ValueResource{source: source, payload: payload}
}

func (v ValueResource) Source() string {
	return v.source
}

func (v ValueResource) Payload() types.ValuePayload {
	return v.payload
}

func (v ValueResource) Fingerprint() string {
	var b strings.Builder
	b.WriteString("value:")
	b.WriteString(v.source)
	b.WriteString(":")
	b.WriteString(v.payload.Tag)
	b.WriteString(":")
	b.WriteString(v.payload.Text)

	keys := make([]string, 0, len(v.payload.Attributes))
	for k := range v.payload.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(":")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(v.payload.Attributes[k])
	}
	return b.String()
}

func (v ValueResource) WriteResource(key types.ResourceName, w types.DataWriter) error {
	return w.WriteValueResource(key, v.payload)
}

func (v ValueResource) WriteResourceToClass(key types.ResourceName, w types.ResourceClassWriter) error {
	return w.WriteResourceSymbol(key, v)
}
