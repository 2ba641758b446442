// Package writer provides the filesystem write sink for merged data.
// Assets and file-backed resources are copied eagerly; inline value
// resources are buffered per qualifier and emitted as combined values
// documents when the writer is flushed. Flush is the durability point:
// output is not valid until Flush returns nil.
package writer

import (
	"path/filepath"
	"sort"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/resmerge/pkg/errors"
	"github.com/arthur-debert/resmerge/pkg/logging"
	"github.com/arthur-debert/resmerge/pkg/paths"
	"github.com/arthur-debert/resmerge/pkg/types"
)

// ValuesFileName is the combined values document written per qualifier
const ValuesFileName = "values.xml"

type valueEntry struct {
	key     types.ResourceName
	payload types.ValuePayload
}

// Writer is a types.DataWriter backed by a filesystem.
type Writer struct {
	fs     types.FS
	paths  paths.Paths
	logger zerolog.Logger

	// written maps destination path to the source that claimed it within
	// this commit. A second claim is a residual merge conflict: the
	// upstream deduplication should have removed it, and silently letting
	// the later (transitive) write win would invert precedence.
	written map[string]string

	// values buffers inline resources per values directory until Flush.
	values map[string][]valueEntry

	copiedBytes int64
	flushed     bool
}

// New creates a filesystem writer rooted at the given paths.
func New(fsys types.FS, p paths.Paths) *Writer {
	return &Writer{
		fs:      fsys,
		paths:   p,
		logger:  logging.GetLogger("writer"),
		written: make(map[string]string),
		values:  make(map[string][]valueEntry),
	}
}

func (w *Writer) claim(dest, source string) error {
	if prior, ok := w.written[dest]; ok {
		return errors.Newf(errors.ErrMergeConflict,
			"destination %s already written from %s", dest, prior).
			WithDetail("destination", dest).
			WithDetail("existing", prior).
			WithDetail("incoming", source)
	}
	w.written[dest] = source
	return nil
}

func (w *Writer) copyFile(source, dest string) error {
	data, err := w.fs.ReadFile(source)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileRead, "failed to read %s", source)
	}
	if err := w.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(dest))
	}
	if err := w.fs.WriteFile(dest, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "failed to copy %s to %s", source, dest)
	}
	w.copiedBytes += int64(len(data))
	return nil
}

// WriteAsset copies an asset into the merged asset directory.
func (w *Writer) WriteAsset(key types.AssetPath, asset types.DataAsset) error {
	dest := filepath.Join(w.paths.AssetDirectory(), filepath.FromSlash(key.String()))
	if err := w.claim(dest, asset.Source()); err != nil {
		return err
	}
	return w.copyFile(asset.Source(), dest)
}

// WriteResource copies a file-backed resource into its res/ type
// directory, keeping the source file's extension.
func (w *Writer) WriteResource(key types.ResourceName, res types.DataResource) error {
	dest := filepath.Join(w.paths.ResourceDirectory(), key.TypeDirectory(),
		key.Name+filepath.Ext(res.Source()))
	if err := w.claim(dest, res.Source()); err != nil {
		return err
	}
	return w.copyFile(res.Source(), dest)
}

// WriteValueResource stages an inline resource for the per-qualifier
// values document written at Flush. Conflicts are tracked per
// declaration, not per file, since many declarations share one document.
func (w *Writer) WriteValueResource(key types.ResourceName, payload types.ValuePayload) error {
	dir := "values"
	if key.Qualifiers != "" {
		dir = "values-" + key.Qualifiers
	}
	slot := filepath.Join(w.paths.ResourceDirectory(), dir, ValuesFileName) + "#" + key.String()
	if err := w.claim(slot, key.String()); err != nil {
		return err
	}
	w.values[dir] = append(w.values[dir], valueEntry{key: key, payload: payload})
	return nil
}

// CopyManifest copies the manifest into the output root and returns its
// output location.
func (w *Writer) CopyManifest(manifest string) (string, error) {
	dest := w.paths.ManifestOutputPath(manifest)
	data, err := w.fs.ReadFile(manifest)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrManifestCopy, "failed to read manifest %s", manifest)
	}
	if err := w.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(dest))
	}
	if err := w.fs.WriteFile(dest, data, 0644); err != nil {
		return "", errors.Wrapf(err, errors.ErrManifestCopy, "failed to copy manifest to %s", dest)
	}
	return dest, nil
}

// Flush writes the buffered values documents. It must be called exactly
// once per commit; a second Flush is a no-op since the buffers are
// consumed.
func (w *Writer) Flush() error {
	dirs := make([]string, 0, len(w.values))
	for dir := range w.values {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		if err := w.flushValuesDir(dir, w.values[dir]); err != nil {
			return err
		}
		delete(w.values, dir)
	}

	w.logger.Debug().
		Int("destinations", len(w.written)).
		Int64("copiedBytes", w.copiedBytes).
		Bool("repeat", w.flushed).
		Msg("Writer flushed")
	w.flushed = true
	return nil
}

func (w *Writer) flushValuesDir(dir string, entries []valueEntry) error {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].key.String() < entries[j].key.String()
	})

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	root := doc.CreateElement("resources")

	for _, e := range entries {
		el := root.CreateElement(e.payload.Tag)
		el.CreateAttr("name", e.key.Name)

		attrs := make([]string, 0, len(e.payload.Attributes))
		for k := range e.payload.Attributes {
			attrs = append(attrs, k)
		}
		sort.Strings(attrs)
		for _, k := range attrs {
			el.CreateAttr(k, e.payload.Attributes[k])
		}
		el.SetText(e.payload.Text)
	}

	doc.Indent(4)
	data, err := doc.WriteToBytes()
	if err != nil {
		return errors.Wrapf(err, errors.ErrFlush, "failed to render values document for %s", dir)
	}

	destDir := filepath.Join(w.paths.ResourceDirectory(), dir)
	if err := w.fs.MkdirAll(destDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", destDir)
	}
	dest := filepath.Join(destDir, ValuesFileName)
	if err := w.fs.WriteFile(dest, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFlush, "failed to write %s", dest)
	}
	return nil
}

// ResourceDirectory returns the merged resource directory.
func (w *Writer) ResourceDirectory() string {
	return w.paths.ResourceDirectory()
}

// AssetDirectory returns the merged asset directory.
func (w *Writer) AssetDirectory() string {
	return w.paths.AssetDirectory()
}
