package writer

import (
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/resmerge/pkg/errors"
	"github.com/arthur-debert/resmerge/pkg/parsed"
	"github.com/arthur-debert/resmerge/pkg/paths"
	"github.com/arthur-debert/resmerge/pkg/testutil"
	"github.com/arthur-debert/resmerge/pkg/types"
)

func newTestWriter(t *testing.T) (*Writer, *testutil.MemoryFS) {
	t.Helper()

	fs := testutil.NewMemoryFS()
	require.NoError(t, fs.MkdirAll("/src/assets/fonts", 0755))
	require.NoError(t, fs.MkdirAll("/src/res/layout", 0755))
	require.NoError(t, fs.WriteFile("/src/assets/fonts/a.ttf", []byte("font-bytes"), 0644))
	require.NoError(t, fs.WriteFile("/src/res/layout/main.xml", []byte("<LinearLayout/>"), 0644))
	require.NoError(t, fs.WriteFile("/src/AndroidManifest.xml", []byte(`<manifest package="com.example.app"/>`), 0644))

	p, err := paths.New("/out")
	require.NoError(t, err)

	return New(fs, p), fs
}

func TestWriteAssetCopies(t *testing.T) {
	w, fs := newTestWriter(t)

	key := types.AssetPath{Path: "fonts/a.ttf"}
	require.NoError(t, w.WriteAsset(key, parsed.NewFileAsset("/src/assets/fonts/a.ttf")))

	data, err := fs.ReadFile("/out/assets/fonts/a.ttf")
	require.NoError(t, err)
	assert.Equal(t, "font-bytes", string(data))
}

func TestWriteResourceCopiesWithExtension(t *testing.T) {
	w, fs := newTestWriter(t)

	key := types.ResourceName{Type: "layout", Name: "main"}
	require.NoError(t, w.WriteResource(key, parsed.NewFileResource("/src/res/layout/main.xml")))

	data, err := fs.ReadFile("/out/res/layout/main.xml")
	require.NoError(t, err)
	assert.Equal(t, "<LinearLayout/>", string(data))
}

func TestWriteResourceQualifiedDirectory(t *testing.T) {
	w, fs := newTestWriter(t)
	require.NoError(t, fs.MkdirAll("/src/res/layout-land", 0755))
	require.NoError(t, fs.WriteFile("/src/res/layout-land/main.xml", []byte("<FrameLayout/>"), 0644))

	key := types.ResourceName{Type: "layout", Qualifiers: "land", Name: "main"}
	require.NoError(t, w.WriteResource(key, parsed.NewFileResource("/src/res/layout-land/main.xml")))

	assert.True(t, fs.Exists("/out/res/layout-land/main.xml"))
}

func TestWriteAssetMissingSource(t *testing.T) {
	w, _ := newTestWriter(t)

	err := w.WriteAsset(types.AssetPath{Path: "missing.png"}, parsed.NewFileAsset("/src/assets/missing.png"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileRead))
	assert.False(t, errors.IsMergeError(err))
}

func TestDuplicateDestinationIsMergeConflict(t *testing.T) {
	w, _ := newTestWriter(t)

	key := types.AssetPath{Path: "fonts/a.ttf"}
	require.NoError(t, w.WriteAsset(key, parsed.NewFileAsset("/src/assets/fonts/a.ttf")))

	err := w.WriteAsset(key, parsed.NewFileAsset("/src/assets/fonts/a.ttf"))
	require.Error(t, err)
	assert.True(t, errors.IsMergeError(err))
}

func TestDuplicateValueDeclarationIsMergeConflict(t *testing.T) {
	w, _ := newTestWriter(t)

	key := types.ResourceName{Type: "string", Name: "title"}
	require.NoError(t, w.WriteValueResource(key, types.ValuePayload{Tag: "string", Text: "one"}))

	err := w.WriteValueResource(key, types.ValuePayload{Tag: "string", Text: "two"})
	require.Error(t, err)
	assert.True(t, errors.IsMergeError(err))
}

func TestFlushWritesValuesDocuments(t *testing.T) {
	w, fs := newTestWriter(t)

	require.NoError(t, w.WriteValueResource(
		types.ResourceName{Type: "string", Name: "title"},
		types.ValuePayload{Tag: "string", Text: "Hello"}))
	require.NoError(t, w.WriteValueResource(
		types.ResourceName{Type: "color", Name: "accent"},
		types.ValuePayload{Tag: "color", Text: "#ff0000"}))
	require.NoError(t, w.WriteValueResource(
		types.ResourceName{Type: "string", Qualifiers: "es", Name: "title"},
		types.ValuePayload{Tag: "string", Text: "Hola"}))

	// Nothing on disk until flush.
	assert.False(t, fs.Exists("/out/res/values/values.xml"))

	require.NoError(t, w.Flush())

	def, err := fs.ReadFile("/out/res/values/values.xml")
	require.NoError(t, err)
	assert.Contains(t, string(def), `<string name="title">Hello</string>`)
	assert.Contains(t, string(def), `<color name="accent">#ff0000</color>`)

	es, err := fs.ReadFile("/out/res/values-es/values.xml")
	require.NoError(t, err)
	assert.Contains(t, string(es), `<string name="title">Hola</string>`)
	assert.NotContains(t, string(es), "Hello")
}

func TestFlushTwiceWritesOnce(t *testing.T) {
	w, fs := newTestWriter(t)

	require.NoError(t, w.WriteValueResource(
		types.ResourceName{Type: "string", Name: "title"},
		types.ValuePayload{Tag: "string", Text: "Hello"}))
	require.NoError(t, w.Flush())

	// Make a second document write observable if it happened.
	require.NoError(t, fs.Remove("/out/res/values/values.xml"))
	require.NoError(t, w.Flush())
	assert.False(t, fs.Exists("/out/res/values/values.xml"))
}

func TestFlushFailureSurfaces(t *testing.T) {
	w, fs := newTestWriter(t)
	boom := stderrors.New("device gone")
	fs.InjectError("/out/res/values/values.xml", boom)

	require.NoError(t, w.WriteValueResource(
		types.ResourceName{Type: "string", Name: "title"},
		types.ValuePayload{Tag: "string", Text: "Hello"}))

	err := w.Flush()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFlush))
	assert.True(t, stderrors.Is(err, boom))
}

func TestCopyManifest(t *testing.T) {
	w, fs := newTestWriter(t)

	out, err := w.CopyManifest("/src/AndroidManifest.xml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/out", "AndroidManifest.xml"), out)
	assert.True(t, fs.Exists("/out/AndroidManifest.xml"))
}

func TestCopyManifestMissing(t *testing.T) {
	w, _ := newTestWriter(t)

	_, err := w.CopyManifest("/src/nope.xml")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestCopy))
}

func TestDirectories(t *testing.T) {
	w, _ := newTestWriter(t)

	assert.Equal(t, "/out/res", w.ResourceDirectory())
	assert.Equal(t, "/out/assets", w.AssetDirectory())
}
