package serializer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/resmerge/pkg/errors"
	"github.com/arthur-debert/resmerge/pkg/merged"
	"github.com/arthur-debert/resmerge/pkg/parsed"
	"github.com/arthur-debert/resmerge/pkg/testutil"
	"github.com/arthur-debert/resmerge/pkg/types"
)

func primaryFixture() *parsed.ParsedData {
	return parsed.NewBuilder().
		PutAsset(types.AssetPath{Path: "fonts/a.ttf"}, parsed.NewFileAsset("/p/assets/fonts/a.ttf")).
		PutResource(types.ResourceName{Type: "layout", Name: "main"}, parsed.NewFileResource("/p/res/layout/main.xml")).
		PutResource(types.ResourceName{Type: "string", Name: "title"},
			parsed.NewValueResource("/p/res/values/strings.xml",
				types.ValuePayload{Tag: "string", Text: "Hi", Attributes: map[string]string{"translatable": "false"}})).
		Build()
}

func TestRoundTrip(t *testing.T) {
	fs := testutil.NewMemoryFS()
	primary := primaryFixture()

	s := New(fs)
	u := merged.New("/p/AndroidManifest.xml", primary, parsed.Empty())
	u.SerializeTo(s)

	require.Equal(t, primary.AssetCount()+primary.ResourceCount(), s.Count())
	require.NoError(t, s.Flush("/cache/app-merged.bin.yaml"))

	restored, err := Load(fs, "/cache/app-merged.bin.yaml")
	require.NoError(t, err)
	assert.True(t, primary.Equal(restored))
	assert.Equal(t, primary.Hash(), restored.Hash())
}

func TestSerializeToExcludesTransitive(t *testing.T) {
	fs := testutil.NewMemoryFS()
	transitive := parsed.NewBuilder().
		PutResource(types.ResourceName{Type: "string", Name: "dep"},
			parsed.NewFileResource("/t/values.xml")).
		Build()

	s := New(fs)
	merged.New("", primaryFixture(), transitive).SerializeTo(s)

	assert.Equal(t, 3, s.Count())
	require.NoError(t, s.Flush("/cache/blob.yaml"))

	restored, err := Load(fs, "/cache/blob.yaml")
	require.NoError(t, err)
	for _, e := range restored.ResourceEntries() {
		assert.NotEqual(t, "dep", e.Key.Name, "transitive entry leaked into the cache blob")
	}
}

func TestFlushDeterministic(t *testing.T) {
	write := func() []byte {
		fs := testutil.NewMemoryFS()
		s := New(fs)
		merged.New("", primaryFixture(), parsed.Empty()).SerializeTo(s)
		require.NoError(t, s.Flush("/cache/blob.yaml"))
		data, err := fs.ReadFile("/cache/blob.yaml")
		require.NoError(t, err)
		return data
	}

	assert.Equal(t, write(), write())
}

func TestLoadMissingBlob(t *testing.T) {
	fs := testutil.NewMemoryFS()

	_, err := Load(fs, "/cache/nope.yaml")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileRead))
}

func TestLoadMalformedBlob(t *testing.T) {
	fs := testutil.NewMemoryFS()
	require.NoError(t, fs.MkdirAll("/cache", 0755))
	require.NoError(t, fs.WriteFile("/cache/bad.yaml", []byte("entries: [not a mapping"), 0644))

	_, err := Load(fs, "/cache/bad.yaml")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCacheDecode))
}

func TestLoadVersionMismatch(t *testing.T) {
	fs := testutil.NewMemoryFS()
	require.NoError(t, fs.MkdirAll("/cache", 0755))
	require.NoError(t, fs.WriteFile("/cache/old.yaml", []byte("version: 99\nentries: []\n"), 0644))

	_, err := Load(fs, "/cache/old.yaml")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCacheDecode))
}

func TestLoadUnknownKind(t *testing.T) {
	fs := testutil.NewMemoryFS()
	require.NoError(t, fs.MkdirAll("/cache", 0755))
	blob := "version: 1\nentries:\n  - kind: hologram\n    key: x/y\n"
	require.NoError(t, fs.WriteFile("/cache/odd.yaml", []byte(blob), 0644))

	_, err := Load(fs, "/cache/odd.yaml")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCacheDecode))
}

func TestFlushWriteFailure(t *testing.T) {
	fs := testutil.NewMemoryFS()
	fs.InjectError("/cache/blob.yaml", assert.AnError)

	s := New(fs)
	merged.New("", primaryFixture(), parsed.Empty()).SerializeTo(s)

	err := s.Flush("/cache/blob.yaml")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileWrite))
}
