// Package serializer turns queued merge entries into a cache blob for
// cross-process reuse, and restores them. The queue side never fails;
// all errors surface when the queue is drained to disk or loaded back.
package serializer

import (
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/resmerge/pkg/errors"
	"github.com/arthur-debert/resmerge/pkg/logging"
	"github.com/arthur-debert/resmerge/pkg/parsed"
	"github.com/arthur-debert/resmerge/pkg/types"
)

// BlobVersion is bumped whenever the cache format changes shape.
const BlobVersion = 1

const (
	kindAsset = "asset"
	kindFile  = "file"
	kindValue = "value"
)

type blobPayload struct {
	Tag        string            `yaml:"tag"`
	Text       string            `yaml:"text,omitempty"`
	Attributes map[string]string `yaml:"attributes,omitempty"`
}

type blobEntry struct {
	Kind    string       `yaml:"kind"`
	Key     string       `yaml:"key"`
	Source  string       `yaml:"source,omitempty"`
	Payload *blobPayload `yaml:"payload,omitempty"`
}

type blob struct {
	Version int         `yaml:"version"`
	Entries []blobEntry `yaml:"entries"`
}

type queued struct {
	key   types.DataKey
	value types.DataValue
}

// Serializer implements types.Serializer: it accepts (key, value) pairs
// and later drains them into a versioned cache blob.
type Serializer struct {
	fs     types.FS
	logger zerolog.Logger
	queue  []queued
}

// New creates an empty serializer writing through the given filesystem.
func New(fsys types.FS) *Serializer {
	return &Serializer{
		fs:     fsys,
		logger: logging.GetLogger("serializer"),
	}
}

// QueueForSerialization enqueues one entry. It never fails; an entry the
// codec cannot represent is reported when the queue is flushed.
func (s *Serializer) QueueForSerialization(key types.DataKey, value types.DataValue) {
	s.queue = append(s.queue, queued{key: key, value: value})
}

// Count returns the number of queued entries.
func (s *Serializer) Count() int {
	return len(s.queue)
}

// Flush writes the queued entries to path as a cache blob. The queue is
// left intact; its commit point belongs to the caller.
func (s *Serializer) Flush(path string) error {
	entries := make([]blobEntry, 0, len(s.queue))
	for _, q := range s.queue {
		entry, err := encodeEntry(q)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Kind != entries[j].Kind {
			return entries[i].Kind < entries[j].Kind
		}
		return entries[i].Key < entries[j].Key
	})

	data, err := yaml.Marshal(blob{Version: BlobVersion, Entries: entries})
	if err != nil {
		return errors.Wrap(err, errors.ErrCacheEncode, "failed to encode cache blob")
	}

	if err := s.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(path))
	}
	if err := s.fs.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write cache blob %s", path)
	}

	s.logger.Debug().Int("entries", len(entries)).Str("path", path).Msg("Cache blob written")
	return nil
}

func encodeEntry(q queued) (blobEntry, error) {
	switch v := q.value.(type) {
	case parsed.FileAsset:
		return blobEntry{Kind: kindAsset, Key: q.key.String(), Source: v.Source()}, nil
	case parsed.FileResource:
		return blobEntry{Kind: kindFile, Key: q.key.String(), Source: v.Source()}, nil
	case parsed.ValueResource:
		p := v.Payload()
		return blobEntry{
			Kind:   kindValue,
			Key:    q.key.String(),
			Source: v.Source(),
			Payload: &blobPayload{
				Tag:        p.Tag,
				Text:       p.Text,
				Attributes: p.Attributes,
			},
		}, nil
	default:
		return blobEntry{}, errors.Newf(errors.ErrCacheEncode,
			"cannot serialize value of type %T for key %s", q.value, q.key)
	}
}

// Load reads a cache blob and restores its entries as a partition.
func Load(fsys types.FS, path string) (*parsed.ParsedData, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileRead, "failed to read cache blob %s", path)
	}

	var b blob
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, errors.Wrapf(err, errors.ErrCacheDecode, "malformed cache blob %s", path)
	}
	if b.Version != BlobVersion {
		return nil, errors.Newf(errors.ErrCacheDecode,
			"cache blob %s has version %d, want %d", path, b.Version, BlobVersion)
	}

	builder := parsed.NewBuilder()
	for _, e := range b.Entries {
		switch e.Kind {
		case kindAsset:
			builder.PutAsset(types.AssetPath{Path: e.Key}, parsed.NewFileAsset(e.Source))
		case kindFile:
			name, ok := types.ParseResourceName(e.Key)
			if !ok {
				return nil, errors.Newf(errors.ErrCacheDecode,
					"cache blob %s has malformed resource key %q", path, e.Key)
			}
			builder.PutResource(name, parsed.NewFileResource(e.Source))
		case kindValue:
			name, ok := types.ParseResourceName(e.Key)
			if !ok {
				return nil, errors.Newf(errors.ErrCacheDecode,
					"cache blob %s has malformed resource key %q", path, e.Key)
			}
			if e.Payload == nil {
				return nil, errors.Newf(errors.ErrCacheDecode,
					"cache blob %s value entry %q has no payload", path, e.Key)
			}
			builder.PutResource(name, parsed.NewValueResource(e.Source, types.ValuePayload{
				Tag:        e.Payload.Tag,
				Text:       e.Payload.Text,
				Attributes: e.Payload.Attributes,
			}))
		default:
			return nil, errors.Newf(errors.ErrCacheDecode,
				"cache blob %s has unknown entry kind %q", path, e.Kind)
		}
	}

	return builder.Build(), nil
}
