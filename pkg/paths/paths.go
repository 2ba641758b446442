// Package paths provides centralized path handling for resmerge.
// It implements XDG Base Directory specification compliance and gives the
// sinks a consistent view of the merged output tree.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/arthur-debert/resmerge/pkg/errors"
)

// Environment variable names
const (
	// EnvOutputRoot overrides the merged-output root directory
	EnvOutputRoot = "RESMERGE_OUT_DIR"

	// EnvCacheDir overrides the XDG cache directory for resmerge
	EnvCacheDir = "RESMERGE_CACHE_DIR"
)

// Directory and file names inside the output tree.
// These define the merged-output layout and are not user-configurable;
// downstream packaging steps depend on them staying consistent.
const (
	// ResourceDirName is the subdirectory for merged resources
	ResourceDirName = "res"

	// AssetDirName is the subdirectory for merged assets
	AssetDirName = "assets"

	// CacheFileName is the default name of the serialized cache blob
	CacheFileName = "merged.bin.yaml"

	// appDirName is the per-app directory under XDG locations
	appDirName = "resmerge"
)

// Paths provides centralized path management for resmerge
type Paths interface {
	// OutputRoot returns the root of the merged output tree
	OutputRoot() string

	// ResourceDirectory returns the merged resource directory
	ResourceDirectory() string

	// AssetDirectory returns the merged asset directory
	AssetDirectory() string

	// ManifestOutputPath returns where a staged manifest is copied,
	// given its source path
	ManifestOutputPath(manifestSource string) string

	// CacheDir returns the directory for serialized cache blobs
	CacheDir() string

	// CachePath returns the path of the cache blob for a build unit
	CachePath(unitLabel string) string
}

type paths struct {
	outputRoot string
	cacheDir   string
}

// New creates a new Paths instance rooted at outputRoot. If outputRoot is
// empty, it is determined from RESMERGE_OUT_DIR; there is no further
// fallback since writing merged output to an implicit location would be
// surprising.
func New(outputRoot string) (Paths, error) {
	if outputRoot == "" {
		outputRoot = os.Getenv(EnvOutputRoot)
	}
	if outputRoot == "" {
		return nil, errors.New(errors.ErrInvalidInput,
			"no output root given and "+EnvOutputRoot+" is not set")
	}

	cacheDir := os.Getenv(EnvCacheDir)
	if cacheDir == "" {
		cacheDir = filepath.Join(xdg.CacheHome, appDirName)
	}

	return &paths{
		outputRoot: filepath.Clean(outputRoot),
		cacheDir:   filepath.Clean(cacheDir),
	}, nil
}

func (p *paths) OutputRoot() string {
	return p.outputRoot
}

func (p *paths) ResourceDirectory() string {
	return filepath.Join(p.outputRoot, ResourceDirName)
}

func (p *paths) AssetDirectory() string {
	return filepath.Join(p.outputRoot, AssetDirName)
}

func (p *paths) ManifestOutputPath(manifestSource string) string {
	return filepath.Join(p.outputRoot, filepath.Base(manifestSource))
}

func (p *paths) CacheDir() string {
	return p.cacheDir
}

func (p *paths) CachePath(unitLabel string) string {
	if unitLabel == "" {
		return filepath.Join(p.cacheDir, CacheFileName)
	}
	return filepath.Join(p.cacheDir, unitLabel+"-"+CacheFileName)
}
