// Package pipeline wires configuration, paths, and sinks around the
// merge coordinator. The upstream merger builds an UnwrittenData and
// hands it to exactly one of the commit helpers here.
package pipeline

import (
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/resmerge/pkg/config"
	"github.com/arthur-debert/resmerge/pkg/logging"
	"github.com/arthur-debert/resmerge/pkg/merged"
	"github.com/arthur-debert/resmerge/pkg/paths"
	"github.com/arthur-debert/resmerge/pkg/rclass"
	"github.com/arthur-debert/resmerge/pkg/serializer"
	"github.com/arthur-debert/resmerge/pkg/types"
	"github.com/arthur-debert/resmerge/pkg/writer"
)

// Pipeline holds the resolved environment for commit operations.
type Pipeline struct {
	fs     types.FS
	cfg    *config.Config
	paths  paths.Paths
	logger zerolog.Logger
}

// New resolves configuration from treeRoot (empty means the current
// directory), sets up logging, and prepares the output paths.
func New(fsys types.FS, treeRoot string) (*Pipeline, error) {
	cfg, err := config.Load(treeRoot)
	if err != nil {
		return nil, err
	}

	logging.SetupLogger(cfg.Logging.Verbosity)

	p, err := paths.New(cfg.Output.Root)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		fs:     fsys,
		cfg:    cfg,
		paths:  p,
		logger: logging.GetLogger("pipeline"),
	}, nil
}

// Paths exposes the resolved output layout.
func (p *Pipeline) Paths() paths.Paths {
	return p.paths
}

// Commit writes the staged data to the merged output tree.
func (p *Pipeline) Commit(data *merged.UnwrittenData) (*types.MergedData, error) {
	start := time.Now()

	result, err := data.Write(writer.New(p.fs, p.paths))
	if err != nil {
		p.logger.Error().Err(err).Msg("Commit failed")
		return nil, err
	}

	p.logger.Info().
		Str("resourceDir", result.ResourceDir).
		Str("assetDir", result.AssetDir).
		Str("manifest", result.Manifest).
		Dur("duration", time.Since(start)).
		Msg("Merged data committed")
	return result, nil
}

// CommitResourceClass writes the symbol table artifact to outPath. When
// packageName is empty the staged manifest supplies it.
func (p *Pipeline) CommitResourceClass(data *merged.UnwrittenData, packageName, outPath string) error {
	var cw *rclass.ClassWriter
	if packageName == "" {
		var err error
		cw, err = rclass.NewFromManifest(p.fs, data.Manifest(), outPath)
		if err != nil {
			return err
		}
	} else {
		cw = rclass.New(p.fs, packageName, outPath)
	}

	if err := data.WriteResourceClass(cw); err != nil {
		p.logger.Error().Err(err).Msg("Resource class commit failed")
		return err
	}
	p.logger.Info().Str("path", outPath).Msg("Symbol table committed")
	return nil
}

// Serialize drains the staged primary entries into the cache blob and
// returns its path.
func (p *Pipeline) Serialize(data *merged.UnwrittenData) (string, error) {
	s := serializer.New(p.fs)
	data.SerializeTo(s)

	path := p.cachePath()
	if err := s.Flush(path); err != nil {
		p.logger.Error().Err(err).Str("path", path).Msg("Cache serialization failed")
		return "", err
	}
	p.logger.Info().Int("entries", s.Count()).Str("path", path).Msg("Cache blob committed")
	return path, nil
}

func (p *Pipeline) cachePath() string {
	if p.cfg.Cache.Dir != "" {
		return filepath.Join(p.cfg.Cache.Dir, cacheFileName(p.cfg.Cache.UnitLabel))
	}
	return p.paths.CachePath(p.cfg.Cache.UnitLabel)
}

func cacheFileName(unitLabel string) string {
	if unitLabel == "" {
		return paths.CacheFileName
	}
	return unitLabel + "-" + paths.CacheFileName
}
