package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"

	"github.com/jwebster45206/five-acts/pkg/narrative"
	"github.com/jwebster45206/five-acts/pkg/storage"
	"gopkg.in/yaml.v3"
)

// contentExts are tried in order when looking up a content file.
var contentExts = []string{".json", ".yaml", ".yml"}

// ContentLoader reads act content and palettes from a data directory.
// Files may be authored as JSON or YAML.
type ContentLoader struct {
	fsys   fs.FS
	logger *slog.Logger
}

// NewContentLoader reads content rooted at dataDir.
func NewContentLoader(dataDir string, logger *slog.Logger) *ContentLoader {
	if dataDir == "" {
		dataDir = "./data"
	}
	return NewContentLoaderFS(os.DirFS(dataDir), logger)
}

// NewContentLoaderFS reads content from fsys.
func NewContentLoaderFS(fsys fs.FS, logger *slog.Logger) *ContentLoader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ContentLoader{fsys: fsys, logger: logger}
}

// GetAct loads acts/act<N>/. The manifest is required; a missing moments
// or config file yields an empty set and default config.
func (c *ContentLoader) GetAct(ctx context.Context, act int) (*narrative.Act, error) {
	dir := fmt.Sprintf("acts/act%d", act)

	var manifest narrative.Manifest
	if err := c.decode(path.Join(dir, "manifest"), &manifest); err != nil {
		return nil, fmt.Errorf("failed to load manifest for act %d: %w", act, err)
	}

	var moments narrative.MomentSet
	if err := c.decode(path.Join(dir, "moments"), &moments); err != nil {
		if !errors.Is(err, storage.ErrContentNotFound) {
			return nil, fmt.Errorf("failed to load moments for act %d: %w", act, err)
		}
		c.logger.Warn("Act has no moments file", "act", act)
	}

	var cfg narrative.ActConfig
	if err := c.decode(path.Join(dir, "config"), &cfg); err != nil {
		if !errors.Is(err, storage.ErrContentNotFound) {
			return nil, fmt.Errorf("failed to load config for act %d: %w", act, err)
		}
		c.logger.Debug("Act has no config file, using defaults", "act", act)
	}
	if cfg.Act == 0 {
		cfg.Act = act
	}
	if cfg.Name == "" {
		cfg.Name = manifest.Name
	}

	return &narrative.Act{
		Number:   act,
		Manifest: manifest,
		Moments:  moments.Moments,
		Config:   cfg.WithDefaults(),
	}, nil
}

// GetPalettes loads palettes.yaml keyed by act number. A missing file is not
// an error.
func (c *ContentLoader) GetPalettes(ctx context.Context) (map[int]narrative.Palette, error) {
	palettes := make(map[int]narrative.Palette)
	if err := c.decode("palettes", &palettes); err != nil {
		if errors.Is(err, storage.ErrContentNotFound) {
			return palettes, nil
		}
		return nil, fmt.Errorf("failed to load palettes: %w", err)
	}
	return palettes, nil
}

// decode reads base plus the first extension that exists.
func (c *ContentLoader) decode(base string, v any) error {
	for _, ext := range contentExts {
		name := base + ext
		data, err := fs.ReadFile(c.fsys, name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		c.logger.Debug("Loading content file", "path", name)
		if ext == ".json" {
			err = json.Unmarshal(data, v)
		} else {
			err = yaml.Unmarshal(data, v)
		}
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}
		return nil
	}
	return fmt.Errorf("%s: %w", base, storage.ErrContentNotFound)
}
