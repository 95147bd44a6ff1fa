package datatype

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/wizard"
	"gopkg.in/yaml.v3"
)

// DefaultPattern matches every YAML file below the search directory.
const DefaultPattern = "**/*.{yaml,yml}"

// LoadDir reads data type configs from the files below dir matching the
// doublestar pattern. A file may hold several YAML documents, one config
// each. Every config is validated. Files are read in lexical order.
func LoadDir(dir, pattern string) ([]wizard.DataTypeConfig, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("datatype: invalid glob pattern %q: %w", pattern, wizard.ErrValidation)
	}

	fsys := os.DirFS(dir)
	var paths []string
	err := doublestar.GlobWalk(fsys, pattern, func(path string, d iofs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("datatype: walk %s: %w", dir, err)
	}
	sort.Strings(paths)

	var configs []wizard.DataTypeConfig
	for _, path := range paths {
		cfgs, err := loadFile(filepath.Join(dir, filepath.FromSlash(path)))
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfgs...)
	}
	return configs, nil
}

func loadFile(path string) ([]wizard.DataTypeConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("datatype: %w", err)
	}
	defer f.Close()

	var configs []wizard.DataTypeConfig
	dec := yaml.NewDecoder(f)
	for {
		var cfg wizard.DataTypeConfig
		err := dec.Decode(&cfg)
		if errors.Is(err, io.EOF) {
			return configs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("datatype: decode %s: %w", path, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("datatype: %s: %w", path, err)
		}
		configs = append(configs, cfg)
	}
}
