package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/probegate-dev/probegate/internal/catalog"
	"github.com/probegate-dev/probegate/internal/config"
)

// loadSystemConfig loads the global configuration, honoring --config.
func loadSystemConfig() (*config.SystemConfig, error) {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	if path == "" {
		return &config.SystemConfig{}, nil
	}
	return config.LoadSystemConfig(path)
}

// resolveCatalog turns the --catalog flag (a configured name, a path,
// or empty) into an index registered in the given repository. The
// index that comes back is always served through the repository, so
// every consumer resolves by catalog key.
func resolveCatalog(nameOrPath string, sys *config.SystemConfig, repo *catalog.Repository) (*catalog.Index, string, error) {
	path, err := catalog.ResolvePath(nameOrPath, sys.CatalogDefaults())
	if err != nil {
		return nil, "", err
	}
	loaded, err := catalog.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load catalog %s: %w", path, err)
	}
	if err := repo.Register(loaded); err != nil {
		return nil, "", err
	}
	idx, err := repo.Get(loaded.Key())
	if err != nil {
		return nil, "", err
	}
	return idx, path, nil
}

// loadConfiguredCatalogs loads every configured default catalog into
// one repository, keyed by each catalog's declared key. Two defaults
// declaring the same key is a configuration error.
func loadConfiguredCatalogs(sys *config.SystemConfig) (*catalog.Repository, error) {
	repo := catalog.NewRepository()
	for _, entry := range sys.CatalogDefaults() {
		idx, err := catalog.Load(entry.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to load configured catalog %s (%s): %w", entry.Name, entry.Path, err)
		}
		if err := repo.Register(idx); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

// collectProbes expands file and directory arguments into a sorted,
// de-duplicated list of probe paths. Directories are walked for regular
// files, skipping dotfiles.
func collectProbes(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var probes []string

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			probes = append(probes, path)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot read probe argument %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") && path != arg {
					return fs.SkipDir
				}
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") {
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", arg, err)
		}
	}

	if len(probes) == 0 {
		return nil, fmt.Errorf("no probes found in %v", args)
	}

	sort.Strings(probes)
	return probes, nil
}

// openOutput returns the writer for --output, defaulting to stdout.
// The returned closer is a no-op for stdout.
func openOutput(outFile string) (*os.File, func(), error) {
	if outFile == "" {
		return os.Stdout, func() {}, nil
	}
	//nolint:gosec // G304: User-controlled output file path is intentional
	file, err := os.Create(outFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, func() { _ = file.Close() }, nil
}
