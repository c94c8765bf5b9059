package catalog

import "github.com/probegate-dev/probegate/internal/contract"

// DefaultEntry maps a logical catalog name to a file path. The defaults
// table comes from the system config and is consulted in declaration
// order when no explicit path is given.
type DefaultEntry struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// ResolvePath decides which catalog file to load.
//
// An explicit filesystem path wins. A value matching a logical name in
// the defaults table resolves to that entry's path. An empty value
// falls back to the first defaults entry. With neither an explicit
// value nor any defaults, resolution fails loudly rather than choosing
// an arbitrary catalog.
func ResolvePath(nameOrPath string, defaults []DefaultEntry) (string, error) {
	if nameOrPath != "" {
		for _, entry := range defaults {
			if entry.Name == nameOrPath {
				return entry.Path, nil
			}
		}
		return nameOrPath, nil
	}

	if len(defaults) == 0 {
		return "", &contract.MissingDefaultsManifestError{}
	}
	return defaults[0].Path, nil
}
