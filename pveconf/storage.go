package pveconf

import (
	"strings"

	errorspkg "github.com/pkg/errors"
)

// ResolveStoragePath turns a storage specification into a filesystem path.
// Absolute specs are directory-backed mounts and pass through untouched;
// `pool:subvol` specs are ZFS-style references mounted at /<pool>/<subvol>.
func ResolveStoragePath(spec string) (string, error) {
	if strings.HasPrefix(spec, "/") {
		return spec, nil
	}

	parts := strings.SplitN(spec, ":", 2)
	if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
		return "/" + parts[0] + "/" + parts[1], nil
	}

	return "", errorspkg.Errorf("unparseable storage specification `%s`", spec)
}

// TargetPaths resolves every storage spec of the configuration into a
// deduplicated, order-preserving list of directories to convert. Distinct
// specs can resolve to the same path; converting it twice would double-shift
// its tree, so duplicates are dropped here rather than trusted to the
// caller.
func (c Config) TargetPaths() ([]string, error) {
	paths := []string{}
	seen := map[string]bool{}

	for _, spec := range c.StorageSpecs {
		path, err := ResolveStoragePath(spec)
		if err != nil {
			return nil, err
		}
		if seen[path] {
			continue
		}
		seen[path] = true
		paths = append(paths, path)
	}

	return paths, nil
}
