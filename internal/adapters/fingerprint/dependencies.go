package fingerprint

import (
	"encoding/json"
	"maps"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
	"go.trai.ch/kiln/internal/core/domain"
)

// manifest is the part of package.json that declares dependencies.
type manifest struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// lockfile covers both the v1 "dependencies" and the v2+ "packages" layouts.
type lockfile struct {
	Packages     map[string]lockedPackage `json:"packages"`
	Dependencies map[string]lockedPackage `json:"dependencies"`
}

type lockedPackage struct {
	Version string `json:"version"`
}

// DependencyHash digests the project's dependency state: declared
// dependencies, locked versions, the dependency root mtime and the mtimes of
// a bounded sample of installed packages. Read and parse failures are folded
// into the digest instead of being returned.
func DependencyHash(fs afero.Fs, deps domain.DependencyConfig) string {
	hasher := xxhash.New()

	declared := hashManifest(fs, deps.Manifest, hasher)
	hashLockfile(fs, deps.Lockfile, hasher)

	if info, err := fs.Stat(deps.Root); err == nil {
		_, _ = hasher.WriteString("root:" + strconv.FormatInt(info.ModTime().UnixNano(), 10) + "\n")
	} else {
		_, _ = hasher.WriteString("root:missing\n")
	}

	names := sortedKeys(declared)
	if len(names) > deps.Sample {
		names = names[:deps.Sample]
	}
	for _, name := range names {
		if info, err := fs.Stat(joinRoot(deps.Root, name)); err == nil {
			_, _ = hasher.WriteString(name + ":" + strconv.FormatInt(info.ModTime().UnixNano(), 10) + "\n")
		} else {
			_, _ = hasher.WriteString(name + ":missing\n")
		}
	}

	return hex(hasher)
}

// hashManifest writes the sorted merge of direct and dev dependencies and
// returns it.
func hashManifest(fs afero.Fs, path string, hasher *xxhash.Digest) map[string]string {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		_, _ = hasher.WriteString("manifest-error:" + err.Error() + "\n")
		return nil
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		_, _ = hasher.WriteString("manifest-error:" + err.Error() + "\n")
		return nil
	}

	merged := make(map[string]string, len(m.Dependencies)+len(m.DevDependencies))
	maps.Copy(merged, m.Dependencies)
	maps.Copy(merged, m.DevDependencies)

	for _, name := range sortedKeys(merged) {
		_, _ = hasher.WriteString("dep:" + name + "@" + merged[name] + "\n")
	}
	return merged
}

func hashLockfile(fs afero.Fs, path string, hasher *xxhash.Digest) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		// A project without a lockfile is valid.
		_, _ = hasher.WriteString("lock:absent\n")
		return
	}

	var lock lockfile
	if err := json.Unmarshal(data, &lock); err != nil {
		_, _ = hasher.WriteString("lock-error:" + err.Error() + "\n")
		return
	}

	versions := make(map[string]string, len(lock.Packages)+len(lock.Dependencies))
	for name, pkg := range lock.Dependencies {
		versions[name] = pkg.Version
	}
	for name, pkg := range lock.Packages {
		versions[name] = pkg.Version
	}
	for _, name := range sortedKeys(versions) {
		_, _ = hasher.WriteString("lock:" + name + "@" + versions[name] + "\n")
	}
}
