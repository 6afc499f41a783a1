package scheduler

import (
	"maps"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"go.trai.ch/kiln/internal/core/domain"
)

// importSpecifier matches the module specifier of static imports, re-exports,
// dynamic imports, require calls and CSS @import rules.
var importSpecifier = regexp.MustCompile(
	`(?:\bimport\s+(?:[\w*{}\s,$]+\s+from\s+)?|\bexport\s+[\w*{}\s,$]+\s+from\s+|\bimport\s*\(\s*|\brequire\s*\(\s*|@import\s+(?:url\()?\s*)['"]([^'"\n]+)['"]`,
)

// Specifiers returns every module specifier referenced by src, in order of
// first appearance.
func Specifiers(src []byte) []string {
	var out []string
	for _, m := range importSpecifier.FindAllSubmatch(src, -1) {
		spec := string(m[1])
		if !slices.Contains(out, spec) {
			out = append(out, spec)
		}
	}
	return out
}

// Resolver maps import specifiers to files inside the project.
type Resolver struct {
	fs      afero.Fs
	root    string
	aliases map[string]string
	exts    []string
}

// NewResolver creates a Resolver for cfg. Alias targets are relative to the
// project root unless absolute.
func NewResolver(fs afero.Fs, cfg *domain.Config) *Resolver {
	aliases := make(map[string]string, len(cfg.Aliases))
	for prefix, target := range cfg.Aliases {
		if !filepath.IsAbs(target) {
			target = filepath.Join(cfg.Root, target)
		}
		aliases[prefix] = target
	}
	return &Resolver{
		fs:      fs,
		root:    cfg.Root,
		aliases: aliases,
		exts:    slices.Sorted(maps.Keys(cfg.Extensions)),
	}
}

// Dependencies returns the sorted project files that file imports. Bare
// package specifiers and specifiers that do not resolve are skipped.
func (r *Resolver) Dependencies(file string, src []byte) []string {
	var deps []string
	for _, spec := range Specifiers(src) {
		base, ok := r.expand(file, spec)
		if !ok {
			continue
		}
		if dep, found := r.resolve(base); found && dep != file && !slices.Contains(deps, dep) {
			deps = append(deps, dep)
		}
	}
	slices.Sort(deps)
	return deps
}

func (r *Resolver) expand(file, spec string) (string, bool) {
	if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") {
		return filepath.Join(filepath.Dir(file), spec), true
	}

	// Longest alias prefix wins so "@/ui" beats "@".
	var best string
	for prefix := range r.aliases {
		if (spec == prefix || strings.HasPrefix(spec, prefix+"/")) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return "", false
	}
	return filepath.Join(r.aliases[best], strings.TrimPrefix(spec, best)), true
}

func (r *Resolver) resolve(base string) (string, bool) {
	if r.isFile(base) {
		return base, true
	}
	for _, ext := range r.exts {
		if r.isFile(base + ext) {
			return base + ext, true
		}
	}
	for _, ext := range r.exts {
		index := filepath.Join(base, "index"+ext)
		if r.isFile(index) {
			return index, true
		}
	}
	return "", false
}

func (r *Resolver) isFile(path string) bool {
	info, err := r.fs.Stat(path)
	return err == nil && !info.IsDir()
}
