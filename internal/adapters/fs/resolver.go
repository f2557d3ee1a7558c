package fs

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.InputResolver = (*Resolver)(nil)

// Resolver implements the InputResolver interface using filepath.Glob.
type Resolver struct {
	walker *Walker
}

// NewResolver creates a new Resolver.
func NewResolver(walker *Walker) *Resolver {
	return &Resolver{walker: walker}
}

// ResolveInputs expands the patterns below root. Directories expand to the
// files they contain. Every pattern must match at least one file.
func (r *Resolver) ResolveInputs(inputs []string, root string) ([]string, error) {
	unique := make(map[string]struct{})

	for _, input := range inputs {
		pattern := filepath.Join(root, filepath.FromSlash(input))

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrInputNotFound.Error()), "pattern", input)
		}

		found := false
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				continue
			}
			if !info.IsDir() {
				if rel, ok := relative(root, match); ok {
					unique[rel] = struct{}{}
					found = true
				}
				continue
			}
			for file := range r.walker.WalkFiles(match, nil) {
				if rel, ok := relative(root, file); ok {
					unique[rel] = struct{}{}
					found = true
				}
			}
		}

		if !found {
			return nil, zerr.With(domain.ErrInputNotFound, "pattern", input)
		}
	}

	result := make([]string, 0, len(unique))
	for p := range unique {
		result = append(result, p)
	}
	slices.Sort(result)
	return result, nil
}

// relative returns the slash-separated path of target below root.
func relative(root, target string) (string, bool) {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}
