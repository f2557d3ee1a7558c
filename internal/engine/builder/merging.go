package builder

import (
	"context"
	"slices"
	"strings"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/engine/dependency"
)

// Tag is the identity of a merge.
type Tag struct {
	kind   string
	values []string
}

// NoTag identifies a merge by the set of its sources.
func NoTag() Tag {
	return Tag{kind: "sources"}
}

// DescriptionTag identifies a merge by a free-form description.
func DescriptionTag(description string) Tag {
	return Tag{kind: "description", values: []string{description}}
}

// ProjectSetTag identifies a merge by a set of project names.
func ProjectSetTag(projects ...string) Tag {
	names := slices.Compact(slices.Sorted(slices.Values(projects)))
	return Tag{kind: "projects", values: names}
}

func (t Tag) String() string {
	if len(t.values) == 0 {
		return t.kind
	}
	return t.kind + ":" + strings.Join(t.values, ", ")
}

// Merging unions the outputs of its sources.
type Merging struct {
	tag     Tag
	sources []Builder
}

// NewMerging creates a merge of sources under tag.
func NewMerging(tag Tag, sources ...Builder) *Merging {
	return &Merging{tag: tag, sources: slices.Clone(sources)}
}

// Key implements Builder. Tagged merges are identified by the tag alone, so
// two merges over the same tag are the same builder.
func (m *Merging) Key() Key {
	if m.tag.kind != NoTag().kind {
		return NewKey("merge", append([]string{m.tag.kind}, m.tag.values...)...)
	}
	uids := slices.Compact(slices.Sorted(slices.Values(UIDs(m.sources))))
	return NewKey("merge", append([]string{m.tag.kind}, uids...)...)
}

// UID implements Builder.
func (m *Merging) UID() string { return m.Key().UID() }

// Tag returns the merge identity tag.
func (m *Merging) Tag() Tag { return m.tag }

// Dependencies implements Builder.
func (m *Merging) Dependencies() dependency.Dependencies {
	deps := make([]dependency.Dependencies, len(m.sources))
	for i, src := range m.sources {
		deps[i] = dependency.Subtask{Of: src}
	}
	return dependency.NewMultiple(deps...)
}

// Prerequisites implements Builder.
func (m *Merging) Prerequisites() []Builder { return slices.Clone(m.sources) }

// AddToContext implements Builder.
func (m *Merging) AddToContext(bc Context) error { return Register(bc, m) }

// CanRun implements Builder.
func (m *Merging) CanRun() bool { return true }

// Run implements Builder.
func (m *Merging) Run(_ context.Context, bc Context) (domain.OutputSet, error) {
	var out domain.OutputSet
	for _, src := range m.sources {
		res, err := bc.GetResults(src)
		if err != nil {
			return nil, err
		}
		out = out.Union(res)
	}
	return out, nil
}
