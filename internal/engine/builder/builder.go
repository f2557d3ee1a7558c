// Package builder defines the unit of build work and its composite forms.
//
// Builders are compared structurally through their Key: two builders with the
// same type tag and constructor arguments are the same builder, whichever code
// path constructed them.
package builder

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/engine/dependency"
)

// argSeparator joins constructor arguments inside a Key. It cannot appear in
// names or paths.
const argSeparator = "\x00"

// Key is the structural identity of a builder: a type tag plus its
// constructor arguments. Keys are comparable and used directly as map keys.
type Key struct {
	Type string
	Args string
}

// NewKey builds a key from a type tag and ordered constructor arguments.
func NewKey(typ string, args ...string) Key {
	return Key{Type: typ, Args: strings.Join(args, argSeparator)}
}

// UID derives the stable uid used to key the fingerprint cache.
func (k Key) UID() string {
	return fmt.Sprintf("%s-%016x", k.Type, xxhash.Sum64String(k.Args))
}

func (k Key) String() string {
	return k.Type + "(" + strings.ReplaceAll(k.Args, argSeparator, ", ") + ")"
}

// Builder is a unit of build work.
type Builder interface {
	// Key returns the structural identity of the builder.
	Key() Key
	// UID returns the stable identity string, derived from Key.
	UID() string
	// Dependencies describes the state the builder's outputs derive from.
	Dependencies() dependency.Dependencies
	// Prerequisites lists builders that must complete before this one runs.
	Prerequisites() []Builder
	// AddToContext registers the builder, and any builders it discovers,
	// with the build context. It is called during planning only.
	AddToContext(bc Context) error
	// CanRun reports whether the builder can run in this environment.
	// Returning false skips the builder without an error.
	CanRun() bool
	// Run performs the work and returns the produced target-relative outputs.
	Run(ctx context.Context, bc Context) (domain.OutputSet, error)
}

// Context is the part of the scheduler visible to builders.
type Context interface {
	// AddBuilder registers b with its prerequisites and returns the
	// canonical instance.
	AddBuilder(b Builder, prerequisites []Builder) (Builder, error)
	// GetEffectiveBuilder resolves b to its canonical instance.
	GetEffectiveBuilder(b Builder) Builder
	// GetResults returns the outputs of a builder that finished.
	GetResults(b Builder) (domain.OutputSet, error)
	// Settings returns the roots builders work against.
	Settings() domain.Settings
}

// Register is the default AddToContext: it adds b with its declared
// prerequisites.
func Register(bc Context, b Builder) error {
	_, err := bc.AddBuilder(b, b.Prerequisites())
	return err
}

// UIDs returns the uids of builders in order.
func UIDs(builders []Builder) []string {
	out := make([]string, len(builders))
	for i, b := range builders {
		out[i] = b.UID()
	}
	return out
}

type outputKey struct{}

// WithOutput returns a context carrying w as the sink for command output.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

// OutputFrom returns the output sink carried by ctx, or nil.
func OutputFrom(ctx context.Context) io.Writer {
	w, _ := ctx.Value(outputKey{}).(io.Writer)
	return w
}
