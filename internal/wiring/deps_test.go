package wiring_test

import (
	"testing"

	"github.com/grindlemire/graft"
)

// TestGraftDependencies checks that every node declaring a dependency
// actually uses it, and every used dependency is declared.
func TestGraftDependencies(t *testing.T) {
	// AssertDepsValid infers dependency ids from the package of the type in
	// Dep[T]. Every adapter here resolves a ports interface, so the inferred
	// id is always "ports".
	t.Skip("graft static analysis cannot tell apart nodes sharing the ports package")
	graft.AssertDepsValid(t, "../../internal")
}
