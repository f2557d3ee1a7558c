package ports

// InputResolver defines the interface for resolving source patterns.
//
//go:generate mockgen -destination=mocks/mock_resolver.go -package=mocks -source=resolver.go
type InputResolver interface {
	// ResolveInputs resolves glob patterns relative to root into a sorted
	// list of slash-separated root-relative file paths.
	ResolveInputs(inputs []string, root string) ([]string, error)
}
