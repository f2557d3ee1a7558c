package graph

// Node is a value with an ordered list of neighbors.
type Node[T any] struct {
	Value     T
	neighbors []*Node[T]
}

// NewNode creates a node linked to the given neighbors.
func NewNode[T any](value T, neighbors ...*Node[T]) *Node[T] {
	return &Node[T]{Value: value, neighbors: neighbors}
}

// Link appends neighbors after the existing ones.
func (n *Node[T]) Link(neighbors ...*Node[T]) *Node[T] {
	n.neighbors = append(n.neighbors, neighbors...)
	return n
}

// Neighbors returns the neighbors in declaration order.
func (n *Node[T]) Neighbors() []*Node[T] {
	return n.neighbors
}

// Values maps nodes to their values.
func Values[T any](nodes []*Node[T]) []T {
	out := make([]T, len(nodes))
	for i, n := range nodes {
		out[i] = n.Value
	}
	return out
}
