// Package graph provides generic traversals over neighbor functions.
//
// Both traversals are pure functions of the graph: they never revisit a node
// and always terminate on finite graphs.
package graph

// DepthFirst returns the nodes reachable from root in depth-first order.
// Unvisited neighbors are pushed in declaration order, so the last-declared
// neighbor is visited first.
func DepthFirst[N comparable](root N, neighbors func(N) []N) []N {
	return DepthFirstFold(root, neighbors, []N(nil), appendNode[N])
}

// BreadthFirst returns the nodes reachable from root in breadth-first order.
// Neighbors are visited in declaration order.
func BreadthFirst[N comparable](root N, neighbors func(N) []N) []N {
	return BreadthFirstFold(root, neighbors, []N(nil), appendNode[N])
}

// DepthFirstFold folds visit over the depth-first visitation sequence,
// starting from acc.
func DepthFirstFold[N comparable, A any](root N, neighbors func(N) []N, acc A, visit func(A, N) A) A {
	visited := make(map[N]struct{})
	stack := []N{root}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[n]; seen {
			continue
		}
		visited[n] = struct{}{}
		acc = visit(acc, n)

		for _, next := range neighbors(n) {
			if _, seen := visited[next]; !seen {
				stack = append(stack, next)
			}
		}
	}
	return acc
}

// BreadthFirstFold folds visit over the breadth-first visitation sequence,
// starting from acc.
func BreadthFirstFold[N comparable, A any](root N, neighbors func(N) []N, acc A, visit func(A, N) A) A {
	visited := map[N]struct{}{root: {}}
	queue := []N{root}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		acc = visit(acc, n)

		for _, next := range neighbors(n) {
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			queue = append(queue, next)
		}
	}
	return acc
}

func appendNode[N any](acc []N, n N) []N {
	return append(acc, n)
}
