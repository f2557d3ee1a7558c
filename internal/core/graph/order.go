package graph

import (
	"strings"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	unvisited = iota
	visiting
	done
)

// TopologicalOrder returns the nodes reachable from root with every node
// placed after all of its neighbors. Neighbors are explored in declaration
// order, so the result is deterministic. A cycle yields ErrCycleDetected with
// the cycle path, rendered through name, attached as metadata.
func TopologicalOrder[N comparable](root N, neighbors func(N) []N, name func(N) string) ([]N, error) {
	state := make(map[N]int)
	var (
		order []N
		path  []N
	)

	var visit func(n N) error
	visit = func(n N) error {
		state[n] = visiting
		path = append(path, n)

		for _, next := range neighbors(n) {
			switch state[next] {
			case visiting:
				return cycleError(path, next, name)
			case unvisited:
				if err := visit(next); err != nil {
					return err
				}
			}
		}

		state[n] = done
		path = path[:len(path)-1]
		order = append(order, n)
		return nil
	}

	if err := visit(root); err != nil {
		return nil, err
	}
	return order, nil
}

func cycleError[N comparable](path []N, back N, name func(N) string) error {
	start := 0
	for i, n := range path {
		if n == back {
			start = i
			break
		}
	}
	parts := make([]string, 0, len(path)-start+1)
	for _, n := range path[start:] {
		parts = append(parts, name(n))
	}
	parts = append(parts, name(back))
	return zerr.With(domain.ErrCycleDetected, "cycle", strings.Join(parts, " -> "))
}
