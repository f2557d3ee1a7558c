package graph_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/graph"
	"go.trai.ch/zerr"
)

// sampleGraph builds:
//
//	1 -> [2, 3, 4]
//	2 -> [5, 12]
//	5 -> [6, 7, 8]
//	3 -> [9, 12]
//	12 -> [11]
//	9 -> [11, 10]
func sampleGraph() *graph.Node[int] {
	nodes := make(map[int]*graph.Node[int])
	for i := 1; i <= 12; i++ {
		nodes[i] = graph.NewNode(i)
	}
	nodes[1].Link(nodes[2], nodes[3], nodes[4])
	nodes[2].Link(nodes[5], nodes[12])
	nodes[5].Link(nodes[6], nodes[7], nodes[8])
	nodes[3].Link(nodes[9])
	nodes[3].Link(nodes[12])
	nodes[12].Link(nodes[11])
	nodes[9].Link(nodes[11], nodes[10])
	return nodes[1]
}

func TestDepthFirst(t *testing.T) {
	got := graph.Values(graph.DepthFirst(sampleGraph(), (*graph.Node[int]).Neighbors))
	assert.Equal(t, []int{1, 4, 3, 12, 11, 9, 10, 2, 5, 8, 7, 6}, got)
}

func TestBreadthFirst(t *testing.T) {
	got := graph.Values(graph.BreadthFirst(sampleGraph(), (*graph.Node[int]).Neighbors))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 12, 9, 6, 7, 8, 11, 10}, got)
}

func TestFold_Restartable(t *testing.T) {
	root := sampleGraph()
	sum := func(acc, n int) int { return acc + n }
	values := func(n *graph.Node[int]) []*graph.Node[int] { return n.Neighbors() }
	visit := func(acc int, n *graph.Node[int]) int { return sum(acc, n.Value) }

	first := graph.DepthFirstFold(root, values, 0, visit)
	second := graph.DepthFirstFold(root, values, 0, visit)
	assert.Equal(t, 78, first)
	assert.Equal(t, first, second)

	assert.Equal(t, 178, graph.BreadthFirstFold(root, values, 100, visit))
}

func TestTraversal_Cycles(t *testing.T) {
	a := graph.NewNode("a")
	b := graph.NewNode("b")
	c := graph.NewNode("c")
	a.Link(b, c)
	b.Link(a, c)
	c.Link(a, c)

	assert.Equal(t, []string{"a", "c", "b"}, graph.Values(graph.DepthFirst(a, (*graph.Node[string]).Neighbors)))
	assert.Equal(t, []string{"a", "b", "c"}, graph.Values(graph.BreadthFirst(a, (*graph.Node[string]).Neighbors)))
}

func TestTraversal_SingleNode(t *testing.T) {
	n := graph.NewNode(7)
	assert.Equal(t, []int{7}, graph.Values(graph.DepthFirst(n, (*graph.Node[int]).Neighbors)))
	assert.Equal(t, []int{7}, graph.Values(graph.BreadthFirst(n, (*graph.Node[int]).Neighbors)))
}

func TestTopologicalOrder(t *testing.T) {
	edges := map[string][]string{
		"app":  {"lib", "util"},
		"lib":  {"util"},
		"util": nil,
	}
	order, err := graph.TopologicalOrder("app", func(n string) []string { return edges[n] }, func(n string) string { return n })
	require.NoError(t, err)
	assert.Equal(t, []string{"util", "lib", "app"}, order)
}

func TestTopologicalOrder_Cycle(t *testing.T) {
	edges := map[int][]int{1: {2}, 2: {3}, 3: {2}}
	_, err := graph.TopologicalOrder(1, func(n int) []int { return edges[n] }, strconv.Itoa)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrCycleDetected.Error())

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, "2 -> 3 -> 2", zErr.Metadata()["cycle"])
}
