package graph

// Reachable returns every node reachable from root, including root itself, in
// deterministic first-visit (preorder DFS) order.
func Reachable(root *Node) []*Node {
	var out []*Node
	seen := make(map[*Node]bool)
	var visit func(n *Node)
	visit = func(n *Node) {
		if seen[n] {
			return
		}
		seen[n] = true
		out = append(out, n)
		for _, e := range n.out {
			visit(e.target)
		}
	}
	visit(root)
	return out
}

// Sorted returns the nodes reachable from root in topological order with
// dependencies before dependents. Ties are broken by edge declaration order,
// so the result is deterministic for a given graph.
func Sorted(root *Node) []*Node {
	var out []*Node
	seen := make(map[*Node]bool)
	var visit func(n *Node)
	visit = func(n *Node) {
		if seen[n] {
			return
		}
		seen[n] = true
		for _, e := range n.out {
			visit(e.target)
		}
		out = append(out, n)
	}
	visit(root)
	return out
}

// FindEdgeBFS returns the shallowest edge reachable from root for which pred
// returns true, searching breadth-first and examining each node's edges in
// declaration order. Returns a zero edge and false when nothing matches.
func FindEdgeBFS(root *Node, pred func(Edge) bool) (Edge, bool) {
	queue := []*Node{root}
	seen := map[*Node]bool{root: true}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, e := range n.out {
			if pred(e) {
				return e, true
			}
			if !seen[e.target] {
				seen[e.target] = true
				queue = append(queue, e.target)
			}
		}
	}
	return Edge{}, false
}

// CountEdges returns the number of edges reachable from root.
func CountEdges(root *Node) int {
	total := 0
	for _, n := range Reachable(root) {
		total += len(n.out)
	}
	return total
}
