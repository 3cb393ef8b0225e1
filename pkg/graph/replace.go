package graph

// ReplaceNode returns a new graph in which every former reference to old now
// points to replacement. Ancestors of old are rebuilt (their edge lists
// change, so their identity must change too); every subgraph not on a path to
// old is shared with the input untouched.
//
// The memo map records every substitution made, keyed by the node it
// replaced. Passing the same memo through a sequence of replacements lets
// later calls resolve "already replaced, redirect again" chains: a memo entry
// whose value has itself been replaced is followed to the current version.
// memo may be nil for a one-off replacement.
func ReplaceNode(root, old, replacement *Node, memo map[*Node]*Node) *Node {
	if memo == nil {
		memo = make(map[*Node]*Node)
	}
	memo[old] = replacement
	return rewrite(root, memo)
}

// Chase follows replacement chains in memo, returning the current version of
// n (n itself if it was never replaced).
func Chase(memo map[*Node]*Node, n *Node) *Node {
	for {
		next, ok := memo[n]
		if !ok || next == n {
			return n
		}
		n = next
	}
}

func rewrite(n *Node, memo map[*Node]*Node) *Node {
	return rewriteMemo(n, memo, make(map[*Node]*Node))
}

// seen caches results for a single rewrite so a shared subgraph is visited
// once regardless of how many paths reach it. Unchanged nodes go only into
// seen, never into memo: memo outlives the call, and pinning a node to
// itself there would block its replacement in a later ReplaceNode.
func rewriteMemo(n *Node, memo, seen map[*Node]*Node) *Node {
	if _, ok := memo[n]; ok {
		return Chase(memo, n)
	}
	if out, ok := seen[n]; ok {
		return out
	}
	changed := false
	edges := make([]Edge, len(n.out))
	for i, e := range n.out {
		t := rewriteMemo(e.target, memo, seen)
		if t != e.target {
			changed = true
		}
		edges[i] = Edge{target: t, req: e.req}
	}
	if !changed {
		seen[n] = n
		return n
	}
	nn := &Node{label: n.label, out: edges}
	memo[n] = nn
	seen[n] = nn
	return nn
}
