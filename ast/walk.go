package ast

import "iter"

// Chain yields the handles of a chain starting at head, following Next links.
func (a *Arena) Chain(head Ref) iter.Seq[Ref] {
	return func(yield func(Ref) bool) {
		for ref := head; ref != NoRef && a.Valid(ref); ref = a.cell(ref).Next {
			if !yield(ref) {
				return
			}
		}
	}
}

// ChainLen returns the number of cells in the chain starting at head.
func (a *Arena) ChainLen(head Ref) int {
	n := 0
	for range a.Chain(head) {
		n++
	}
	return n
}

// children returns the direct children of a cell in evaluation order.
func (a *Arena) children(ref Ref) []Ref {
	n := a.Get(ref)
	var out []Ref
	switch n.Kind {
	case Statements, Call, Function:
		for c := range a.Chain(n.Left) {
			out = append(out, c)
		}
		if n.Kind == Function && n.Right != NoRef {
			out = append(out, n.Right)
		}
	case Branch, BinaryOp, While, If:
		if n.Left != NoRef {
			out = append(out, n.Left)
		}
		if n.Right != NoRef {
			out = append(out, n.Right)
		}
	case Assign, Print, UnaryOp, Return:
		if n.Left != NoRef {
			out = append(out, n.Left)
		}
	}
	return out
}

// Preorder returns an iterator over every cell of the tree rooted at root,
// parents before children.
func (a *Arena) Preorder(root Ref) iter.Seq[Ref] {
	return func(yield func(Ref) bool) {
		var visit func(Ref) bool
		visit = func(ref Ref) bool {
			if !yield(ref) {
				return false
			}
			for _, c := range a.children(ref) {
				if !visit(c) {
					return false
				}
			}
			return true
		}
		if root != NoRef {
			visit(root)
		}
	}
}

// Inspect traverses the tree rooted at root in depth-first order, calling f
// for each cell. If f returns false, the children of that cell are skipped.
func (a *Arena) Inspect(root Ref, f func(Ref, Node) bool) {
	if root == NoRef {
		return
	}
	if !f(root, a.Get(root)) {
		return
	}
	for _, c := range a.children(root) {
		a.Inspect(c, f)
	}
}

// CountKinds returns how many cells of each kind the tree contains.
func (a *Arena) CountKinds(root Ref) map[Kind]int {
	counts := map[Kind]int{}
	for ref := range a.Preorder(root) {
		counts[a.Get(ref).Kind]++
	}
	return counts
}
