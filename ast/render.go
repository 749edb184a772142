package ast

import (
	"fmt"
	"strings"
)

// Render renders the tree rooted at ref as an s-expression, for example
// "(block (= x 5) (print (+ x 1)))".
func (a *Arena) Render(ref Ref) string {
	var b strings.Builder
	a.render(&b, ref)
	return b.String()
}

func (a *Arena) render(b *strings.Builder, ref Ref) {
	if ref == NoRef {
		b.WriteString("()")
		return
	}
	n := a.Get(ref)
	switch n.Kind {
	case IntLiteral, FloatLiteral, Identifier:
		b.WriteString(n.Text)
	case BoolLiteral:
		fmt.Fprintf(b, "%t", n.Flag)
	case Statements:
		b.WriteString("(block")
		a.renderChain(b, n.Left)
		b.WriteString(")")
	case Assign:
		b.WriteString("(= " + n.Text + " ")
		a.render(b, n.Left)
		b.WriteString(")")
	case If:
		b.WriteString("(if ")
		a.render(b, n.Left)
		branch := a.Get(n.Right)
		b.WriteString(" ")
		a.render(b, branch.Left)
		if branch.Right != NoRef {
			b.WriteString(" ")
			a.render(b, branch.Right)
		}
		b.WriteString(")")
	case While:
		b.WriteString("(while ")
		a.render(b, n.Left)
		b.WriteString(" ")
		a.render(b, n.Right)
		b.WriteString(")")
	case Print:
		b.WriteString("(print ")
		a.render(b, n.Left)
		b.WriteString(")")
	case Call:
		b.WriteString("(call " + n.Text)
		a.renderChain(b, n.Left)
		b.WriteString(")")
	case UnaryOp, BinaryOp:
		b.WriteString("(" + n.Op.String() + " ")
		a.render(b, n.Left)
		if n.Kind == BinaryOp {
			b.WriteString(" ")
			a.render(b, n.Right)
		}
		b.WriteString(")")
	case Function:
		b.WriteString("(func " + n.Text + " (")
		i := 0
		for p := range a.Chain(n.Left) {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(a.Get(p).Text)
			i++
		}
		b.WriteString(") ")
		a.render(b, n.Right)
		b.WriteString(")")
	case Return:
		b.WriteString("(return")
		if n.Left != NoRef {
			b.WriteString(" ")
			a.render(b, n.Left)
		}
		b.WriteString(")")
	default:
		fmt.Fprintf(b, "(?%s)", n.Kind)
	}
}

func (a *Arena) renderChain(b *strings.Builder, head Ref) {
	for ref := range a.Chain(head) {
		b.WriteString(" ")
		a.render(b, ref)
	}
}

// Tree returns a JSON-friendly description of the tree rooted at ref.
func (a *Arena) Tree(ref Ref) map[string]any {
	if ref == NoRef {
		return nil
	}
	n := a.Get(ref)
	out := map[string]any{"kind": n.Kind.String()}
	if n.Pos.IsValid() {
		out["line"] = n.Pos.Line
		out["column"] = n.Pos.Column
	}
	switch n.Kind {
	case IntLiteral, FloatLiteral, Identifier:
		out["text"] = n.Text
	case BoolLiteral:
		out["value"] = n.Flag
	case Statements:
		out["body"] = a.treeChain(n.Left)
	case Assign:
		out["name"] = n.Text
		out["value"] = a.Tree(n.Left)
	case If:
		branch := a.Get(n.Right)
		out["cond"] = a.Tree(n.Left)
		out["then"] = a.Tree(branch.Left)
		if branch.Right != NoRef {
			out["else"] = a.Tree(branch.Right)
		}
	case While:
		out["cond"] = a.Tree(n.Left)
		out["body"] = a.Tree(n.Right)
	case Print:
		out["value"] = a.Tree(n.Left)
	case Call:
		out["name"] = n.Text
		out["args"] = a.treeChain(n.Left)
	case UnaryOp:
		out["op"] = n.Op.String()
		out["operand"] = a.Tree(n.Left)
	case BinaryOp:
		out["op"] = n.Op.String()
		out["left"] = a.Tree(n.Left)
		out["right"] = a.Tree(n.Right)
	case Function:
		out["name"] = n.Text
		var params []string
		for p := range a.Chain(n.Left) {
			params = append(params, a.Get(p).Text)
		}
		out["params"] = params
		out["body"] = a.Tree(n.Right)
	case Return:
		if n.Left != NoRef {
			out["value"] = a.Tree(n.Left)
		}
	}
	return out
}

func (a *Arena) treeChain(head Ref) []any {
	out := []any{}
	for ref := range a.Chain(head) {
		out = append(out, a.Tree(ref))
	}
	return out
}
