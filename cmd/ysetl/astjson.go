// The JSON AST encoding is CLI-specific convenience (SPEC_FULL.md §6), not
// part of the compiler's contract: it exists so this reference driver has
// something concrete to read from disk, in lieu of the lexer/parser the
// spec explicitly leaves external.
package main

import (
	"encoding/json"
	"fmt"

	"ysetl/internal/ast"
)

// node is the on-wire shape every AST JSON node takes: a "type"
// discriminator plus variant-specific fields, all optional so one struct
// covers every node kind.
type node struct {
	Type string `json:"type"`

	Value  json.RawMessage `json:"value,omitempty"`
	Name   string          `json:"name,omitempty"`
	Op     string          `json:"op,omitempty"`
	Left   *node           `json:"left,omitempty"`
	Right  *node           `json:"right,omitempty"`
	Cond   *node           `json:"cond,omitempty"`
	Then   *node           `json:"then,omitempty"`
	Else   *node           `json:"else,omitempty"`
	Body   []node          `json:"body,omitempty"`
	Args   []node          `json:"args,omitempty"`
	Elems  []node          `json:"elements,omitempty"`
	Start  *node           `json:"start,omitempty"`
	Step   *node           `json:"step,omitempty"`
	End    *node           `json:"end,omitempty"`
	Former *node           `json:"former,omitempty"`
	Key    *node           `json:"key,omitempty"`
	Sel    *node           `json:"selector,omitempty"`

	ReqParams    []string `json:"req_params,omitempty"`
	OptParams    []string `json:"opt_params,omitempty"`
	LockedParams []string `json:"locked_params,omitempty"`
	NullReturn   bool     `json:"null_return,omitempty"`

	Input *node  `json:"input,omitempty"`
	Cases []caseNode `json:"cases,omitempty"`

	Pos *posWire `json:"pos,omitempty"`
}

// posWire is the optional source-position payload an "ident" node may
// carry (SPEC_FULL.md §4.5/§4.6's DebugInfo note). Absent entirely on a
// front end with no position tracking.
type posWire struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type caseNode struct {
	Cond       *node  `json:"cond,omitempty"`
	Body       []node `json:"body"`
	NullReturn bool   `json:"null_return,omitempty"`
}

var binOps = map[string]ast.BinOp{
	"add": ast.Add, "subtract": ast.Subtract, "mult": ast.Mult, "div": ast.Div,
	"intdiv": ast.IntDiv, "mod": ast.Mod, "exp": ast.Exp,
	"lt": ast.Lt, "lteq": ast.Lteq, "gt": ast.Gt, "gteq": ast.Gteq,
	"eq": ast.Eq, "neq": ast.Neq, "nullcoal": ast.NullCoal, "tuplestart": ast.TupleStart,
	"with": ast.With, "less": ast.Less, "union": ast.Union, "inter": ast.Inter,
	"in": ast.In, "notin": ast.Notin, "subset": ast.Subset,
	"and": ast.And, "or": ast.Or, "impl": ast.Impl, "iff": ast.Iff,
}

var preOps = map[string]ast.PreOp{
	"negate": ast.Negate, "not": ast.Not, "id": ast.Id, "dynvar": ast.DynVar, "size": ast.Size,
}

// ParseProgram decodes a JSON-encoded top-level AST program.
func ParseProgram(data []byte) (ast.Program, error) {
	var wire struct {
		Expressions []node `json:"expressions"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return ast.Program{}, fmt.Errorf("decoding AST JSON: %w", err)
	}
	exprs := make([]ast.Expr, len(wire.Expressions))
	for i, n := range wire.Expressions {
		e, err := n.toExpr()
		if err != nil {
			return ast.Program{}, err
		}
		exprs[i] = e
	}
	return ast.Program{Expressions: exprs}, nil
}

func (n *node) toExpr() (ast.Expr, error) {
	if n == nil {
		return nil, fmt.Errorf("nil AST node")
	}
	switch n.Type {
	case "null":
		return ast.NullLit{}, nil
	case "true":
		return ast.TrueLit{}, nil
	case "false":
		return ast.FalseLit{}, nil
	case "integer":
		var v int64
		if err := json.Unmarshal(n.Value, &v); err != nil {
			return nil, fmt.Errorf("integer literal: %w", err)
		}
		return ast.IntegerLit{Value: v}, nil
	case "float":
		var v float64
		if err := json.Unmarshal(n.Value, &v); err != nil {
			return nil, fmt.Errorf("float literal: %w", err)
		}
		return ast.FloatLit{Value: v}, nil
	case "string":
		var v string
		if err := json.Unmarshal(n.Value, &v); err != nil {
			return nil, fmt.Errorf("string literal: %w", err)
		}
		return ast.StringLit{Value: v}, nil
	case "ident":
		id := ast.Ident{Name: n.Name}
		if n.Pos != nil {
			id.Pos = &ast.Position{Line: n.Pos.Line, Column: n.Pos.Column}
		}
		return id, nil
	case "infix":
		op, ok := binOps[n.Op]
		if !ok {
			return nil, fmt.Errorf("unknown infix operator %q", n.Op)
		}
		left, err := n.Left.toExpr()
		if err != nil {
			return nil, err
		}
		right, err := n.Right.toExpr()
		if err != nil {
			return nil, err
		}
		return ast.Infix{Op: op, Left: left, Right: right}, nil
	case "prefix":
		op, ok := preOps[n.Op]
		if !ok {
			return nil, fmt.Errorf("unknown prefix operator %q", n.Op)
		}
		right, err := n.Right.toExpr()
		if err != nil {
			return nil, err
		}
		return ast.Prefix{Op: op, Right: right}, nil
	case "ternary":
		cond, err := n.Cond.toExpr()
		if err != nil {
			return nil, err
		}
		then, err := n.Then.toExpr()
		if err != nil {
			return nil, err
		}
		els, err := n.Else.toExpr()
		if err != nil {
			return nil, err
		}
		return ast.Ternary{Cond: cond, Then: then, Else: els}, nil
	case "assign":
		right, err := n.Right.toExpr()
		if err != nil {
			return nil, err
		}
		return ast.Assign{Left: ast.IdentLHS{Name: n.Name}, Right: right}, nil
	case "return":
		val, err := n.Value2()
		if err != nil {
			return nil, err
		}
		return ast.Return{Value: val}, nil
	case "tuple", "set":
		former, err := n.Former.toFormer()
		if err != nil {
			return nil, err
		}
		if n.Type == "tuple" {
			return ast.TupleLiteral{Former: former}, nil
		}
		return ast.SetLiteral{Former: former}, nil
	case "postfix":
		left, err := n.Left.toExpr()
		if err != nil {
			return nil, err
		}
		sel, err := n.Sel.toSelector()
		if err != nil {
			return nil, err
		}
		return ast.Postfix{Left: left, Selector: sel}, nil
	case "function":
		body, err := exprList(n.Body)
		if err != nil {
			return nil, err
		}
		return ast.Function{
			ReqParams:    n.ReqParams,
			OptParams:    n.OptParams,
			LockedParams: n.LockedParams,
			Body:         body,
			NullReturn:   n.NullReturn,
		}, nil
	case "switch":
		var input ast.Expr
		if n.Input != nil {
			e, err := n.Input.toExpr()
			if err != nil {
				return nil, err
			}
			input = e
		}
		cases := make([]ast.Case, len(n.Cases))
		for i, c := range n.Cases {
			body, err := exprList(c.Body)
			if err != nil {
				return nil, err
			}
			var cond ast.Expr
			if c.Cond != nil {
				ce, err := c.Cond.toExpr()
				if err != nil {
					return nil, err
				}
				cond = ce
			}
			cases[i] = ast.Case{Cond: cond, Body: body, NullReturn: c.NullReturn}
		}
		return ast.Switch{Input: input, Cases: cases}, nil
	default:
		return nil, fmt.Errorf("unknown AST node type %q", n.Type)
	}
}

// Value2 supports Return's payload field, which is carried in "right" to
// keep the wire struct small (Return has exactly one child expression).
func (n *node) Value2() (ast.Expr, error) {
	return n.Right.toExpr()
}

func exprList(ns []node) ([]ast.Expr, error) {
	out := make([]ast.Expr, len(ns))
	for i := range ns {
		e, err := ns[i].toExpr()
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func (n *node) toFormer() (ast.Former, error) {
	if n == nil {
		return nil, fmt.Errorf("nil collection former")
	}
	switch n.Type {
	case "literal":
		elems, err := exprList(n.Elems)
		if err != nil {
			return nil, err
		}
		return ast.LiteralFormer{Elements: elems}, nil
	case "range":
		start, err := n.Start.toExpr()
		if err != nil {
			return nil, err
		}
		end, err := n.End.toExpr()
		if err != nil {
			return nil, err
		}
		var step ast.Expr
		if n.Step != nil {
			s, err := n.Step.toExpr()
			if err != nil {
				return nil, err
			}
			step = s
		}
		return ast.RangeFormer{Start: start, Step: step, End: end}, nil
	default:
		return nil, fmt.Errorf("unknown collection-former type %q", n.Type)
	}
}

func (n *node) toSelector() (ast.Selector, error) {
	if n == nil {
		return nil, fmt.Errorf("nil selector")
	}
	switch n.Type {
	case "index":
		key, err := n.Key.toExpr()
		if err != nil {
			return nil, err
		}
		return ast.IndexSelector{Key: key}, nil
	case "call":
		args, err := exprList(n.Args)
		if err != nil {
			return nil, err
		}
		return ast.CallSelector{Args: args}, nil
	default:
		return nil, fmt.Errorf("unknown selector type %q", n.Type)
	}
}
