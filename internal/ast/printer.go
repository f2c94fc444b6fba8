package ast

import (
	"encoding/json"

	"woc/internal/types"
)

// toJSON converts a single Node into a JSON-friendly map/slice/scalar tree,
// dispatching by concrete type rather than through a Visitor/Accept pair.
func toJSON(n Node) any {
	if n == nil {
		return nil
	}
	switch v := n.(type) {
	case *Literal:
		return map[string]any{"type": "Literal", "kind": string(v.Kind_), "lexeme": v.Lexeme}
	case *BinOp:
		return map[string]any{"type": "BinOp", "op": string(v.Op), "lhs": toJSON(v.Lhs), "rhs": toJSON(v.Rhs)}
	case *UnaryOp:
		return map[string]any{"type": "UnaryOp", "op": string(v.Op), "operand": toJSON(v.Operand)}
	case *VarTerminal:
		return map[string]any{"type": "VarTerminal", "name": v.Name}
	case *ArraySubscription:
		return map[string]any{"type": "ArraySubscription", "array": v.Array, "index": toJSON(v.Index)}
	case *FnCall:
		args := make([]any, 0, len(v.Args))
		for _, a := range v.Args {
			args = append(args, toJSON(a))
		}
		return map[string]any{"type": "FnCall", "name": v.Name, "args": args}
	case *VarDeclaration:
		return map[string]any{
			"type": "VarDeclaration", "mut": v.Mut, "name": v.Name,
			"declaredType": typeString(v.Typ), "init": toJSON(v.Init),
		}
	case *Assignment:
		return map[string]any{"type": "Assignment", "name": v.Name, "op": string(v.Op), "rhs": toJSON(v.Rhs)}
	case *Return:
		return map[string]any{"type": "Return", "fn": v.FnName, "value": toJSON(v.Value)}
	case *Import:
		return map[string]any{"type": "Import", "name": v.Name}
	case *FnHeader:
		params := make([]any, 0, len(v.Params))
		for _, p := range v.Params {
			params = append(params, map[string]any{"mut": p.Mut, "name": p.Name, "type": typeString(p.Typ)})
		}
		return map[string]any{
			"type": "FnHeader", "name": v.Name, "params": params, "returnType": typeString(v.ReturnType),
		}
	case *Block:
		stmts := make([]any, 0, len(v.Stmts))
		for _, s := range v.Stmts {
			stmts = append(stmts, toJSON(s))
		}
		return map[string]any{"type": "Block", "stmts": stmts}
	case *Fn:
		return map[string]any{"type": "Fn", "header": toJSON(v.Header), "body": toJSON(v.Body)}
	case *Loop:
		return map[string]any{"type": "Loop", "body": toJSON(v.Body)}
	case *If:
		var elseVal any
		if v.Else != nil {
			elseVal = toJSON(v.Else)
		}
		return map[string]any{"type": "If", "cond": toJSON(v.Cond), "then": toJSON(v.Then), "else": elseVal}
	case *Break:
		return map[string]any{"type": "Break"}
	default:
		return map[string]any{"type": "unknown"}
	}
}

func typeString(t *types.Type) any {
	if t == nil {
		return nil
	}
	return t.String()
}

// PrintJSON renders a Program as indented JSON.
func PrintJSON(prog *Program) (string, error) {
	decls := make([]any, 0, len(prog.Decls))
	for _, fn := range prog.Decls {
		decls = append(decls, toJSON(fn))
	}
	out := map[string]any{"path": prog.Path, "decls": decls}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
