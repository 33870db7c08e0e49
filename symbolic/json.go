package symbolic

import "encoding/json"

// ============================================================
// JSON Serialization
// ============================================================

// ToJSON encodes the tree as nested {"type": ...} objects, for debugging
// parser output.
func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(treeJSON(e))
	return string(b), err
}

func treeJSON(e Expr) map[string]interface{} {
	switch v := e.(type) {
	case *Num:
		return map[string]interface{}{"type": "num", "value": v.String()}
	case *Sym:
		return map[string]interface{}{"type": "sym", "name": v.name}
	case *Add:
		return map[string]interface{}{"type": "add", "terms": listJSON(v.terms)}
	case *Mul:
		return map[string]interface{}{"type": "mul", "factors": listJSON(v.factors)}
	case *Pow:
		return map[string]interface{}{"type": "pow", "base": treeJSON(v.base), "exp": treeJSON(v.exp)}
	case *Func:
		return map[string]interface{}{"type": "func", "name": v.name, "arg": treeJSON(v.arg)}
	}
	return map[string]interface{}{"type": e.Kind().String(), "text": e.String()}
}

func listJSON(es []Expr) []map[string]interface{} {
	out := make([]map[string]interface{}, len(es))
	for i, e := range es {
		out[i] = treeJSON(e)
	}
	return out
}
