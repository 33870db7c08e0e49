package steps

// Category is the differentiation rule family a node is narrated with.
type Category int

const (
	Unknown Category = iota
	Sum
	Difference
	Product
	Quotient
	Power
	Chain
	Constant
	IdentityVariable
	NamedFunction
)

func (c Category) String() string {
	switch c {
	case Sum:
		return "sum"
	case Difference:
		return "difference"
	case Product:
		return "product"
	case Quotient:
		return "quotient"
	case Power:
		return "power"
	case Chain:
		return "chain"
	case Constant:
		return "constant"
	case IdentityVariable:
		return "identity-variable"
	case NamedFunction:
		return "named-function"
	}
	return "unknown"
}

// Terminal reports whether c is narrated with a single step and no rule
// selection.
func (c Category) Terminal() bool {
	return c == Constant || c == IdentityVariable || c == Unknown
}
