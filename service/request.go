package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/njchilds90/calcsteps/steps"
)

// Order is a derivative order. It decodes from a JSON integer or a
// numeric string; null and "" decode to zero, meaning the default.
type Order int

func (o *Order) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*o = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*o = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("orderOfDerivative %q is not an integer", s)
		}
		*o = Order(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("orderOfDerivative %s is not an integer", b)
	}
	*o = Order(n)
	return nil
}

// Literal is a LaTeX fragment that clients may also send as a bare JSON
// number.
type Literal string

func (l *Literal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*l = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = Literal(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("bound %s is neither a string nor a number", b)
	}
	*l = Literal(n.String())
	return nil
}

type StepsRequest struct {
	Expression        string `json:"expression"`
	Variable          string `json:"variable"`
	OrderOfDerivative Order  `json:"orderOfDerivative"`
}

type StepsResponse struct {
	Simplified string       `json:"simplified"`
	Steps      []steps.Step `json:"steps"`
	Result     string       `json:"result"`
}

type DerivativeRequest struct {
	Expression string `json:"expression"`
	Variable   string `json:"variable"`
}

type Bound struct {
	UpperBound Literal `json:"upperBound"`
	LowerBound Literal `json:"lowerBound"`
}

type IntegralRequest struct {
	Expression string `json:"expression"`
	Variable   string `json:"variable"`
	Bound      *Bound `json:"bound,omitempty"`
}

type BasicRequest struct {
	Expression string `json:"expression"`
}

type BasicResult struct {
	Exact   string  `json:"exact"`
	Decimal float64 `json:"decimal"`
}

type BasicResponse struct {
	Result BasicResult `json:"result"`
}

type MatrixRequest struct {
	Expression string `json:"expression"`
}

// ResultResponse carries the LaTeX answer of derivative, integral and
// matrix requests.
type ResultResponse struct {
	Result string `json:"result"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
