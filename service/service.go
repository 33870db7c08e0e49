// Package service decodes, validates and executes the calculus request
// types: basic evaluation, derivatives with and without steps, integrals
// and matrix expressions.
package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/njchilds90/calcsteps/latex"
	"github.com/njchilds90/calcsteps/steps"
	"github.com/njchilds90/calcsteps/symbolic"
)

// Config tunes a Service.
type Config struct {
	MaxDepth           int
	ChainDetection     bool
	MaxOrder           int
	QuadratureFallback bool
}

func DefaultConfig() Config {
	return Config{
		MaxDepth:           steps.DefaultMaxDepth,
		ChainDetection:     true,
		MaxOrder:           10,
		QuadratureFallback: true,
	}
}

// Service is stateless between calls and safe for concurrent use.
type Service struct {
	gen    *steps.Generator
	cfg    Config
	logger *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxOrder < 1 {
		cfg.MaxOrder = 1
	}
	gen := steps.NewGenerator(
		steps.WithMaxDepth(cfg.MaxDepth),
		steps.WithChainDetection(cfg.ChainDetection),
		steps.WithLogger(logger.Named("steps")),
	)
	logger.Debug("step generator ready",
		zap.Int("max_depth", gen.MaxDepth()),
		zap.Bool("chain_detection", cfg.ChainDetection))
	return &Service{gen: gen, cfg: cfg, logger: logger}
}

// MaxDepth is the narration depth budget in effect.
func (s *Service) MaxDepth() int { return s.gen.MaxDepth() }

// ============================================================
// Input parsing
// ============================================================

func parseExpression(src string) (symbolic.Expr, error) {
	if strings.TrimSpace(src) == "" {
		return nil, newError(ErrorInvalidInput, "expression is required", nil)
	}
	e, err := latex.Parse(src)
	if err != nil {
		return nil, newError(ErrorParse, "could not parse expression", err)
	}
	return e.Simplify(), nil
}

func parseVariable(src string) (*symbolic.Sym, error) {
	if strings.TrimSpace(src) == "" {
		return nil, newError(ErrorInvalidInput, "variable is required", nil)
	}
	v, err := latex.ParseSymbol(src)
	if err == nil {
		return v, nil
	}
	// \x means x; Greek letters such as \theta already parsed above.
	if stripped := strings.ReplaceAll(src, `\`, ""); stripped != src {
		if v, serr := latex.ParseSymbol(stripped); serr == nil {
			return v, nil
		}
	}
	return nil, newError(ErrorInvalidInput, "invalid variable", err)
}

func parseCall(expression, variable string) (symbolic.Expr, *symbolic.Sym, error) {
	e, err := parseExpression(expression)
	if err != nil {
		return nil, nil, err
	}
	v, err := parseVariable(variable)
	if err != nil {
		return nil, nil, err
	}
	return e, v, nil
}

// ============================================================
// Derivatives
// ============================================================

// DerivativeSteps narrates the derivative of the requested order. Orders
// above one narrate each successive derivative after a header step, and
// the combined list is numbered from 1.
func (s *Service) DerivativeSteps(req StepsRequest) (*StepsResponse, error) {
	e, v, err := parseCall(req.Expression, req.Variable)
	if err != nil {
		return nil, err
	}
	order := int(req.OrderOfDerivative)
	if order == 0 {
		order = 1
	}
	if order < 1 || order > s.cfg.MaxOrder {
		return nil, newError(ErrorInvalidInput,
			fmt.Sprintf("orderOfDerivative must be between 1 and %d", s.cfg.MaxOrder), nil)
	}

	if order == 1 {
		return &StepsResponse{
			Simplified: symbolic.LaTeX(e),
			Steps:      s.gen.Generate(e, v),
			Result:     symbolic.LaTeX(symbolic.Diff(e, v.Name())),
		}, nil
	}

	var all []steps.Step
	for k := 1; k <= order; k++ {
		current := symbolic.DiffN(e, v.Name(), k-1)
		all = append(all, steps.Step{
			Text: fmt.Sprintf("Derivative %d of %d: differentiate $%s$ with respect to $%s$.",
				k, order, symbolic.LaTeX(current), v.LaTeX()),
			Math: higherOrder(k, v.LaTeX()) + `\left[` + symbolic.LaTeX(e) + `\right]`,
		})
		all = append(all, s.gen.Generate(current, v)...)
	}
	return &StepsResponse{
		Simplified: symbolic.LaTeX(e),
		Steps:      steps.Renumber(all),
		Result:     symbolic.LaTeX(symbolic.DiffN(e, v.Name(), order)),
	}, nil
}

func higherOrder(k int, v string) string {
	if k == 1 {
		return `\frac{d}{d` + v + `}`
	}
	return fmt.Sprintf(`\frac{d^{%d}}{d%s^{%d}}`, k, v, k)
}

func (s *Service) Derivative(req DerivativeRequest) (*ResultResponse, error) {
	e, v, err := parseCall(req.Expression, req.Variable)
	if err != nil {
		return nil, err
	}
	return &ResultResponse{Result: symbolic.LaTeX(symbolic.Diff(e, v.Name()))}, nil
}

// ============================================================
// Integrals
// ============================================================

// Integral returns the antiderivative, or F(upper) - F(lower) when bounds
// are given. Without an antiderivative, finite numeric bounds fall back to
// Gauss-Legendre quadrature when enabled.
func (s *Service) Integral(req IntegralRequest) (*ResultResponse, error) {
	e, v, err := parseCall(req.Expression, req.Variable)
	if err != nil {
		return nil, err
	}
	antiderivative, found := symbolic.Integrate(e, v.Name())

	if req.Bound == nil || (req.Bound.UpperBound == "" && req.Bound.LowerBound == "") {
		if !found {
			return nil, newError(ErrorUnsupported, "no antiderivative found", nil)
		}
		return &ResultResponse{Result: symbolic.LaTeX(antiderivative)}, nil
	}

	ub, err := parseBound(string(req.Bound.UpperBound), "upper")
	if err != nil {
		return nil, err
	}
	lb, err := parseBound(string(req.Bound.LowerBound), "lower")
	if err != nil {
		return nil, err
	}
	if symbolic.Depends(ub, v.Name()) || symbolic.Depends(lb, v.Name()) {
		return nil, newError(ErrorInvalidInput, "bounds must not contain the integration variable", nil)
	}

	if found {
		at := func(b symbolic.Expr) symbolic.Expr { return symbolic.Sub(antiderivative, v.Name(), b) }
		return &ResultResponse{Result: symbolic.LaTeX(symbolic.AddOf(at(ub), symbolic.Neg(at(lb))))}, nil
	}

	if s.cfg.QuadratureFallback {
		a, aok := symbolic.Float(lb)
		b, bok := symbolic.Float(ub)
		if aok && bok {
			if r, ok := symbolic.DefiniteIntegrate(e, v.Name(), a, b); ok {
				s.logger.Debug("integral fell back to quadrature", zap.String("expression", req.Expression))
				return &ResultResponse{Result: strconv.FormatFloat(r, 'g', 10, 64)}, nil
			}
		}
	}
	return nil, newError(ErrorUnsupported, "no antiderivative found", nil)
}

func parseBound(src, which string) (symbolic.Expr, error) {
	if strings.TrimSpace(src) == "" {
		return nil, newError(ErrorInvalidInput, "both bounds are required", nil)
	}
	if strings.Contains(src, `\infty`) {
		return nil, newError(ErrorUnsupported, "improper integrals are not supported", nil)
	}
	b, err := latex.Parse(src)
	if err != nil {
		return nil, newError(ErrorParse, "could not parse "+which+" bound", err)
	}
	return b.Simplify(), nil
}

// ============================================================
// Basic evaluation
// ============================================================

var degrees = regexp.MustCompile(`(\d+)\s*(\\degree|\\deg|\^\s*\\circ)`)

// preprocess rewrites percent signs, escaped slashes and degree marks into
// plain LaTeX.
func preprocess(src string) string {
	src = strings.ReplaceAll(src, "%", "/100")
	src = strings.ReplaceAll(src, `\/`, "/")
	return degrees.ReplaceAllString(src, `\frac{$1 \pi}{180}`)
}

func (s *Service) Basic(req BasicRequest) (*BasicResponse, error) {
	e, err := parseExpression(preprocess(req.Expression))
	if err != nil {
		return nil, err
	}
	dec, ok := symbolic.Float(e)
	if !ok {
		var cause error
		if free := symbolic.FreeSymbols(e); len(free) > 0 {
			cause = fmt.Errorf("free symbols %s", strings.Join(free, ", "))
		}
		return nil, newError(ErrorUnsupported, "expression has no numeric value", cause)
	}
	return &BasicResponse{Result: BasicResult{Exact: symbolic.LaTeX(e), Decimal: dec}}, nil
}

// ============================================================
// Matrices
// ============================================================

func (s *Service) Matrix(req MatrixRequest) (*ResultResponse, error) {
	if strings.TrimSpace(req.Expression) == "" {
		return nil, newError(ErrorInvalidInput, "No expression provided", nil)
	}
	val, err := evalMatrixExpr(req.Expression)
	if err != nil {
		return nil, newError(ErrorInvalidInput, "matrix operation failed", err)
	}
	return &ResultResponse{Result: val.latex()}, nil
}
