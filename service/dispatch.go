package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Dispatcher routes raw JSON requests to a Service by mode.
type Dispatcher struct {
	svc    *Service
	logger *zap.Logger
}

func NewDispatcher(svc *Service, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{svc: svc, logger: logger}
}

func (d *Dispatcher) Service() *Service { return d.svc }

// envelope reads the optional per-request mode override.
type envelope struct {
	Type string `json:"type"`
}

// Handle decodes raw as a request of the given mode, or of the mode named
// by its "type" field, and executes it. A panic inside the kernel comes
// back as an ErrorInternal error.
func (d *Dispatcher) Handle(ctx context.Context, mode Mode, raw []byte) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("recovered panic", zap.Any("panic", r), zap.String("mode", string(mode)))
			resp, err = nil, newError(ErrorInternal, "internal error", fmt.Errorf("panic: %v", r))
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, newError(ErrorInternal, "request cancelled", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, decodeError(err)
	}
	if env.Type != "" {
		m, err := ParseMode(env.Type)
		if err != nil {
			return nil, newError(ErrorInvalidInput, "unknown request type", err)
		}
		mode = m
	}

	switch mode {
	case ModeDerivativeSteps:
		var req StepsRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, decodeError(err)
		}
		return d.svc.DerivativeSteps(req)
	case ModeDerivative:
		var req DerivativeRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, decodeError(err)
		}
		return d.svc.Derivative(req)
	case ModeIntegral:
		var req IntegralRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, decodeError(err)
		}
		return d.svc.Integral(req)
	case ModeBasic:
		var req BasicRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, decodeError(err)
		}
		return d.svc.Basic(req)
	case ModeMatrix:
		var req MatrixRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, decodeError(err)
		}
		return d.svc.Matrix(req)
	}
	return nil, newError(ErrorInvalidInput, "unknown request type", fmt.Errorf("mode %q", mode))
}

func decodeError(err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return newError(ErrorInvalidInput, "Invalid JSON input", nil)
	}
	return newError(ErrorInvalidInput, "malformed request", err)
}
