// Package stream serves newline-delimited JSON requests: one request per
// input line, one response per output line, in input order.
package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/njchilds90/calcsteps/service"
)

// Handler executes one decoded request line. *service.Dispatcher
// implements it.
type Handler interface {
	Handle(ctx context.Context, mode service.Mode, raw []byte) (any, error)
}

type Options struct {
	Mode         service.Mode
	Workers      int
	MaxLineBytes int
}

type Server struct {
	handler Handler
	opts    Options
	logger  *zap.Logger
}

func NewServer(h Handler, opts Options, logger *zap.Logger) *Server {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.MaxLineBytes < 1 {
		opts.MaxLineBytes = 1 << 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{handler: h, opts: opts, logger: logger}
}

// Serve reads requests from r until EOF or until ctx is cancelled, and
// writes one flushed response line per request to w. Up to
// Options.Workers requests run at once; responses keep input order. A
// failing line produces an error response and the stream goes on.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	br := bufio.NewReaderSize(r, 64*1024)
	bw := bufio.NewWriter(w)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	// Slots are queued in input order; the writer drains them in that
	// order whatever order the workers finish in.
	pending := make(chan chan []byte, s.opts.Workers)
	written := make(chan error, 1)
	go func() { written <- writeLoop(bw, pending) }()

	var readErr error
	for ctx.Err() == nil {
		line, tooLong, err := readLine(br, s.opts.MaxLineBytes)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				readErr = fmt.Errorf("read request: %w", err)
			}
			break
		}
		slot := make(chan []byte, 1)
		if tooLong {
			pending <- slot
			slot <- s.errorLine(fmt.Sprintf("request exceeds %d bytes", s.opts.MaxLineBytes))
			continue
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		raw := append([]byte(nil), line...)
		pending <- slot
		g.Go(func() error {
			slot <- s.handleLine(gctx, raw)
			return nil
		})
	}

	_ = g.Wait()
	close(pending)
	if err := <-written; err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return readErr
}

func (s *Server) handleLine(ctx context.Context, raw []byte) (out []byte) {
	start := time.Now()
	log := s.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("mode", string(s.opts.Mode)),
	)
	defer func() {
		if r := recover(); r != nil {
			log.Error("recovered panic", zap.Any("panic", r))
			out = s.errorLine("internal error")
		}
	}()

	resp, err := s.handler.Handle(ctx, s.opts.Mode, raw)
	if err != nil {
		log.Info("request failed",
			zap.Duration("duration", time.Since(start)),
			zap.String("code", string(service.CodeOf(err))),
			zap.Error(err))
		return s.errorLine(service.ErrorMessage(err))
	}
	b, err := encode(resp)
	if err != nil {
		log.Error("encode response", zap.Error(err))
		return s.errorLine("failed to encode response")
	}
	log.Debug("request served", zap.Duration("duration", time.Since(start)))
	return b
}

func (s *Server) errorLine(msg string) []byte {
	b, _ := encode(service.ErrorResponse{Error: msg})
	return b
}

// encode renders v as one JSON line. LaTeX is full of <, > and &, so HTML
// escaping is off.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeLoop(bw *bufio.Writer, pending <-chan chan []byte) error {
	var werr error
	for slot := range pending {
		b := <-slot
		if werr != nil {
			continue
		}
		if _, err := bw.Write(b); err != nil {
			werr = err
			continue
		}
		werr = bw.Flush()
	}
	return werr
}

// readLine returns the next line without its terminator. A line longer
// than max is discarded and reported through tooLong.
func readLine(br *bufio.Reader, max int) (line []byte, tooLong bool, err error) {
	started := false
	for {
		chunk, isPrefix, rerr := br.ReadLine()
		if rerr != nil {
			if errors.Is(rerr, io.EOF) && started {
				return line, tooLong, nil
			}
			return nil, false, rerr
		}
		started = true
		if !tooLong {
			if len(line)+len(chunk) > max {
				tooLong, line = true, nil
			} else {
				line = append(line, chunk...)
			}
		}
		if !isPrefix {
			return line, tooLong, nil
		}
	}
}
