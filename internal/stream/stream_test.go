package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/njchilds90/calcsteps/service"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type handlerFunc func(ctx context.Context, mode service.Mode, raw []byte) (any, error)

func (f handlerFunc) Handle(ctx context.Context, mode service.Mode, raw []byte) (any, error) {
	return f(ctx, mode, raw)
}

func serve(t *testing.T, h Handler, opts Options, input string) []map[string]any {
	t.Helper()
	var out strings.Builder
	require.NoError(t, NewServer(h, opts, nil).Serve(context.Background(), strings.NewReader(input), &out))

	var lines []map[string]any
	sc := bufio.NewScanner(strings.NewReader(out.String()))
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m), sc.Text())
		lines = append(lines, m)
	}
	return lines
}

func TestServe_KeepsInputOrderWithWorkers(t *testing.T) {
	h := handlerFunc(func(_ context.Context, _ service.Mode, raw []byte) (any, error) {
		var req struct{ N int }
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, err
		}
		// later requests finish first
		time.Sleep(time.Duration(10-req.N) * time.Millisecond)
		return map[string]int{"n": req.N}, nil
	})

	var in strings.Builder
	for i := 0; i < 10; i++ {
		in.WriteString(`{"n": ` + string(rune('0'+i)) + "}\n")
	}
	lines := serve(t, h, Options{Workers: 4}, in.String())
	require.Len(t, lines, 10)
	for i, l := range lines {
		assert.Equal(t, float64(i), l["n"])
	}
}

func TestServe_ErrorsDoNotStopTheStream(t *testing.T) {
	h := handlerFunc(func(_ context.Context, _ service.Mode, raw []byte) (any, error) {
		if string(raw) == "bad" {
			return nil, errors.New("boom")
		}
		if string(raw) == "panic" {
			panic("kernel exploded")
		}
		return map[string]string{"result": string(raw)}, nil
	})
	lines := serve(t, h, Options{}, "a\nbad\n\n   \npanic\nb")
	require.Len(t, lines, 4)
	assert.Equal(t, "a", lines[0]["result"])
	assert.Equal(t, "boom", lines[1]["error"])
	assert.Equal(t, "internal error", lines[2]["error"])
	assert.Equal(t, "b", lines[3]["result"])
}

func TestServe_LineTooLong(t *testing.T) {
	h := handlerFunc(func(_ context.Context, _ service.Mode, raw []byte) (any, error) {
		return map[string]string{"result": string(raw)}, nil
	})
	lines := serve(t, h, Options{MaxLineBytes: 8}, strings.Repeat("x", 100)+"\nok\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "request exceeds 8 bytes", lines[0]["error"])
	assert.Equal(t, "ok", lines[1]["result"])
}

func TestServe_CancelledContextStopsReading(t *testing.T) {
	h := handlerFunc(func(context.Context, service.Mode, []byte) (any, error) {
		return map[string]string{}, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out strings.Builder
	require.NoError(t, NewServer(h, Options{}, nil).Serve(ctx, strings.NewReader("a\nb\n"), &out))
	assert.Empty(t, out.String())
}

func TestServe_WithDispatcher(t *testing.T) {
	d := service.NewDispatcher(service.New(service.DefaultConfig(), nil), nil)
	input := `{"expression": "x^2", "variable": "x"}` + "\n" +
		`not json` + "\n" +
		`{"type": "derivative", "expression": "\\sin(x)", "variable": "x"}` + "\n"
	lines := serve(t, d, Options{Mode: service.ModeDerivativeSteps, Workers: 2}, input)
	require.Len(t, lines, 3)

	assert.Equal(t, "2 x", lines[0]["result"])
	assert.Equal(t, "x^{2}", lines[0]["simplified"])
	assert.NotEmpty(t, lines[0]["steps"])
	assert.Equal(t, "Invalid JSON input", lines[1]["error"])
	assert.Equal(t, `\cos{\left(x\right)}`, lines[2]["result"])
}

func TestEncode_NoHTMLEscaping(t *testing.T) {
	b, err := encode(map[string]string{"math": `a < b & c > d`})
	require.NoError(t, err)
	assert.Equal(t, `{"math":"a < b & c > d"}`+"\n", string(b))
}
