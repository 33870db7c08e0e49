package steps

// Step is one narrated line of a derivation. Numbers start at 1 within
// each generation call; a summary step that follows a recursive sub-call
// carries that call's own steps, numbered from 1 again.
type Step struct {
	Number   int    `json:"number"`
	Text     string `json:"text"`
	Math     string `json:"math"`
	Substeps []Step `json:"substeps,omitempty"`
}

// stepWriter numbers steps in emission order.
type stepWriter struct {
	steps []Step
}

func (w *stepWriter) add(text, math string) {
	w.addWith(text, math, nil)
}

func (w *stepWriter) addWith(text, math string, sub []Step) {
	w.steps = append(w.steps, Step{
		Number:   len(w.steps) + 1,
		Text:     text,
		Math:     math,
		Substeps: sub,
	})
}

// Renumber returns a copy of list numbered 1..len(list), leaving substeps
// untouched.
func Renumber(list []Step) []Step {
	out := make([]Step, len(list))
	for i, s := range list {
		s.Number = i + 1
		out[i] = s
	}
	return out
}
