package service

import "fmt"

// Mode selects which request type a stream or route serves.
type Mode string

const (
	ModeBasic           Mode = "basic"
	ModeDerivative      Mode = "derivative"
	ModeDerivativeSteps Mode = "derivative-steps"
	ModeIntegral        Mode = "integral"
	ModeMatrix          Mode = "matrix"
)

// Modes lists every supported mode.
func Modes() []Mode {
	return []Mode{ModeBasic, ModeDerivative, ModeDerivativeSteps, ModeIntegral, ModeMatrix}
}

func ParseMode(s string) (Mode, error) {
	for _, m := range Modes() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q", s)
}
