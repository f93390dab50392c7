package metrics

// IRRConfig holds the numerical knobs of the IRR root-finder.
// The zero value is not usable; start from DefaultIRRConfig.
type IRRConfig struct {
	Guess         float64 // initial rate for Newton-Raphson
	MaxIterations int
	Precision     float64 // convergence bound on |NPV|, |step| and minimum |dNPV|
	MinRate       float64 // lowest acceptable annualized rate, e.g. -0.99
	MaxRate       float64 // highest acceptable annualized rate, e.g. 10 (1000%)
	MinDays       int     // shortest first-to-last span that yields a meaningful annual rate
}

// DefaultIRRConfig returns the defaults used when nothing is configured.
func DefaultIRRConfig() IRRConfig {
	return IRRConfig{
		Guess:         0.1,
		MaxIterations: 100,
		Precision:     1e-7,
		MinRate:       -0.99,
		MaxRate:       10,
		MinDays:       30,
	}
}

// WithGuess returns a copy of c using a different starting rate.
func (c IRRConfig) WithGuess(guess float64) IRRConfig {
	c.Guess = guess
	return c
}
