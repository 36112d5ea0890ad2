package charts

import (
	"hash/fnv"
	"math"
	"math/rand/v2"
)

// placeholder generates stand-in values for a chart whose data the server
// did not provide. The sequence depends only on the organization and chart
// name, so repeated loads render the same numbers.
type placeholder struct {
	r *rand.Rand
}

func newPlaceholder(orgID, chart string) *placeholder {
	h := fnv.New64a()
	h.Write([]byte(orgID))
	h.Write([]byte{0})
	h.Write([]byte(chart))
	seed := h.Sum64()
	return &placeholder{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// between returns a value in [lo, hi) rounded to two decimals.
func (p *placeholder) between(lo, hi float64) float64 {
	return round2(lo + p.r.Float64()*(hi-lo))
}

// walk returns n values starting near start, each drifting by up to ±step.
func (p *placeholder) walk(n int, start, step float64) []float64 {
	out := make([]float64, n)
	v := start
	for i := range out {
		v = math.Max(0, v+(p.r.Float64()*2-1)*step)
		out[i] = round2(v)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
