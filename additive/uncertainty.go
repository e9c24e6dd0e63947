package additive

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

func (m *Model) source() rand.Source {
	seed := m.Config.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// simulate draws UncertaintySamples trajectories around point (scaled units)
// and returns the symmetric half width of the interval at each time.
func (m *Model) simulate(t, point []float64) []float64 {
	src := m.source()
	samples := m.Config.UncertaintySamples
	n := len(t)

	last := t[n-1]
	rate := float64(len(m.cps)) * (last - 1)
	scale := 1e-8
	for _, d := range m.Deltas {
		scale += math.Abs(d) / float64(len(m.Deltas))
	}

	changes := distuv.Poisson{Lambda: rate, Src: src}
	position := distuv.Uniform{Min: 1, Max: last, Src: src}
	delta := distuv.Laplace{Mu: 0, Scale: scale, Src: src}
	noise := distuv.Normal{Mu: 0, Sigma: m.Sigma, Src: src}

	draws := make([][]float64, n)
	for i := range draws {
		draws[i] = make([]float64, samples)
	}

	for s := 0; s < samples; s++ {
		var at, size []float64
		if rate > 0 {
			k := int(changes.Rand())
			for j := 0; j < k; j++ {
				at = append(at, position.Rand())
				size = append(size, delta.Rand())
			}
		}
		for i := range t {
			v := point[i]
			for j, c := range at {
				if t[i] > c {
					v += size[j] * (t[i] - c)
				}
			}
			draws[i][s] = v + noise.Rand()
		}
	}

	lo := (1 - m.Config.IntervalWidth) / 2
	hi := 1 - lo
	half := make([]float64, n)
	for i, x := range draws {
		sort.Float64s(x)
		ql := stat.Quantile(lo, stat.Empirical, x, nil)
		qh := stat.Quantile(hi, stat.Empirical, x, nil)
		half[i] = math.Max(math.Max(point[i]-ql, qh-point[i]), 0)
	}
	return half
}
