package anneal

import "iter"

// Schedule yields (temperature, step) pairs: numberOfSteps steps at each
// temperature, starting at initial and multiplying by coolingRate until the
// temperature drops to final or below. Each pair is one rung.
func Schedule(initial, final, coolingRate float64, numberOfSteps int) iter.Seq2[float64, int] {
	return func(yield func(float64, int) bool) {
		for t := initial; t > final; t *= coolingRate {
			for step := 0; step < numberOfSteps; step++ {
				if !yield(t, step) {
					return
				}
			}
		}
	}
}
