package searcher

import "math"

// ucb1 scores an action with total return w over v visits, in a state visited t times:
// w/v + c*sqrt(ln(t)/v).
func ucb1(c, w, v, t float64) float64 {
	// Prioritize unexplored actions
	if v == 0 {
		return math.Inf(1)
	}
	return w/v + c*math.Sqrt(math.Log(t)/v)
}
