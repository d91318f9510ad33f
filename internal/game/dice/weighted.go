package dice

// Pick draws an index from weights with probability weights[i]/sum(weights).
// Zero-weight entries are never chosen.
//
// Precondition: every weight >= 0 and sum(weights) > 0.
// Postcondition: returns i with weights[i] > 0.
func Pick(src Source, weights []int) int {
	total := 0
	for _, w := range weights {
		if w < 0 {
			panic("dice: Pick called with a negative weight")
		}
		total += w
	}
	if total <= 0 {
		panic("dice: Pick called with zero total weight")
	}
	roll := src.Intn(total)
	for i, w := range weights {
		if roll < w {
			return i
		}
		roll -= w
	}
	// unreachable: roll < total
	return len(weights) - 1
}

// OneIn reports true with probability 1/n.
//
// Precondition: n > 0.
func OneIn(src Source, n int) bool {
	return src.Intn(n) == 0
}
