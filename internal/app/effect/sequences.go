package effect

import "skirmish/internal/domain/game"

// PossibleSequences lists the chains a weapon can be fired with.
// Fixed-order weapons yield their stored sequences as-is; otherwise the first id of every
// stored sequence is collected and each distinct ordering of those ids becomes a chain.
func PossibleSequences(w game.WeaponCard) []Chain {
	if w.FixedOrder {
		out := make([]Chain, 0, len(w.Sequences))
		for _, seq := range w.Sequences {
			if len(seq) == 0 {
				continue
			}
			out = append(out, NewChain(seq...))
		}
		return out
	}

	firsts := make([]string, 0, len(w.Sequences))
	for _, seq := range w.Sequences {
		if len(seq) > 0 {
			firsts = append(firsts, seq[0])
		}
	}
	if len(firsts) == 0 {
		return nil
	}
	var orderings [][]string
	permute(firsts, 0, &orderings)

	out := make([]Chain, 0, len(orderings))
	for _, o := range orderings {
		out = append(out, NewChain(o...))
	}
	return out
}

// permute fixes each remaining element at pos in turn and recurses on the rest.
// Complete orderings already present in out are skipped.
func permute(elements []string, pos int, out *[][]string) {
	if pos == len(elements) {
		for _, seen := range *out {
			if sameOrder(seen, elements) {
				return
			}
		}
		*out = append(*out, append([]string(nil), elements...))
		return
	}
	for i := pos; i < len(elements); i++ {
		next := make([]string, 0, len(elements))
		next = append(next, elements[:pos]...)
		next = append(next, elements[i])
		next = append(next, elements[pos:i]...)
		next = append(next, elements[i+1:]...)
		permute(next, pos+1, out)
	}
}
