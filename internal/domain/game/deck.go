package game

import "math/rand"

// Deck is a draw pile with an optional discard pile that is reshuffled back in when the draw pile runs out.
type Deck[T any] struct {
	draw      []T
	discard   []T
	reshuffle bool
	rng       *rand.Rand
}

// NewDeck shuffles cards with rng; a nil rng keeps the given order.
func NewDeck[T any](cards []T, reshuffle bool, rng *rand.Rand) *Deck[T] {
	d := &Deck[T]{
		draw:      append([]T(nil), cards...),
		reshuffle: reshuffle,
		rng:       rng,
	}
	d.shuffle(d.draw)
	return d
}

func (d *Deck[T]) shuffle(cards []T) {
	if d.rng == nil {
		return
	}
	d.rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
}

func (d *Deck[T]) Draw() (T, bool) {
	var zero T
	if len(d.draw) == 0 && d.reshuffle && len(d.discard) > 0 {
		d.draw, d.discard = d.discard, nil
		d.shuffle(d.draw)
	}
	if len(d.draw) == 0 {
		return zero, false
	}
	top := d.draw[0]
	d.draw = d.draw[1:]
	return top, true
}

func (d *Deck[T]) Discard(card T) {
	if !d.reshuffle {
		return
	}
	d.discard = append(d.discard, card)
}

func (d *Deck[T]) Len() int { return len(d.draw) }

func (d *Deck[T]) DiscardLen() int { return len(d.discard) }
