package effect

// Chain is an ordered list of effect ids with a cursor on the step to run next.
// It is a value type; Next returns a new chain and never moves the receiver.
type Chain struct {
	steps  []string
	cursor int
}

func NewChain(steps ...string) Chain {
	return Chain{steps: append([]string(nil), steps...)}
}

func (c Chain) Current() (string, bool) {
	if c.cursor >= len(c.steps) {
		return "", false
	}
	return c.steps[c.cursor], true
}

// Next returns the chain advanced to the following step; false when the current step is the last.
func (c Chain) Next() (Chain, bool) {
	if c.cursor+1 >= len(c.steps) {
		return Chain{}, false
	}
	return Chain{steps: c.steps, cursor: c.cursor + 1}, true
}

// Remaining returns the current step and everything after it.
func (c Chain) Remaining() []string {
	if c.cursor >= len(c.steps) {
		return nil
	}
	return append([]string(nil), c.steps[c.cursor:]...)
}

func (c Chain) Steps() []string { return append([]string(nil), c.steps...) }

func (c Chain) Len() int { return len(c.steps) }

func (c Chain) Equal(o Chain) bool {
	return c.cursor == o.cursor && sameOrder(c.steps, o.steps)
}

func sameOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
