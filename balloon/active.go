package balloon

// active is the insertion-ordered set of live balloons. Oldest removal is
// O(1); retirement marks balloons and compact drops them in one pass.
type active struct {
	buf  []*Balloon
	head int
	n    int
}

func (a *active) len() int { return a.n }

func (a *active) at(i int) *Balloon { return a.buf[(a.head+i)%len(a.buf)] }

func (a *active) push(b *Balloon) {
	if a.n == len(a.buf) {
		a.grow()
	}
	a.buf[(a.head+a.n)%len(a.buf)] = b
	a.n++
}

func (a *active) grow() {
	size := max(8, 2*len(a.buf))
	buf := make([]*Balloon, size)
	for i := range a.n {
		buf[i] = a.at(i)
	}
	a.buf = buf
	a.head = 0
}

// popOldest removes and returns the oldest balloon.
func (a *active) popOldest() *Balloon {
	if a.n == 0 {
		return nil
	}
	b := a.buf[a.head]
	a.buf[a.head] = nil
	a.head = (a.head + 1) % len(a.buf)
	a.n--
	return b
}

// compact removes every balloon for which keep returns false, preserving
// insertion order.
func (a *active) compact(keep func(*Balloon) bool) {
	w := 0
	for i := range a.n {
		b := a.at(i)
		if keep(b) {
			a.buf[(a.head+w)%len(a.buf)] = b
			w++
		}
	}
	for i := w; i < a.n; i++ {
		a.buf[(a.head+i)%len(a.buf)] = nil
	}
	a.n = w
}

func (a *active) each(fn func(*Balloon)) {
	for i := range a.n {
		fn(a.at(i))
	}
}

func (a *active) clear() {
	for i := range a.buf {
		a.buf[i] = nil
	}
	a.head, a.n = 0, 0
}
