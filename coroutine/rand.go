package coroutine

import "math/bits"

// randState is a small, fast PRNG used only to pick which runnable
// coroutine goes next. It is seeded explicitly so a Scheduler run is
// reproducible: the same seed always picks the same interleaving.
type randState struct {
	state uint64
}

func newRandState(seed int64) randState {
	return randState{state: uint64(seed)}
}

// uint32n returns a pseudo-random value in [0, n). n must be > 0.
func (r *randState) uint32n(n uint32) uint32 {
	// Lemire's reduction: cheaper than %n. Without a rejection step it keeps a
	// slight bias, like %n, whenever n does not divide 2^32.
	// https://lemire.me/blog/2016/06/27/a-fast-alternative-to-the-modulo-reduction/
	return uint32(uint64(r.uint32()) * uint64(n) >> 32)
}

func (r *randState) uint32() uint32 {
	return uint32(r.uint64())
}

func (r *randState) uint64() uint64 {
	r.state += 0xa0761d6478bd642f
	hi, lo := bits.Mul64(r.state, r.state^0xe7037ed1a0b428db)
	return hi ^ lo
}
