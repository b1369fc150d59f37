package buddhabrot

// SamplePair maps a sample index to two uniforms in [0,1).
//
// Each value is an independent linear-congruential hash of idx reduced
// modulo 2^32 and divided by 2^32. The function is pure, so indices can be
// evaluated concurrently and in any order with identical results.
//
// This is not a statistically rigorous generator: neighbouring indices are
// only as independent as one LCG step makes them. It is good enough for
// density pictures and nothing else.
func SamplePair(idx uint64) (r1, r2 float64) {
	i := uint32(idx)
	a := i*1664525 + 1013904223
	b := (i+1234567)*22695477 + 1
	return float64(a) / modulus, float64(b) / modulus
}

const modulus = 1 << 32

// streamIndex offsets the index stream of a tier when decorrelation is on.
func streamIndex(idx uint64, tier Tier, samples int, decorrelate bool) uint64 {
	if !decorrelate {
		return idx
	}
	return idx + uint64(tier)*uint64(samples)
}
