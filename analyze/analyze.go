// Package analyze implements the algorithm-selector of spec §4.K: given a
// sample of JSON payload bytes, recommend whether a stateful flux session
// (schema caching + columnar layout) or a plain byte codec (package
// bytecodec) is the better fit. It is grounded on the teacher's
// regression package: rather than the teacher's full multi-model curve
// fit (linear/quadratic/power/log — a surface built for mebo's own
// benchmark reporting across point-per-metric ratios), this adapts just
// its core technique — fit bytes ≈ a + b·n from a small sample and
// extrapolate — into the single two-parameter linearModel below, the same
// estimation philosophy §4.G's selector also uses (see DESIGN.md).
package analyze

// Recommendation is analyze.Analyze's output.
type Recommendation uint8

const (
	UseSession Recommendation = iota
	UseByteCodec
)

func (r Recommendation) String() string {
	if r == UseByteCodec {
		return "UseByteCodec"
	}

	return "UseSession"
}

// linearModel is a two-parameter size estimator bytes ≈ a + b·n fit from
// two sample points, the same small-sample linear extrapolation the
// teacher's regression package performs over a larger model family.
type linearModel struct {
	a, b float64
}

func fitLinear(n1 int, bytes1 int, n2 int, bytes2 int) linearModel {
	if n2 == n1 {
		return linearModel{a: float64(bytes1), b: 0}
	}

	b := float64(bytes2-bytes1) / float64(n2-n1)
	a := float64(bytes1) - b*float64(n1)

	return linearModel{a: a, b: b}
}

func (m linearModel) estimate(n int) float64 {
	return m.a + m.b*float64(n)
}

// structuralWinFraction estimates the fraction flux's schema-caching and
// columnar layout would save on repeated-shape JSON traffic: schema
// definitions amortize across messages (sent once, referenced by a 4-byte
// id thereafter) and repeated keys disappear entirely from the body.
// keyBytes is the summed byte length of distinct object keys observed in
// the sample; messageCount estimates how many times that schema recurs.
func structuralWinFraction(sampleLen, keyBytes, messageCount int) float64 {
	if sampleLen == 0 || messageCount <= 1 {
		return 0
	}

	amortizedKeyOverhead := float64(keyBytes) * float64(messageCount-1)

	return amortizedKeyOverhead / float64(sampleLen*messageCount)
}

// Analyze recommends UseSession when the structural win estimated by
// structuralWinFraction (key bytes amortized over messageCount repeats of
// the payload's schema) reaches a fixed 20% saving; otherwise it
// recommends UseByteCodec, matching spec's "algorithm recommendation" is
// a fallback suggestion, never a silent substitution — callers decide.
func Analyze(payload []byte, keyBytes, messageCount int) Recommendation {
	if len(payload) == 0 {
		return UseByteCodec
	}

	win := structuralWinFraction(len(payload), keyBytes, messageCount)

	// The structural win, as a fraction of the input saved, must reach this
	// bar before the stateful session is recommended over a generic byte
	// codec.
	const byteCodecTypicalSaving = 0.20

	if win >= byteCodecTypicalSaving {
		return UseSession
	}

	return UseByteCodec
}

// EstimateSessionSize extrapolates a session's per-message output size
// from two observed (messageIndex, bytesOut) samples, using the same
// linear model analyze itself is built on; callers with only one sample
// get that sample echoed back (no model to fit).
func EstimateSessionSize(n1, bytes1, n2, bytes2, targetN int) int {
	m := fitLinear(n1, bytes1, n2, bytes2)
	est := m.estimate(targetN)
	if est < 0 {
		return 0
	}

	return int(est)
}
