package entropy

import "math"

// ShouldApply implements the entropy-coding gate from spec §4.C: only
// attempt tANS when the input is large enough to amortize the table
// overhead, the estimated saving clears the 10% bar, and the symbol
// distribution isn't already so flat that coding wins nothing. The
// single-symbol shortcut always qualifies since it carries almost no
// header cost.
func ShouldApply(data []byte) bool {
	if len(data) < MinBlock {
		return false
	}

	freqs := countFrequencies(data)

	if _, ok := dominantSymbol(freqs, len(data)); ok {
		return true
	}

	if isUniform(freqs, len(data)) {
		return false
	}

	return estimatedSavingFraction(freqs, len(data)) >= 0.10
}

// isUniform reports whether the ratio of the most to least common
// (present) symbol is below 1.1, the spec's "skip, store raw" threshold.
func isUniform(freqs [256]int, total int) bool {
	if total == 0 {
		return true
	}

	min, max := -1, 0
	for _, f := range freqs {
		if f == 0 {
			continue
		}
		if min == -1 || f < min {
			min = f
		}
		if f > max {
			max = f
		}
	}

	if min <= 0 {
		return true
	}

	return float64(max)/float64(min) < 1.1
}

// estimatedSavingFraction estimates the fraction of bytes saved by
// entropy-coding data at its zero-order Shannon entropy, ignoring table
// header overhead (spec's "header-less lower bound").
func estimatedSavingFraction(freqs [256]int, total int) float64 {
	if total == 0 {
		return 0
	}

	bitsPerSymbol := 0.0
	for _, f := range freqs {
		if f == 0 {
			continue
		}
		p := float64(f) / float64(total)
		bitsPerSymbol -= p * math.Log2(p)
	}

	estimatedBytes := bitsPerSymbol * float64(total) / 8
	rawBytes := float64(total)

	return 1 - estimatedBytes/rawBytes
}
