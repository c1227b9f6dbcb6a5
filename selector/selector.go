// Package selector implements the per-column encoding choice of spec §4.G:
// estimate each legal encoding's size over a sample, extrapolate linearly
// to the full column, and pick the smallest with a deterministic
// simplicity tie-break. This mirrors the teacher's regression package in
// spirit — a small-sample linear size model — narrowed to the single
// two-point extrapolation this spec calls for, rather than the teacher's
// full multi-model curve fit (see DESIGN.md).
package selector

import (
	"github.com/SylphxAI/flux/column"
	"github.com/SylphxAI/flux/entropy"
	"github.com/SylphxAI/flux/schema"
	"github.com/SylphxAI/flux/value"
)

// SampleSize is the number of leading values used to estimate encoded size
// before extrapolating to the full column (spec §4.G).
const SampleSize = 64

// candidateOrder lists every base encoding Select tries, in tie-break
// priority (column.Entropy is not a candidate; entropy coding happens only
// in the post-selection pass):
// simpler (cheaper to decode, less state) wins a tie, per spec §4.G
// ("prefer simpler: Raw < Varint < Delta < FOR < Dictionary < RLE").
// Bitmap and XORFloat are type-exclusive and never compete on a tie since
// Applicable gates them to disjoint type sets.
var candidateOrder = []column.Encoding{
	column.Raw,
	column.Varint,
	column.DeltaVarint,
	column.FrameOfReference,
	column.Dictionary,
	column.RLE,
	column.Bitmap,
	column.XORFloat,
}

// Decision is the selector's output for one column: the chosen base
// encoding, its serialized bytes, and whether a post-selection entropy
// pass on top of those bytes won.
type Decision struct {
	Encoding     column.Encoding
	EncodedBytes []byte // base-encoding bytes, never entropy-wrapped
	UseEntropy   bool
	FinalBytes   []byte // EncodedBytes, or its entropy.WrapBytes form if UseEntropy
}

// Select picks the legal encoding with the smallest estimated size for
// values of type tag, then — if entropyEnabled — tries the entropy coder
// on the winner's actual bytes (spec §4.G: "After selection, try applying
// the entropy coder to the encoded bytes"). Select is deterministic: the
// same inputs always yield the same Decision (no randomness, no timing).
func Select(tag schema.Tag, values []value.Value, entropyEnabled bool) (Decision, error) {
	sample := values
	if len(sample) > SampleSize {
		sample = sample[:SampleSize]
	}

	rawSize := estimateFullSize(tag, column.Raw, sample, values)

	best := column.Raw
	bestSize := rawSize

	for _, enc := range candidateOrder {
		if enc == column.Raw || !column.Applicable(enc, tag) {
			continue
		}

		size := estimateFullSize(tag, enc, sample, values)
		if size < bestSize {
			best = enc
			bestSize = size
		}
	}

	if float64(bestSize) >= 0.95*float64(rawSize) {
		best = column.Raw
	}

	encoded, err := column.Encode(best, tag, values)
	if err != nil {
		return Decision{}, err
	}

	dec := Decision{Encoding: best, EncodedBytes: encoded, FinalBytes: encoded}

	if entropyEnabled && entropy.ShouldApply(encoded) {
		wrapped, err := entropy.WrapBytes(encoded)
		if err == nil && len(wrapped) < len(encoded) {
			dec.UseEntropy = true
			dec.FinalBytes = wrapped
		}
	}

	return dec, nil
}

// estimateFullSize encodes the sample under enc and linearly extrapolates
// to the full column's row count (spec §4.G: "estimate ... over a sample
// ... then extrapolate linearly"). If the sample is the whole column (the
// common case for small payloads), the actual size is returned directly.
func estimateFullSize(tag schema.Tag, enc column.Encoding, sample, full []value.Value) int {
	encoded, err := column.Encode(enc, tag, sample)
	if err != nil {
		return int(^uint(0) >> 1) // unencodable candidate loses every comparison
	}

	if len(sample) == len(full) || len(sample) == 0 {
		return len(encoded)
	}

	perRow := float64(len(encoded)) / float64(len(sample))

	return int(perRow * float64(len(full)))
}
