package analyze_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SylphxAI/flux/analyze"
)

func TestAnalyzeRecommendsSessionForRepetitiveTraffic(t *testing.T) {
	payload := []byte(`{"id":1,"name":"alice","email":"alice@example.com"}`)
	rec := analyze.Analyze(payload, 20, 50)
	assert.Equal(t, analyze.UseSession, rec)
}

func TestAnalyzeRecommendsByteCodecForOneShot(t *testing.T) {
	payload := []byte(`{"id":1,"name":"alice"}`)
	rec := analyze.Analyze(payload, 10, 1)
	assert.Equal(t, analyze.UseByteCodec, rec)
}

func TestAnalyzeEmptyPayload(t *testing.T) {
	assert.Equal(t, analyze.UseByteCodec, analyze.Analyze(nil, 0, 10))
}

func TestEstimateSessionSizeExtrapolates(t *testing.T) {
	// 2 messages cost 120 bytes, 4 cost 200 bytes -> slope 40/msg, intercept 40.
	est := analyze.EstimateSessionSize(2, 120, 4, 200, 10)
	assert.Equal(t, 440, est)
}

func TestEstimateSessionSizeNeverNegative(t *testing.T) {
	est := analyze.EstimateSessionSize(10, 50, 20, 10, 100)
	assert.GreaterOrEqual(t, est, 0)
}
