package pipeline

import (
	"time"
)

// Estimate predicts how long a run will take, based on the timing metadata of
// recent runs when available and provider-bucketed defaults otherwise.
type Estimate struct {
	Duration   time.Duration
	Confidence string // "high", "medium", or "low"
	SampleSize int
}

// estimateHistoryLimit bounds how many recent runs feed an estimate.
const estimateHistoryLimit = 10

// defaultSecondsPerPiece is the per-piece fallback when no history exists.
// Local models dominate the spread; the mock client is near-instant.
func defaultSecondsPerPiece(provider string) float64 {
	switch provider {
	case "mock":
		return 2
	case "gemini":
		return 20
	default:
		return 60
	}
}

// EstimateRuntime predicts the duration of a run with the given shape. The
// piece count is topics x versions; each piece carries its platform
// optimizations. Confidence is high with five or more timed runs on record,
// medium with any, low with none.
func (o *Orchestrator) EstimateRuntime(opts Options) Estimate {
	opts.applyDefaults()

	settings, err := o.store.GetSettings()
	provider := "mock"
	if err == nil {
		provider = settings.AIServicePrimary
	}

	pieces := opts.NumTopics * len(opts.Versions)
	if len(opts.ReuseTopics) > 0 {
		pieces = len(opts.ReuseTopics) * len(opts.Versions)
	}

	avgStage1, avgPerPiece, samples := o.historicalAverages(provider)
	if samples == 0 {
		perPiece := defaultSecondsPerPiece(provider)
		seconds := perPiece + float64(pieces)*perPiece
		return Estimate{
			Duration:   time.Duration(seconds * float64(time.Second)),
			Confidence: "low",
		}
	}

	seconds := avgStage1 + float64(pieces)*avgPerPiece
	confidence := "medium"
	if samples >= 5 {
		confidence = "high"
	}
	return Estimate{
		Duration:   time.Duration(seconds * float64(time.Second)),
		Confidence: confidence,
		SampleSize: samples,
	}
}

// historicalAverages scans recent runs with timing data, preferring runs made
// with the same provider, and returns the average stage-1 seconds and the
// average combined stage-2/3 seconds per developed piece.
func (o *Orchestrator) historicalAverages(provider string) (avgStage1, avgPerPiece float64, samples int) {
	gens, err := o.store.ListGenerations(estimateHistoryLimit * 3)
	if err != nil {
		return 0, 0, 0
	}

	type sample struct{ stage1, perPiece float64 }
	var matching, all []sample

	for _, gen := range gens {
		if gen.Stage1Seconds == 0 && gen.Stage2Seconds == 0 && gen.Stage3Seconds == 0 {
			continue
		}
		pieces := len(gen.DevelopedContent)
		if pieces == 0 {
			continue
		}
		s := sample{
			stage1:   gen.Stage1Seconds,
			perPiece: (gen.Stage2Seconds + gen.Stage3Seconds) / float64(pieces),
		}
		all = append(all, s)
		if gen.AIProvider == provider {
			matching = append(matching, s)
		}
	}

	pool := matching
	if len(pool) == 0 {
		pool = all
	}
	if len(pool) > estimateHistoryLimit {
		pool = pool[:estimateHistoryLimit]
	}
	if len(pool) == 0 {
		return 0, 0, 0
	}

	for _, s := range pool {
		avgStage1 += s.stage1
		avgPerPiece += s.perPiece
	}
	n := float64(len(pool))
	return avgStage1 / n, avgPerPiece / n, len(pool)
}
