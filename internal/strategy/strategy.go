package strategy

import (
	"context"

	"CoinPilot/internal/calculator"
	"CoinPilot/internal/model"
	"CoinPilot/internal/sentiment"
)

// Strategy produces a directional signal for one asset in one cycle. The two
// legacy decision styles live behind this interface as named variants rather
// than merged logic.
type Strategy interface {
	Name() string
	Evaluate(ctx context.Context, asset string, bars []model.PriceBar, threshold float64) (model.Signal, error)
}

// TechnicalStrategy combines trend indicators with lexicon sentiment: the
// full indicator rule, with sentiment able to override either direction.
type TechnicalStrategy struct {
	Feed sentiment.Feed
}

func (s *TechnicalStrategy) Name() string { return "technical" }

// Evaluate computes the indicator set and resolves it against the sentiment
// score. An insufficient price history propagates as an error so the caller
// can treat the asset as Hold.
func (s *TechnicalStrategy) Evaluate(ctx context.Context, asset string, bars []model.PriceBar, threshold float64) (model.Signal, error) {
	ind, err := calculator.Compute(bars)
	if err != nil {
		return model.SignalHold, err
	}
	score := s.Feed.GetSentiment(ctx, asset)
	return Evaluate(ind, score, threshold), nil
}

// SentimentStrategy trades on the news score alone, ignoring price history.
type SentimentStrategy struct {
	Feed sentiment.Feed
}

func (s *SentimentStrategy) Name() string { return "sentiment" }

func (s *SentimentStrategy) Evaluate(ctx context.Context, asset string, _ []model.PriceBar, threshold float64) (model.Signal, error) {
	score := s.Feed.GetSentiment(ctx, asset)
	switch {
	case score > threshold:
		return model.SignalBuy, nil
	case score < -threshold:
		return model.SignalSell, nil
	default:
		return model.SignalHold, nil
	}
}
