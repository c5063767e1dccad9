package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"CoinPilot/internal/model"
)

func bars(closes []float64) []model.PriceBar {
	out := make([]model.PriceBar, len(closes))
	for i, c := range closes {
		out[i] = model.PriceBar{
			Time:  time.Now().AddDate(0, 0, -(len(closes) - i)),
			Open:  c, High: c, Low: c, Close: c,
			Volume: 1000,
		}
	}
	return out
}

func TestSMA(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5}
	got, err := SMA(prices, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 3.0 {
		t.Errorf("expected SMA 3.0, got %v", got)
	}

	// Trailing window only.
	got, err = SMA(prices, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 4.5 {
		t.Errorf("expected trailing SMA 4.5, got %v", got)
	}
}

func TestSMA_InsufficientHistory(t *testing.T) {
	if _, err := SMA([]float64{1, 2}, 3); !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestRSI_AllGains_ClampsTo100(t *testing.T) {
	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	rsi, err := RSI(prices, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rsi != 100.0 {
		t.Errorf("expected RSI exactly 100 for monotonic gains, got %v", rsi)
	}
}

func TestRSI_AllLosses(t *testing.T) {
	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 100 - float64(i)
	}
	rsi, err := RSI(prices, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rsi != 0.0 {
		t.Errorf("expected RSI 0 for monotonic losses, got %v", rsi)
	}
}

func TestRSI_Bounds(t *testing.T) {
	// Alternating moves must stay inside [0,100] and never produce NaN.
	prices := make([]float64, 30)
	for i := range prices {
		if i%2 == 0 {
			prices[i] = 100 + float64(i)
		} else {
			prices[i] = 98 - float64(i)/2
		}
	}
	rsi, err := RSI(prices, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.IsNaN(rsi) || rsi < 0 || rsi > 100 {
		t.Errorf("RSI out of bounds: %v", rsi)
	}
}

func TestRSI_InsufficientHistory(t *testing.T) {
	if _, err := RSI([]float64{1, 2, 3}, 14); !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestEMASeries_SeedAndDecay(t *testing.T) {
	series, err := EMASeries([]float64{10, 20}, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series[0] != 10 {
		t.Errorf("EMA must be seeded with first value, got %v", series[0])
	}
	alpha := 2.0 / 10.0
	want := alpha*20 + (1-alpha)*10
	if math.Abs(series[1]-want) > 1e-12 {
		t.Errorf("expected EMA %v, got %v", want, series[1])
	}
}

func TestMACD_HistogramIsExactDifference(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100 + 5*math.Sin(float64(i)/4)
	}
	line, signal, hist, err := MACD(prices, 12, 26, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hist != line-signal {
		t.Errorf("histogram must equal line-signal exactly: %v != %v", hist, line-signal)
	}
}

func TestMACD_InsufficientHistory(t *testing.T) {
	prices := make([]float64, 34)
	if _, _, _, err := MACD(prices, 12, 26, 9); !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("expected ErrInsufficientHistory for 34 bars, got %v", err)
	}
}

func TestCompute_RequiresLongWindow(t *testing.T) {
	closes := make([]float64, 49)
	for i := range closes {
		closes[i] = 100
	}
	if _, err := Compute(bars(closes)); !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("expected ErrInsufficientHistory for 49 bars, got %v", err)
	}
}

func TestCompute_FullSet(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5
	}
	ind, err := Compute(bars(closes))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ind.ShortMA <= ind.LongMA {
		t.Errorf("uptrend should give short MA > long MA: %v <= %v", ind.ShortMA, ind.LongMA)
	}
	if ind.RSI != 100 {
		t.Errorf("monotonic uptrend should clamp RSI to 100, got %v", ind.RSI)
	}
	if ind.Histogram != ind.MACD-ind.MACDSignal {
		t.Errorf("histogram invariant violated")
	}
}

func TestClassifyRSI(t *testing.T) {
	tests := []struct {
		rsi  float64
		want model.RSIClass
	}{
		{10, model.RSIOversold},
		{29.9, model.RSIOversold},
		{30, model.RSINeutral},
		{50, model.RSINeutral},
		{70, model.RSINeutral},
		{70.1, model.RSIOverbought},
		{100, model.RSIOverbought},
	}
	for _, tt := range tests {
		if got := model.ClassifyRSI(tt.rsi); got != tt.want {
			t.Errorf("ClassifyRSI(%v): expected %q, got %q", tt.rsi, tt.want, got)
		}
	}
}
