package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CoinPilot/internal/model"
	"CoinPilot/internal/ratelimit"
)

func newTestKraken(t *testing.T, handler http.HandlerFunc) *Kraken {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	k := NewKraken("key", "c2VjcmV0", "USD", ratelimit.NewBucket(100, time.Second))
	k.BaseURL = srv.URL
	return k
}

func TestKraken_ListAssetPairs_FiltersBaseCurrency(t *testing.T) {
	k := newTestKraken(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/0/public/AssetPairs" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"error":[],"result":{
			"XXBTZUSD":{"altname":"XBTUSD","quote":"ZUSD","ordermin":"0.0001","pair_decimals":1},
			"XETHZEUR":{"altname":"ETHEUR","quote":"ZEUR","ordermin":"0.01","pair_decimals":2},
			"SOLUSD":{"altname":"SOLUSD","quote":"USD","ordermin":"0.1","pair_decimals":2},
			"BROKENUSD":{"altname":"BROKENUSD","quote":"USD","pair_decimals":2}
		}}`))
	})

	pairs, err := k.ListAssetPairs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("expected 2 USD pairs, got %d: %v", len(pairs), pairs)
	}
	if _, ok := pairs["XETHZEUR"]; ok {
		t.Error("EUR-quoted pair must be filtered out")
	}
	if _, ok := pairs["BROKENUSD"]; ok {
		t.Error("pair without ordermin must be skipped")
	}
	if got := pairs["XXBTZUSD"].MinOrder; got != 0.0001 {
		t.Errorf("expected min order 0.0001, got %v", got)
	}
}

func TestKraken_GetTicker(t *testing.T) {
	k := newTestKraken(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":[],"result":{"XXBTZUSD":{"c":["50100.5","1"],"b":["50100.0","1","1"],"a":["50101.0","1","1"]}}}`))
	})
	tick, err := k.GetTicker(context.Background(), "XXBTZUSD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tick.Last != 50100.5 || tick.Bid != 50100.0 || tick.Ask != 50101.0 {
		t.Errorf("unexpected ticker: %+v", tick)
	}
}

func TestKraken_GetOHLC_OrderedBars(t *testing.T) {
	k := newTestKraken(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":[],"result":{"XXBTZUSD":[
			[1700000600,"101","103","100","102","101.5","10",5],
			[1700000000,"100","102","99","101","100.5","12",7]
		],"last":1700000600}}`))
	})
	bars, err := k.GetOHLC(context.Background(), "XXBTZUSD", 1440, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if !bars[0].Time.Before(bars[1].Time) {
		t.Error("bars must be chronologically ordered")
	}
	if bars[0].Close != 101 || bars[1].Close != 102 {
		t.Errorf("unexpected closes: %v %v", bars[0].Close, bars[1].Close)
	}
}

func TestKraken_APIErrorPropagates(t *testing.T) {
	k := newTestKraken(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":["EGeneral:Invalid arguments"],"result":null}`))
	})
	if _, err := k.GetTicker(context.Background(), "XXBTZUSD"); err == nil {
		t.Error("expected api error to propagate")
	}
}

func TestKraken_PlaceOrder_SignsAndParses(t *testing.T) {
	k := newTestKraken(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/0/private/AddOrder" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("API-Key") != "key" || r.Header.Get("API-Sign") == "" {
			t.Error("expected signed private request")
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("ordertype") != "market" || r.PostForm.Get("volume") != "0.5" {
			t.Errorf("unexpected order params: %v", r.PostForm)
		}
		w.Write([]byte(`{"error":[],"result":{"txid":["OABC-123"],"descr":{"order":"buy 0.5 XBTUSD @ market"}}}`))
	})

	res, err := k.PlaceOrder(context.Background(), "XXBTZUSD", model.SideBuy, "0.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TxID != "OABC-123" || len(res.Errors) != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestKraken_PlaceOrder_VenueRejectionIsData(t *testing.T) {
	k := newTestKraken(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":["EOrder:Insufficient funds"],"result":null}`))
	})
	res, err := k.PlaceOrder(context.Background(), "XXBTZUSD", model.SideBuy, "10")
	if err != nil {
		t.Fatalf("venue rejection must not be a transport error: %v", err)
	}
	if len(res.Errors) != 1 || res.TxID != "" {
		t.Errorf("unexpected result: %+v", res)
	}
}
