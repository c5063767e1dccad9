package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"CoinPilot/internal/model"
	"CoinPilot/internal/ratelimit"
)

// Kraken is a REST client for the Kraken spot API implementing all three
// gateway interfaces. Every call waits on the trading-class rate bucket and
// is bounded by the HTTP client timeout.
type Kraken struct {
	APIKey       string
	APISecret    string
	BaseURL      string
	BaseCurrency string
	Client       *http.Client
	Limiter      *ratelimit.Bucket
}

// NewKraken creates a client for the given credentials and base currency.
func NewKraken(apiKey, apiSecret, baseCurrency string, limiter *ratelimit.Bucket) *Kraken {
	return &Kraken{
		APIKey:       apiKey,
		APISecret:    apiSecret,
		BaseURL:      "https://api.kraken.com",
		BaseCurrency: baseCurrency,
		Client:       &http.Client{Timeout: 15 * time.Second},
		Limiter:      limiter,
	}
}

// krakenEnvelope is the standard Kraken response wrapper.
type krakenEnvelope struct {
	Error  []string        `json:"error"`
	Result json.RawMessage `json:"result"`
}

func (k *Kraken) public(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	if err := k.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate wait: %w", err)
	}
	u := fmt.Sprintf("%s/0/public/%s", k.BaseURL, endpoint)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return k.do(req, endpoint)
}

func (k *Kraken) private(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	if err := k.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate wait: %w", err)
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("nonce", strconv.FormatInt(time.Now().UnixNano(), 10))

	path := "/0/private/" + endpoint
	body := params.Encode()
	sig, err := k.sign(path, params.Get("nonce"), body)
	if err != nil {
		return nil, fmt.Errorf("sign %s: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.BaseURL+path, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("API-Key", k.APIKey)
	req.Header.Set("API-Sign", sig)
	return k.do(req, endpoint)
}

// sign computes the Kraken API-Sign header: HMAC-SHA512 of the URI path plus
// SHA256(nonce + POST body), keyed with the base64-decoded secret.
func (k *Kraken) sign(path, nonce, body string) (string, error) {
	secret, err := base64.StdEncoding.DecodeString(k.APISecret)
	if err != nil {
		return "", fmt.Errorf("decode secret: %w", err)
	}
	digest := sha256.Sum256([]byte(nonce + body))
	mac := hmac.New(sha512.New, secret)
	mac.Write([]byte(path))
	mac.Write(digest[:])
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

func (k *Kraken) do(req *http.Request, endpoint string) (json.RawMessage, error) {
	resp, err := k.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kraken %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("kraken %s read body: %w", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kraken %s: status %d, body: %s", endpoint, resp.StatusCode, string(body))
	}

	var env krakenEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("kraken %s decode: %w", endpoint, err)
	}
	if len(env.Error) > 0 {
		return nil, fmt.Errorf("kraken %s api error: %s", endpoint, strings.Join(env.Error, ", "))
	}
	return env.Result, nil
}

type krakenPair struct {
	AltName      string `json:"altname"`
	Quote        string `json:"quote"`
	OrderMin     string `json:"ordermin"`
	PairDecimals int32  `json:"pair_decimals"`
}

// ListAssetPairs fetches all pairs quoted in the base currency. Pairs with
// missing order-minimum metadata are skipped with a warning.
func (k *Kraken) ListAssetPairs(ctx context.Context) (map[string]model.AssetPairInfo, error) {
	raw, err := k.public(ctx, "AssetPairs", nil)
	if err != nil {
		return nil, err
	}
	var all map[string]krakenPair
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, fmt.Errorf("decode asset pairs: %w", err)
	}

	pairs := make(map[string]model.AssetPairInfo)
	for name, info := range all {
		if info.Quote != k.BaseCurrency && info.Quote != "Z"+k.BaseCurrency {
			continue
		}
		if info.OrderMin == "" {
			log.Printf("[WARN] skipping pair %s: missing ordermin", name)
			continue
		}
		minOrder, err := strconv.ParseFloat(info.OrderMin, 64)
		if err != nil {
			log.Printf("[WARN] skipping pair %s: bad ordermin %q", name, info.OrderMin)
			continue
		}
		pairs[name] = model.AssetPairInfo{
			AltName:       info.AltName,
			MinOrder:      minOrder,
			DecimalPlaces: info.PairDecimals,
		}
	}
	return pairs, nil
}

type krakenTicker struct {
	C []string `json:"c"`
	B []string `json:"b"`
	A []string `json:"a"`
}

// GetTicker fetches the current quote for a pair.
func (k *Kraken) GetTicker(ctx context.Context, pair string) (*model.Ticker, error) {
	raw, err := k.public(ctx, "Ticker", url.Values{"pair": {pair}})
	if err != nil {
		return nil, err
	}
	var result map[string]krakenTicker
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode ticker: %w", err)
	}
	t, ok := result[pair]
	if !ok || len(t.C) == 0 || len(t.B) == 0 || len(t.A) == 0 {
		return nil, fmt.Errorf("ticker for %s: %w", pair, ErrDataMissing)
	}
	last, err1 := strconv.ParseFloat(t.C[0], 64)
	bid, err2 := strconv.ParseFloat(t.B[0], 64)
	ask, err3 := strconv.ParseFloat(t.A[0], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, fmt.Errorf("ticker for %s: %w", pair, ErrDataMissing)
	}
	return &model.Ticker{Last: last, Bid: bid, Ask: ask}, nil
}

// GetOHLC fetches ordered price bars for a pair at the given interval.
func (k *Kraken) GetOHLC(ctx context.Context, pair string, intervalMinutes int, since int64) ([]model.PriceBar, error) {
	params := url.Values{
		"pair":     {pair},
		"interval": {strconv.Itoa(intervalMinutes)},
	}
	if since > 0 {
		params.Set("since", strconv.FormatInt(since, 10))
	}
	raw, err := k.public(ctx, "OHLC", params)
	if err != nil {
		return nil, err
	}

	var result map[string]json.RawMessage
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode ohlc: %w", err)
	}
	rows, ok := result[pair]
	if !ok {
		return nil, fmt.Errorf("ohlc for %s: %w", pair, ErrDataMissing)
	}

	// Rows are [time, open, high, low, close, vwap, volume, count] with
	// numeric strings for everything but time and count.
	var data [][]interface{}
	if err := json.Unmarshal(rows, &data); err != nil {
		return nil, fmt.Errorf("decode ohlc rows: %w", err)
	}
	bars := make([]model.PriceBar, 0, len(data))
	for _, row := range data {
		if len(row) < 7 {
			return nil, fmt.Errorf("ohlc row for %s: %w", pair, ErrDataMissing)
		}
		ts, ok := row[0].(float64)
		if !ok {
			return nil, fmt.Errorf("ohlc timestamp for %s: %w", pair, ErrDataMissing)
		}
		vals := make([]float64, 5)
		for i := 1; i <= 5; i++ {
			s, ok := row[i].(string)
			if !ok {
				return nil, fmt.Errorf("ohlc field for %s: %w", pair, ErrDataMissing)
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("ohlc field for %s: %w", pair, ErrDataMissing)
			}
			vals[i-1] = v
		}
		volume := 0.0
		if s, ok := row[6].(string); ok {
			volume, _ = strconv.ParseFloat(s, 64)
		}
		bars = append(bars, model.PriceBar{
			Time:   time.Unix(int64(ts), 0),
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: volume,
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// GetBalance fetches all account balances.
func (k *Kraken) GetBalance(ctx context.Context) (map[string]float64, error) {
	raw, err := k.private(ctx, "Balance", nil)
	if err != nil {
		return nil, err
	}
	var result map[string]string
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode balance: %w", err)
	}
	balances := make(map[string]float64, len(result))
	for asset, amount := range result {
		v, err := strconv.ParseFloat(amount, 64)
		if err != nil {
			return nil, fmt.Errorf("balance for %s: %w", asset, ErrDataMissing)
		}
		balances[asset] = v
	}
	return balances, nil
}

type krakenTrade struct {
	Time  float64 `json:"time"`
	Pair  string  `json:"pair"`
	Type  string  `json:"type"`
	Price string  `json:"price"`
	Vol   string  `json:"vol"`
	Cost  string  `json:"cost"`
}

// GetRecentTrades fetches the most recent executed trades, newest first.
func (k *Kraken) GetRecentTrades(ctx context.Context, limit int) ([]model.TradeRecord, error) {
	raw, err := k.private(ctx, "TradesHistory", nil)
	if err != nil {
		return nil, err
	}
	var result struct {
		Trades map[string]krakenTrade `json:"trades"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode trades: %w", err)
	}

	records := make([]model.TradeRecord, 0, len(result.Trades))
	for _, t := range result.Trades {
		price, _ := strconv.ParseFloat(t.Price, 64)
		amount, _ := strconv.ParseFloat(t.Vol, 64)
		cost, _ := strconv.ParseFloat(t.Cost, 64)
		records = append(records, model.TradeRecord{
			Time:   time.Unix(int64(t.Time), 0),
			Pair:   t.Pair,
			Type:   t.Type,
			Price:  price,
			Amount: amount,
			Cost:   cost,
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Time.After(records[j].Time) })
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// PlaceOrder submits a market order. Venue-level rejections come back in the
// result's Errors field; only transport failures return a non-nil error.
func (k *Kraken) PlaceOrder(ctx context.Context, pair string, side model.Side, volume string) (*OrderResult, error) {
	params := url.Values{
		"pair":      {pair},
		"type":      {string(side)},
		"ordertype": {"market"},
		"volume":    {volume},
	}
	if err := k.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate wait: %w", err)
	}

	// AddOrder handles the error envelope itself so a venue rejection is
	// data, not a transport failure.
	path := "/0/private/AddOrder"
	params.Set("nonce", strconv.FormatInt(time.Now().UnixNano(), 10))
	body := params.Encode()
	sig, err := k.sign(path, params.Get("nonce"), body)
	if err != nil {
		return nil, fmt.Errorf("sign AddOrder: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.BaseURL+path, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("API-Key", k.APIKey)
	req.Header.Set("API-Sign", sig)

	resp, err := k.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kraken AddOrder: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("kraken AddOrder read body: %w", err)
	}

	var env struct {
		Error  []string `json:"error"`
		Result struct {
			TxID []string `json:"txid"`
		} `json:"result"`
	}
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("kraken AddOrder decode: %w", err)
	}

	result := &OrderResult{Errors: env.Error}
	if len(env.Result.TxID) > 0 {
		result.TxID = env.Result.TxID[0]
	}
	return result, nil
}
