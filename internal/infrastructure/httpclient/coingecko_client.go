package httpclient

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"donation_portal/internal/pkg/metrics"
	"donation_portal/internal/pkg/utils"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxIDsPerRequest = 50

// simplePriceResponse is the /simple/price body: feed id -> {"usd": price}.
type simplePriceResponse map[string]struct {
	USD *float64 `json:"usd"`
}

// CoinGeckoClient implements port.PriceFeedClient against the CoinGecko simple price API.
type CoinGeckoClient struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewCoinGeckoClient creates a new CoinGecko client. ratePerSecond <= 0 disables client-side limiting.
func NewCoinGeckoClient(baseURL, apiKey string, timeout time.Duration, ratePerSecond float64, burst int, logger *zap.Logger) *CoinGeckoClient {
	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}
	if burst <= 0 {
		burst = 1
	}
	return &CoinGeckoClient{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger.Named("CoinGeckoClient"),
	}
}

// GetUSDPrices returns the USD price for each requested feed id present in the response.
// Ids are deduplicated and sent in batches of maxIDsPerRequest.
func (c *CoinGeckoClient) GetUSDPrices(ctx context.Context, ids []string) (map[string]float64, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("ids cannot be empty")
	}
	unique := utils.UniqueStrings(ids)
	sort.Strings(unique)

	prices := make(map[string]float64, len(unique))
	for _, batch := range utils.BatchStrings(unique, maxIDsPerRequest) {
		if err := c.fetchBatch(ctx, batch, prices); err != nil {
			return nil, err
		}
	}
	return prices, nil
}

func (c *CoinGeckoClient) fetchBatch(ctx context.Context, ids []string, prices map[string]float64) error {
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.PriceFeedRequests.WithLabelValues("throttled").Inc()
		return fmt.Errorf("price feed rate limit: %w", err)
	}

	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("vs_currencies", "usd")
	requestURL := c.baseURL + "/simple/price?" + query.Encode()

	c.logger.Debug("Requesting prices from CoinGecko", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		metrics.PriceFeedRequests.WithLabelValues("transport_error").Inc()
		c.logger.Error("Failed to execute request to CoinGecko", zap.String("url", requestURL), zap.Error(err))
		return fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		metrics.PriceFeedRequests.WithLabelValues("bad_status").Inc()
		c.logger.Error("CoinGecko API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody),
		)
		return fmt.Errorf("CoinGecko API request to %s failed with status %d", requestURL, resp.StatusCode())
	}

	var body simplePriceResponse
	if err := json.Unmarshal(rawBody, &body); err != nil {
		metrics.PriceFeedRequests.WithLabelValues("decode_error").Inc()
		c.logger.Error("Failed to unmarshal CoinGecko response", zap.ByteString("responseBody", rawBody), zap.Error(err))
		return fmt.Errorf("failed to unmarshal CoinGecko response: %w", err)
	}

	for id, v := range body {
		if v.USD != nil {
			prices[id] = *v.USD
		}
	}
	metrics.PriceFeedRequests.WithLabelValues("ok").Inc()
	return nil
}
