package providerhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/BearBump/BidBox/internal/integrations/valuation"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Client talks to the external vehicle-valuation endpoint:
// POST {base}/vehicle-valuation with {"registration": "..."}; a 404 means the
// plate has no valuation available.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:9000"
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type valuationReq struct {
	Registration string `json:"registration"`
}

type valuationResp struct {
	RetailValuation decimal.Decimal `json:"retailValuation"`
	Make            string          `json:"make"`
	Model           string          `json:"model"`
}

func (c *Client) GetValuation(ctx context.Context, reg string) (valuation.Result, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return valuation.Result{}, errors.Wrap(err, "parse base url")
	}
	u.Path = "/vehicle-valuation"

	body, err := json.Marshal(valuationReq{Registration: reg})
	if err != nil {
		return valuation.Result{}, errors.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return valuation.Result{}, errors.Wrap(err, "new request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return valuation.Result{}, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return valuation.Result{}, valuation.ErrNotFound
	}
	if resp.StatusCode/100 != 2 {
		return valuation.Result{}, fmt.Errorf("valuation provider http %d", resp.StatusCode)
	}

	var r valuationResp
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return valuation.Result{}, errors.Wrap(err, "decode")
	}

	return valuation.Result{
		RetailValuation: r.RetailValuation,
		Make:            r.Make,
		Model:           r.Model,
	}, nil
}
