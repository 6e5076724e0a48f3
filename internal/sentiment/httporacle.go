package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPOracle wraps a remote financial-sentiment model behind a minimal
// text-in/score-out HTTP contract, using a bounded-timeout http.Client
// with idle-connection reuse.
type HTTPOracle struct {
	Endpoint   string
	ModelName  string
	httpClient *http.Client
}

func NewHTTPOracle(endpoint, modelName string, timeout time.Duration) *HTTPOracle {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPOracle{
		Endpoint:  endpoint,
		ModelName: modelName,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
	}
}

func (o *HTTPOracle) Name() string { return o.ModelName }

type oracleRequest struct {
	Text string `json:"text"`
}

type oracleResponse struct {
	Score float64 `json:"score"`
}

func (o *HTTPOracle) Analyze(ctx context.Context, text string) (float64, error) {
	body, err := json.Marshal(oracleRequest{Text: text})
	if err != nil {
		return 0, fmt.Errorf("marshal oracle request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.Endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build oracle request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("oracle request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("oracle returned status %d", resp.StatusCode)
	}

	var out oracleResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode oracle response: %w", err)
	}
	return out.Score, nil
}
