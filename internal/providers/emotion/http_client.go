package emotion

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPClient posts frame samples to an emotion-detection endpoint.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *HTTPClient) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}

type detectRequest struct {
	Frames []string `json:"frames"` // base64 jpeg
}

type detectResponse struct {
	Consistency float64 `json:"consistency"`
	Stress      float64 `json:"stress"`
}

func (c *HTTPClient) Detect(ctx context.Context, frames [][]byte) (Scores, bool, error) {
	if len(frames) == 0 {
		return Scores{}, false, nil
	}

	reqBody := detectRequest{Frames: make([]string, 0, len(frames))}
	for _, f := range frames {
		reqBody.Frames = append(reqBody.Frames, base64.StdEncoding.EncodeToString(f))
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return Scores{}, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect", bytes.NewReader(payload))
	if err != nil {
		return Scores{}, false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return Scores{}, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Scores{}, false, fmt.Errorf("emotion service status %d", resp.StatusCode)
	}

	var out detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Scores{}, false, err
	}
	return Scores{Consistency: out.Consistency, Stress: out.Stress}, true, nil
}
