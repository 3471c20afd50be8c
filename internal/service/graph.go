package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/maheshrc27/autopost/internal/transfer"
)

const maxResponseBytes = 1 << 20

// graphCall performs a Graph API request with form encoded params and
// decodes a successful JSON body into out. It returns the raw body so callers
// can attach the upstream payload to results.
func graphCall(ctx context.Context, client *http.Client, platform, method, endpoint string, params url.Values, out any) (json.RawMessage, error) {
	var body io.Reader
	target := endpoint
	if method == http.MethodGet {
		target = endpoint + "?" + params.Encode()
	} else {
		body = strings.NewReader(params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	if !json.Valid(raw) {
		// keep non JSON bodies out of results, they are marshalled verbatim
		raw = nil
	}

	var errResp transfer.GraphErrorResponse
	if jsonErr := json.Unmarshal(raw, &errResp); jsonErr == nil && errResp.Error != nil && errResp.Error.Message != "" {
		return raw, errResp.Error
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return raw, &transfer.StatusError{Platform: platform, StatusCode: resp.StatusCode}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return raw, fmt.Errorf("error parsing response: %w", err)
		}
	}
	return raw, nil
}

// upstreamMessage extracts the message an operator should see. Graph error
// messages pass through verbatim.
func upstreamMessage(err error) string {
	var graphErr *transfer.GraphError
	if errors.As(err, &graphErr) {
		return graphErr.Message
	}
	return err.Error()
}

func graphURL(baseURL, version string, parts ...string) string {
	segments := []string{strings.TrimRight(baseURL, "/")}
	if version != "" {
		segments = append(segments, version)
	}
	for _, p := range parts {
		segments = append(segments, url.PathEscape(p))
	}
	return strings.Join(segments, "/")
}
