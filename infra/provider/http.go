package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"

	"github.com/amirasaad/remitquote/pkg/provider"
)

const maxErrorBody = 512

// getJSON issues a GET to endpoint and decodes a 2xx body into out.
// Decode failures wrap provider.ErrMalformedPayload. Errors never carry the
// request URL, which may hold a credential.
func getJSON(ctx context.Context, client *http.Client, endpoint string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.New("failed to create request: invalid rates url")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request to %s: %w", req.URL.Host, stripURL(err))
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", provider.ErrMalformedPayload, err)
	}
	return nil
}

// stripURL drops the *url.Error wrapper, keeping only the transport cause.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

// validateRates rejects empty tables and any rate that is not finite and positive.
func validateRates(rates map[string]float64) error {
	if len(rates) == 0 {
		return fmt.Errorf("%w: no rates", provider.ErrMalformedPayload)
	}
	for code, rate := range rates {
		if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
			return fmt.Errorf("%w: rate for %s is %v", provider.ErrMalformedPayload, code, rate)
		}
	}
	return nil
}
