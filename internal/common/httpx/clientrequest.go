package httpx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

type HTTPError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s - %s", e.StatusCode, e.Status, e.Message)
}

// PostJSON posts a JSON body to url and returns the raw response body.
// Non-2xx responses are returned as *HTTPError with the body as the message.
func PostJSON(ctx context.Context, url string, body []byte, timeout time.Duration, overrideTransport ...http.RoundTripper) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	if timeout == 0 {
		timeout = 10 * time.Second
	}
	client := &http.Client{
		Timeout: timeout,
	}
	if len(overrideTransport) > 0 {
		client.Transport = overrideTransport[0]
	}
	response, err := client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	if response.Body == nil {
		return nil, &HTTPError{
			StatusCode: response.StatusCode,
			Status:     response.Status,
			Message:    "empty response body",
		}
	}
	defer response.Body.Close()

	rspBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, &HTTPError{
			StatusCode: response.StatusCode,
			Status:     response.Status,
			Message:    string(rspBody),
		}
	}
	return rspBody, nil
}
