package out

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dsaboost/internal/modules/functions/domain"
	functionsout "dsaboost/internal/modules/functions/port/out"
	apperrors "dsaboost/internal/platform/errors"
)

// HTTPInvoker calls functions on a remote host.
type HTTPInvoker struct {
	baseURL string
	anonKey string
	http    *http.Client
}

// NewHTTPInvoker returns nil when baseURL is empty.
func NewHTTPInvoker(baseURL, anonKey string, client *http.Client) functionsout.Invoker {
	if baseURL == "" {
		return nil
	}
	if client == nil {
		client = &http.Client{Timeout: 90 * time.Second}
	}
	return &HTTPInvoker{baseURL: strings.TrimRight(baseURL, "/"), anonKey: anonKey, http: client}
}

func (c *HTTPInvoker) Invoke(ctx context.Context, name string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/functions/v1/"+name, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.anonKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.anonKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("invoke %s: %w", name, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read %s response: %w", name, err)
	}

	var env domain.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode %s response (status %d): %w", name, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || env.Error != "" {
		sentinel := errorFor(resp.StatusCode)
		return fmt.Errorf("%w: %s", sentinel, strings.TrimPrefix(env.Error, sentinel.Error()+": "))
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", name, err)
	}
	return nil
}

func errorFor(status int) error {
	switch status {
	case http.StatusBadRequest:
		return apperrors.ErrInvalidInput
	case http.StatusNotFound:
		return apperrors.ErrUnknownFunction
	case http.StatusTooManyRequests:
		return apperrors.ErrRateLimited
	case http.StatusServiceUnavailable:
		return apperrors.ErrNotConfigured
	case http.StatusUnauthorized:
		return apperrors.ErrNotSignedIn
	default:
		return errors.New("function error")
	}
}
