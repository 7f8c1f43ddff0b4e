package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	fsc "github.com/xmidt-org/fscmonitor"
)

// HTTPAdapter reaches a local HAL daemon over HTTP. Each operation is a
// single JSON POST; response bodies are drained and discarded.
type HTTPAdapter struct {
	BaseURL string
	Auth    fsc.AuthStrategy
	HTTP    *http.Client
}

func NewHTTPAdapter(baseURL string, auth fsc.AuthStrategy) *HTTPAdapter {
	return &HTTPAdapter{BaseURL: trimRightSlash(baseURL), Auth: auth, HTTP: &http.Client{Timeout: 10 * time.Second}}
}

func trimRightSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

func (a *HTTPAdapter) SetDeviceCodeImageTimeout(ctx context.Context, seconds int) error {
	return a.postJSON(ctx, "/api/v1/hal/codeImageTimeout", map[string]int{"seconds": seconds})
}

func (a *HTTPAdapter) SetDeviceCodeImageValid(ctx context.Context, valid bool) error {
	return a.postJSON(ctx, "/api/v1/hal/codeImageValid", map[string]bool{"valid": valid})
}

// postJSON performs an HTTP POST of a small JSON body; returns sentinel
// errors from the root package where feasible.
func (a *HTTPAdapter) postJSON(ctx context.Context, path string, body interface{}) error {
	if a.HTTP == nil {
		a.HTTP = &http.Client{Timeout: 10 * time.Second}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.Auth != nil {
		if v, e := a.Auth.AuthorizationValue(); e == nil && v != "" {
			req.Header.Set("Authorization", v)
		}
	}
	resp, err := a.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", fsc.ErrHALUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return fsc.ErrHALUnsupported
	case resp.StatusCode == http.StatusForbidden:
		return fsc.ErrHALRejected
	case resp.StatusCode >= 500:
		return fsc.ErrHALUnavailable
	default:
		return errors.New(resp.Status)
	}
}
