package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yfin/finsync/internal/logger"
)

// DefaultTimeout bounds every request. A timeout is treated like any other
// transport failure, never as a distinguished case.
const DefaultTimeout = 4 * time.Second

// Client talks to the finance API. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
}

// NewClient builds a client for the API at baseURL. A zero timeout falls back
// to DefaultTimeout.
func NewClient(baseURL, token string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, newError(KindInvalidURL, fmt.Errorf("base url %q: %w", baseURL, err))
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    u,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// request performs one HTTP exchange. body is JSON-encoded when non-nil; the
// response is decoded into out when out is non-nil.
func (c *Client) request(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return newError(KindEncoding, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return newError(KindInvalidURL, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	log := logger.FromContext(ctx)
	log.Debug().Str("method", method).Str("url", u.String()).Msg("remote request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return newError(KindTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return newError(KindTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, string(data))
	}

	if out == nil {
		return nil
	}
	if len(data) == 0 {
		return newError(KindMissingData, fmt.Errorf("%s %s: empty response body", method, path))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return newError(KindDecoding, err)
	}
	return nil
}

// decodingError classifies a DTO-to-domain conversion failure, leaving already
// classified errors untouched.
func decodingError(err error) error {
	var re *Error
	if errors.As(err, &re) {
		return err
	}
	return newError(KindDecoding, err)
}

func periodQuery(from, to time.Time) url.Values {
	q := url.Values{}
	q.Set("startDate", from.Format(periodDateLayout))
	q.Set("endDate", to.Format(periodDateLayout))
	return q
}

func idPath(prefix string, id int) string {
	return prefix + "/" + strconv.Itoa(id)
}
