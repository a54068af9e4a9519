package catalogrepo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mbjethwa/Seneca-Book-Store/util/httpx"
)

type httpRepo struct {
	baseURL string
	client  *http.Client
}

func NewHTTP(baseURL string) Repo {
	return &httpRepo{baseURL: baseURL, client: httpx.Client()}
}

// do builds a fresh request per attempt so a retried POST re-sends its body.
func (r *httpRepo) do(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	var resp *http.Response
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, rerr := http.NewRequestWithContext(ctx, method, url, rd)
		if rerr != nil {
			return nil, rerr
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err = r.client.Do(req)
		if err == nil {
			return resp, nil
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func (r *httpRepo) GetBook(ctx context.Context, bookID int64) (*Book, error) {
	resp, err := r.do(ctx, http.MethodGet, fmt.Sprintf("%s/books/%d", r.baseURL, bookID), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("%w: status %s", ErrUnavailable, resp.Status)
	}

	var b Book
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	return &b, nil
}

func (r *httpRepo) AdjustStock(ctx context.Context, bookID int64, delta int64) error {
	payload, _ := json.Marshal(map[string]int64{"delta": delta})
	resp, err := r.do(ctx, http.MethodPost, fmt.Sprintf("%s/books/%d/stock/adjust", r.baseURL, bookID), payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrInsufficientStock
	default:
		return fmt.Errorf("%w: status %s", ErrUnavailable, resp.Status)
	}
}
