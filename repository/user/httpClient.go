package userrepo

import (
	"context"
	"encoding/json"
	"fmt"
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

func (r *httpRepo) Resolve(ctx context.Context, token string) (*Identity, error) {
	// One retry on transport failure; HTTP-level answers are authoritative.
	var resp *http.Response
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		req, rerr := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/me", nil)
		if rerr != nil {
			return nil, rerr
		}
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err = r.client.Do(req)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("%w: status %s", ErrUnavailable, resp.Status)
	}

	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	return &id, nil
}
