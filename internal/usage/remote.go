package usage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mindfuel/internal/types"
)

// maxResponseBytes caps how much of a usage response is read.
const maxResponseBytes = 16 << 20

// Doer executes HTTP requests. external.BaseClient satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RemoteSource fetches daily usage from the usage service at
// GET {baseURL}/v1/usage?date=YYYY-MM-DD. Responses are Batch documents,
// optionally zstd-compressed.
type RemoteSource struct {
	client  Doer
	baseURL string
	token   types.SecretString
}

// NewRemoteSource creates a RemoteSource. The token is sent as a bearer
// credential when set.
func NewRemoteSource(client Doer, baseURL string, token types.SecretString) *RemoteSource {
	return &RemoteSource{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

func (s *RemoteSource) DailyUsage(ctx context.Context, date time.Time) ([]types.RawUsage, error) {
	day := types.DayStart(date).Format(types.DateLayout)
	endpoint := s.baseURL + "/v1/usage?" + url.Values{"date": {day}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build usage request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "zstd, identity")
	if s.token.IsSet() {
		req.Header.Set("Authorization", "Bearer "+s.token.Unmask())
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamUsageSource, "failed to read usage response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		code := types.ErrCodeUpstreamUsageSource
		if resp.StatusCode == http.StatusTooManyRequests {
			code = types.ErrCodeUpstreamRateLimited
		}
		return nil, types.NewAppErrorWithDetails(code,
			fmt.Sprintf("usage source returned %d", resp.StatusCode), nil,
			map[string]any{"status": resp.StatusCode, "date": day})
	}

	batch, err := DecodeBatch(body)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamUsageSource, "usage source returned a malformed batch", err)
	}
	if batch.Date != day {
		return nil, types.NewAppErrorWithDetails(types.ErrCodeUpstreamUsageSource,
			"usage source returned a different day", nil,
			map[string]any{"requested": day, "returned": batch.Date})
	}
	return batch.Usage, nil
}
