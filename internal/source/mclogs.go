package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/woozymasta/mclens/internal/vars"
)

// MclogsAPI is the public mclo.gs API endpoint.
const MclogsAPI = "https://api.mclo.gs"

// ErrMclogsNotFound is returned when mclo.gs has no log with the requested ID.
var ErrMclogsNotFound = errors.New("mclo.gs log not found")

// Mclogs fetches the raw text of a log shared on mclo.gs.
type Mclogs struct {
	API    string       // API base URL, MclogsAPI when empty
	ID     string       // Log ID or full share URL
	Client *http.Client // http.DefaultClient when nil
}

func (m Mclogs) String() string { return "mclogs:" + m.logID() }

// logID accepts "abc123" as well as "https://mclo.gs/abc123".
func (m Mclogs) logID() string {
	id := strings.TrimSpace(m.ID)
	if parsed, err := url.Parse(id); err == nil && parsed.Host != "" {
		id = strings.Trim(parsed.Path, "/")
	}
	return id
}

func (m Mclogs) Lines(ctx context.Context) ([]string, error) {
	api := m.API
	if api == "" {
		api = MclogsAPI
	}
	httpClient := m.Client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	id := m.logID()
	if id == "" {
		return nil, ErrMclogsNotFound
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/1/raw/%s", strings.TrimRight(api, "/"), url.PathEscape(id)), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", vars.UserAgent())

	res, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	switch res.StatusCode {
	case http.StatusOK:
		return ReadLines(res.Body)
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrMclogsNotFound, id)
	default:
		return nil, fmt.Errorf("mclo.gs %s: unexpected status %s", id, res.Status)
	}
}
