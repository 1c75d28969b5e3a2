package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"

	"github.com/hack-pad/hackpadfs"
)

// Source fetches raw asset bytes by name. Assets are immutable for a
// session, so fetches are idempotent and may be served from any cache.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// FSSource serves assets from a hackpadfs filesystem: mem FS in tests,
// an OS subtree natively, IndexedDB in the browser.
type FSSource struct {
	FS hackpadfs.FS
}

// Fetch reads the named asset from the filesystem.
func (s FSSource) Fetch(_ context.Context, name string) ([]byte, error) {
	data, err := hackpadfs.ReadFile(s.FS, name)
	if err != nil {
		return nil, fmt.Errorf("reading asset %s: %w", name, err)
	}
	return data, nil
}

// HTTPSource serves assets over HTTP relative to a base URL.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// Fetch downloads the named asset. Non-200 responses are errors.
func (s HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("asset base url: %w", err)
	}
	u.Path = path.Join(u.Path, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("fetching asset %s: %w", name, err)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching asset %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching asset %s: status %s", name, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading asset %s: %w", name, err)
	}
	return data, nil
}
