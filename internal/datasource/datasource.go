// Package datasource abstracts where the dashboard's input tables come
// from. A Source yields a byte stream; the CSV parser does not care
// whether it was a local file or a remote download.
package datasource

import (
	"context"
	"io"
	"strings"

	"ipldash/internal/datasource/file"
	"ipldash/internal/datasource/httpds"
)

// Source is anything that can open a byte stream of tabular data.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// ForURL returns a Source for the given location string.
//
// Supported forms:
//   - "http://..." / "https://..." → HTTP source using client
//   - "file://path"                → local file
//   - anything else                → local file path as-is
//
// client may be nil, in which case a default httpds client is used for
// HTTP locations.
func ForURL(raw string, client *httpds.Client) Source {
	switch {
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		if client == nil {
			client = httpds.NewClient(httpds.Config{})
		}
		return httpSource{url: raw, client: client}
	case strings.HasPrefix(raw, "file://"):
		return file.NewLocal(strings.TrimPrefix(raw, "file://"))
	default:
		return file.NewLocal(raw)
	}
}

type httpSource struct {
	url    string
	client *httpds.Client
}

func (h httpSource) Open(ctx context.Context) (io.ReadCloser, error) {
	return h.client.OpenStream(ctx, h.url)
}
