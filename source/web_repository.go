package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"
)

// maxWebDocumentSize caps how much of a response body is read.
const maxWebDocumentSize = 4 << 20

// WebRepository fetches the document from an HTTP endpoint.
type WebRepository struct {
	document
	Name       string       // Name of the source
	URL        *url.URL     // Location of the document
	APIKey     string       // Optional value for the X-API-Key header
	HTTPClient *http.Client // Defaults to http.DefaultClient
}

// NewWebRepository parses rawURL and returns a WebRepository for it.
func NewWebRepository(name, rawURL string) (*WebRepository, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	return &WebRepository{Name: name, URL: u}, nil
}

// GetName returns the name of the source.
func (w *WebRepository) GetName() string {
	return w.Name
}

// Refresh downloads the document again.
func (w *WebRepository) Refresh(ctx context.Context) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, w.URL.String(), nil)
	if err != nil {
		logrus.Debug("error creating request")
		return err
	}
	if w.APIKey != "" {
		request.Header.Set("X-API-Key", w.APIKey)
	}

	client := w.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(request)
	if err != nil {
		logrus.Debug("error doing request")
		return err
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logrus.WithError(err).Debug("error closing response body")
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fetch %s: unexpected status %s", w.URL.Redacted(), resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxWebDocumentSize))
	if err != nil {
		logrus.Debug("error reading response")
		return err
	}
	if err := w.store(data); err != nil {
		logrus.Debug("error unmarshalling response")
		return err
	}
	return nil
}
