package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MeKo-Tech/bardec/internal/pdf"
	"github.com/MeKo-Tech/bardec/internal/utils"
)

// ResourceError reports a work item that could not be located, opened or
// turned into pixels.
type ResourceError struct {
	Input string
	Err   error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource not found: %s: %v", e.Input, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// IsResourceError reports whether err is a *ResourceError.
func IsResourceError(err error) bool {
	var e *ResourceError
	return errors.As(err, &e)
}

// Resolver turns a work item into one or more images.
type Resolver interface {
	Resolve(ctx context.Context, item string) ([]image.Image, error)
}

// DefaultHTTPTimeout bounds a single URL download.
const DefaultHTTPTimeout = 30 * time.Second

// NewResolver returns the default resolver for local files, PDFs and
// http(s)/file URLs. A nil client gets DefaultHTTPTimeout.
func NewResolver(client *http.Client, pdfPages string) Resolver {
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &sourceResolver{client: client, pdfPages: pdfPages}
}

type sourceResolver struct {
	client   *http.Client
	pdfPages string
}

func (s *sourceResolver) Resolve(ctx context.Context, item string) ([]image.Image, error) {
	if u, ok := parseURL(item); ok {
		if u.Scheme == "file" {
			return s.resolveFile(item, u.Path)
		}
		return s.resolveHTTP(ctx, item, u)
	}
	return s.resolveFile(item, item)
}

func (s *sourceResolver) resolveFile(item, path string) ([]image.Image, error) {
	if pdf.IsPDF(path) {
		pages, err := pdf.ExtractImages(path, s.pdfPages)
		if err != nil {
			return nil, &ResourceError{Input: item, Err: err}
		}
		if len(pages) == 0 {
			return nil, &ResourceError{Input: item, Err: errors.New("no embedded images")}
		}
		images := make([]image.Image, 0, len(pages))
		for _, p := range pages {
			images = append(images, p.Image)
		}
		return images, nil
	}

	img, _, err := utils.LoadImage(path)
	if err != nil {
		return nil, &ResourceError{Input: item, Err: err}
	}
	return []image.Image{img}, nil
}

func (s *sourceResolver) resolveHTTP(ctx context.Context, item string, u *url.URL) ([]image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &ResourceError{Input: item, Err: err}
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &ResourceError{Input: item, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &ResourceError{Input: item, Err: fmt.Errorf("http status %d", resp.StatusCode)}
	}

	img, _, err := utils.DecodeImage(resp.Body, item)
	if err != nil {
		return nil, &ResourceError{Input: item, Err: err}
	}
	return []image.Image{img}, nil
}

// IsURL reports whether item is an http, https or file URL rather than a
// plain path.
func IsURL(item string) bool {
	_, ok := parseURL(item)
	return ok
}

func parseURL(item string) (*url.URL, bool) {
	if !strings.Contains(item, "://") {
		return nil, false
	}
	u, err := url.Parse(item)
	if err != nil {
		return nil, false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "file":
		return u, true
	default:
		return nil, false
	}
}
