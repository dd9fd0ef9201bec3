package imagery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/mamadbah2/cellar/internal/domain/models"
)

// ErrImageLoad marks a web image that could not be used. It only drives the
// fallback and is never shown to the user.
var ErrImageLoad = errors.New("image load failed")

const maxImageBytes = 10 << 20

// Fetcher loads the bytes behind a web image reference.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (data []byte, mime string, err error)
}

// HTTPFetcher downloads web images and keeps recent ones in memory.
type HTTPFetcher struct {
	httpClient *resty.Client
	cache      *cache.Cache
}

type cachedImage struct {
	data []byte
	mime string
}

// NewHTTPFetcher builds a fetcher with the given request timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "image/*").
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	return &HTTPFetcher{
		httpClient: client,
		cache:      cache.New(30*time.Minute, time.Hour),
	}
}

// Fetch downloads url and checks that the body really is an image.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	if hit, ok := f.cache.Get(url); ok {
		img := hit.(cachedImage)
		return img.data, img.mime, nil
	}

	resp, err := f.httpClient.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrImageLoad, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, "", fmt.Errorf("%w: status %d", ErrImageLoad, resp.StatusCode())
	}

	body := resp.Body()
	if len(body) == 0 {
		return nil, "", fmt.Errorf("%w: empty body", ErrImageLoad)
	}
	if len(body) > maxImageBytes {
		return nil, "", fmt.Errorf("%w: %d bytes exceeds limit", ErrImageLoad, len(body))
	}

	detected := mimetype.Detect(body)
	if !strings.HasPrefix(detected.String(), "image/") {
		return nil, "", fmt.Errorf("%w: body is %s", ErrImageLoad, detected.String())
	}

	f.cache.Set(url, cachedImage{data: body, mime: detected.String()}, cache.DefaultExpiration)
	return body, detected.String(), nil
}

// Image is a rendered picture.
type Image struct {
	Source Source
	Data   []byte
	MIME   string
}

// Renderer serves the picture of a wine following the session policy.
type Renderer struct {
	session *Session
	fetcher Fetcher
	logger  *zap.Logger
}

// NewRenderer wires a renderer. A nil fetcher renders fallbacks only.
func NewRenderer(session *Session, fetcher Fetcher, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if session == nil {
		session = NewSession()
	}
	return &Renderer{session: session, fetcher: fetcher, logger: logger}
}

// Render returns the image to show for wine. A preferred image that cannot be
// loaded is demoted for the rest of the session and the captured photo is
// returned instead. A request whose ctx is done gets the captured photo
// without demoting the web image.
func (r *Renderer) Render(ctx context.Context, wine models.Wine) Image {
	choice := r.session.Current(wine)
	if choice.Source == SourcePreferred {
		if r.fetcher != nil {
			data, mime, err := r.fetcher.Fetch(ctx, choice.URL)
			if err == nil {
				return Image{Source: SourcePreferred, Data: data, MIME: mime}
			}
			if ctx.Err() != nil {
				r.logger.Debug("image request cancelled", zap.String("id", wine.ID), zap.Error(ctx.Err()))
				return Image{Source: SourceFallback, Data: wine.CapturedImage, MIME: wine.ImageType()}
			}
			r.logger.Info("web image unavailable, using captured photo",
				zap.String("id", wine.ID),
				zap.String("url", choice.URL),
				zap.Error(err))
		}
		r.session.Fail(wine)
		choice = r.session.Current(wine)
	}
	return Image{Source: SourceFallback, Data: choice.Data, MIME: choice.MIME}
}

// Prefer re-enables the web image of wine after a manual request.
func (r *Renderer) Prefer(wine models.Wine) bool {
	return r.session.Prefer(wine)
}
