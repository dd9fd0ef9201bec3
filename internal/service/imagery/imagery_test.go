package imagery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/cellar/internal/domain/models"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func labelWine(ref string) models.Wine {
	return models.Wine{
		ID:                "w1",
		Name:              "Almaviva",
		CapturedImage:     []byte{0xff, 0xd8, 0xff},
		PreferredImageRef: ref,
	}
}

type countingFetcher struct {
	calls int
	err   error
}

func (f *countingFetcher) Fetch(_ context.Context, _ string) ([]byte, string, error) {
	f.calls++
	if f.err != nil {
		return nil, "", f.err
	}
	return pngBytes, "image/png", nil
}

func TestView_StartsOnPreferredWhenSet(t *testing.T) {
	v := NewView(labelWine("https://img.example/almaviva.png"))
	assert.Equal(t, SourcePreferred, v.Source())
	assert.Equal(t, "https://img.example/almaviva.png", v.Current().URL)

	v = NewView(labelWine(""))
	assert.Equal(t, SourceFallback, v.Source())
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, v.Current().Data)
	assert.Equal(t, models.DefaultCapturedImageType, v.Current().MIME)
}

func TestView_FailIsOneWayUntilPreferred(t *testing.T) {
	v := NewView(labelWine("https://img.example/almaviva.png"))
	v.Fail()
	assert.Equal(t, SourceFallback, v.Source())
	assert.Equal(t, SourceFallback, v.Current().Source)

	assert.True(t, v.Prefer())
	assert.Equal(t, SourcePreferred, v.Source())

	assert.False(t, NewView(labelWine("")).Prefer())
}

func TestRenderer_PreferredFirstThenFallbackWithoutRetry(t *testing.T) {
	fetcher := &countingFetcher{}
	r := NewRenderer(NewSession(), fetcher, nil)
	wine := labelWine("https://img.example/almaviva.png")

	img := r.Render(context.Background(), wine)
	assert.Equal(t, SourcePreferred, img.Source)
	assert.Equal(t, 1, fetcher.calls)

	fetcher.err = ErrImageLoad
	img = r.Render(context.Background(), wine)
	assert.Equal(t, SourceFallback, img.Source)
	assert.Equal(t, wine.CapturedImage, img.Data)
	assert.Equal(t, 2, fetcher.calls)

	// the source works again, but the session never retries on its own
	fetcher.err = nil
	for i := 0; i < 3; i++ {
		img = r.Render(context.Background(), wine)
		assert.Equal(t, SourceFallback, img.Source)
	}
	assert.Equal(t, 2, fetcher.calls)

	require.True(t, r.Prefer(wine))
	img = r.Render(context.Background(), wine)
	assert.Equal(t, SourcePreferred, img.Source)
	assert.Equal(t, 3, fetcher.calls)
}

type ctxFetcher struct {
	calls int
}

func (f *ctxFetcher) Fetch(ctx context.Context, _ string) ([]byte, string, error) {
	f.calls++
	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrImageLoad, err)
	}
	return pngBytes, "image/png", nil
}

func TestRenderer_CancelledRequestDoesNotDemote(t *testing.T) {
	fetcher := &ctxFetcher{}
	r := NewRenderer(NewSession(), fetcher, nil)
	wine := labelWine("https://img.example/almaviva.png")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	img := r.Render(ctx, wine)
	assert.Equal(t, SourceFallback, img.Source)
	assert.Equal(t, wine.CapturedImage, img.Data)

	img = r.Render(context.Background(), wine)
	assert.Equal(t, SourcePreferred, img.Source)
	assert.Equal(t, 2, fetcher.calls)
}

func TestRenderer_ChangedReferenceStartsFresh(t *testing.T) {
	fetcher := &countingFetcher{err: errors.New("404")}
	r := NewRenderer(nil, fetcher, nil)

	r.Render(context.Background(), labelWine("https://img.example/old.png"))
	fetcher.err = nil

	img := r.Render(context.Background(), labelWine("https://img.example/new.png"))
	assert.Equal(t, SourcePreferred, img.Source)
}

func TestRenderer_NoFetcherUsesFallback(t *testing.T) {
	r := NewRenderer(NewSession(), nil, nil)
	img := r.Render(context.Background(), labelWine("https://img.example/almaviva.png"))
	assert.Equal(t, SourceFallback, img.Source)
}

func newMockedFetcher(t *testing.T) *HTTPFetcher {
	t.Helper()
	f := NewHTTPFetcher(time.Second)
	httpmock.ActivateNonDefault(f.httpClient.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return f
}

func TestHTTPFetcher_FetchesAndCachesImages(t *testing.T) {
	f := newMockedFetcher(t)
	httpmock.RegisterResponder(http.MethodGet, "https://img.example/almaviva.png",
		httpmock.NewBytesResponder(http.StatusOK, pngBytes))

	data, mime, err := f.Fetch(context.Background(), "https://img.example/almaviva.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, pngBytes, data)

	_, _, err = f.Fetch(context.Background(), "https://img.example/almaviva.png")
	require.NoError(t, err)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestHTTPFetcher_RejectsErrorsAndNonImages(t *testing.T) {
	f := newMockedFetcher(t)
	httpmock.RegisterResponder(http.MethodGet, "https://img.example/missing.png",
		httpmock.NewStringResponder(http.StatusNotFound, "not found"))
	httpmock.RegisterResponder(http.MethodGet, "https://img.example/page.png",
		httpmock.NewStringResponder(http.StatusOK, "<html><body>hello</body></html>"))
	httpmock.RegisterResponder(http.MethodGet, "https://img.example/empty.png",
		httpmock.NewBytesResponder(http.StatusOK, nil))

	for _, url := range []string{
		"https://img.example/missing.png",
		"https://img.example/page.png",
		"https://img.example/empty.png",
		"https://img.example/unregistered.png",
	} {
		_, _, err := f.Fetch(context.Background(), url)
		assert.ErrorIs(t, err, ErrImageLoad, url)
	}
}
