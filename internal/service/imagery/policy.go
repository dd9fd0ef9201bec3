// Package imagery decides which picture represents a wine: the web image the
// analysis suggested, or the photo the user captured.
package imagery

import (
	"sync"

	"github.com/mamadbah2/cellar/internal/domain/models"
)

// Source identifies which of the two candidate images is in use.
type Source string

const (
	SourcePreferred Source = "preferred"
	SourceFallback  Source = "fallback"
)

// Choice is what a view should render right now.
type Choice struct {
	Source Source
	// URL is set for SourcePreferred.
	URL string
	// Data and MIME are set for SourceFallback.
	Data []byte
	MIME string
}

// View tracks the image state of one rendered wine. It starts on the
// preferred image when one exists and drops to the fallback on the first
// load failure. It never goes back on its own; only Prefer does that.
type View struct {
	wine   models.Wine
	source Source
}

// NewView starts the policy for wine.
func NewView(wine models.Wine) *View {
	v := &View{wine: wine, source: SourceFallback}
	if wine.PreferredImageRef != "" {
		v.source = SourcePreferred
	}
	return v
}

// Source reports the active state.
func (v *View) Source() Source {
	return v.source
}

// Current returns the image to render.
func (v *View) Current() Choice {
	if v.source == SourcePreferred {
		return Choice{Source: SourcePreferred, URL: v.wine.PreferredImageRef}
	}
	return Choice{Source: SourceFallback, Data: v.wine.CapturedImage, MIME: v.wine.ImageType()}
}

// Fail records that the preferred image could not be loaded.
func (v *View) Fail() {
	v.source = SourceFallback
}

// Prefer is the manual switch back to the web image. It reports false when
// the wine has no web image.
func (v *View) Prefer() bool {
	if v.wine.PreferredImageRef == "" {
		return false
	}
	v.source = SourcePreferred
	return true
}

// Session holds the views of one render session, keyed by wine id, so that a
// failure observed once is remembered for later renders of the same wine.
type Session struct {
	mu    sync.Mutex
	views map[string]*sessionView
}

type sessionView struct {
	ref  string
	view *View
}

// NewSession creates an empty render session.
func NewSession() *Session {
	return &Session{views: make(map[string]*sessionView)}
}

// Current returns the image to render for wine.
func (s *Session) Current(wine models.Wine) Choice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(wine).Current()
}

// Fail demotes wine to its fallback image for the rest of the session.
func (s *Session) Fail(wine models.Wine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view(wine).Fail()
}

// Prefer manually switches wine back to its web image.
func (s *Session) Prefer(wine models.Wine) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(wine).Prefer()
}

// view returns the tracked view for wine, starting a new one when the wine is
// unseen or its web image reference changed.
func (s *Session) view(wine models.Wine) *View {
	if sv, ok := s.views[wine.ID]; ok && sv.ref == wine.PreferredImageRef {
		sv.view.wine = wine
		return sv.view
	}
	v := NewView(wine)
	s.views[wine.ID] = &sessionView{ref: wine.PreferredImageRef, view: v}
	return v
}
