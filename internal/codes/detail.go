package codes

import (
	"context"
	"errors"
	"strings"
	"sync"

	"vademecum/internal"
	"vademecum/internal/browse"
)

// ErrStale is returned by DetailLoader.Open when a newer Open started before this one
// finished. The loader state is left untouched.
var ErrStale = errors.New("stale group detail response")

type RecordFetcher interface {
	ListRecordsByCode(ctx context.Context, nomeCodigo string) ([]internal.CodeArticleRecord, error)
}

// DetailLoader refetches one code's articles when it is opened and keeps the view of
// the most recently opened code.
type DetailLoader struct {
	fetcher RecordFetcher
	fence   Fence

	mu      sync.Mutex
	current *internal.GroupView
}

func NewDetailLoader(fetcher RecordFetcher) *DetailLoader {
	return &DetailLoader{fetcher: fetcher}
}

func (l *DetailLoader) Open(ctx context.Context, nomeCodigo string) (internal.GroupView, error) {
	ticket := l.fence.Next()

	recs, err := l.fetcher.ListRecordsByCode(ctx, nomeCodigo)
	if !l.fence.IsLatest(ticket) {
		return internal.GroupView{}, ErrStale
	}
	if err != nil {
		return internal.GroupView{}, err
	}

	view := browse.Open(pickGroup(browse.Group(recs), nomeCodigo))

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.fence.IsLatest(ticket) {
		return internal.GroupView{}, ErrStale
	}
	l.current = &view
	return view, nil
}

// Current returns the view applied by the latest successful Open.
func (l *DetailLoader) Current() (internal.GroupView, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return internal.GroupView{}, false
	}
	return *l.current, true
}

func pickGroup(groups []internal.CodeGroup, nomeCodigo string) internal.CodeGroup {
	if g, ok := browse.FindGroup(groups, nomeCodigo); ok {
		return g
	}
	return internal.CodeGroup{Label: strings.TrimSpace(nomeCodigo)}
}
