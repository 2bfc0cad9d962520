package store

import (
	"context"
	"sync"

	"github.com/goliatone/go-regform/pkg/model"
	"github.com/goliatone/go-regform/pkg/picture"
)

// Token identifies one load request. Tokens increase monotonically per
// loader.
type Token uint64

// Encoder turns a picture into its displayable representation.
type Encoder func(ctx context.Context, pic *model.Picture) (string, error)

// LoadResult reports what happened to a finished load.
type LoadResult struct {
	Token   Token
	Applied bool
	Stale   bool
	Err     error
}

// LoaderOption configures an ImageLoader.
type LoaderOption func(*ImageLoader)

// WithEncoder overrides the picture encoder.
func WithEncoder(encode Encoder) LoaderOption {
	return func(l *ImageLoader) {
		if encode != nil {
			l.encode = encode
		}
	}
}

// WithNotify registers a callback invoked after each load settles.
func WithNotify(fn func(LoadResult)) LoaderOption {
	return func(l *ImageLoader) {
		l.notify = fn
	}
}

// ImageLoader encodes pictures in the background and writes the result into
// the store image slot when the request is still the latest one.
type ImageLoader struct {
	store  *Store
	encode Encoder
	notify func(LoadResult)

	mu     sync.Mutex
	latest Token
	wg     sync.WaitGroup
}

// NewImageLoader builds a loader writing into st.
func NewImageLoader(st *Store, options ...LoaderOption) *ImageLoader {
	l := &ImageLoader{
		store:  st,
		encode: defaultEncoder,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(l)
	}
	return l
}

func defaultEncoder(_ context.Context, pic *model.Picture) (string, error) {
	return picture.Encode(pic)
}

// Load starts an asynchronous encode of pic and returns its token. Any
// earlier request still in flight becomes stale.
func (l *ImageLoader) Load(ctx context.Context, pic *model.Picture) Token {
	l.mu.Lock()
	l.latest++
	token := l.latest
	l.mu.Unlock()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		url, err := l.encode(ctx, pic)
		l.settle(token, url, err)
	}()
	return token
}

// Latest returns the most recently issued token.
func (l *ImageLoader) Latest() Token {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.latest
}

// Wait blocks until every in-flight load has settled.
func (l *ImageLoader) Wait() {
	l.wg.Wait()
}

func (l *ImageLoader) settle(token Token, url string, err error) {
	result := LoadResult{Token: token, Err: err}

	l.mu.Lock()
	switch {
	case token != l.latest:
		result.Stale = true
	case err == nil && url != "":
		l.store.SetFormImage(&url)
		result.Applied = true
	}
	l.mu.Unlock()

	if l.notify != nil {
		l.notify(result)
	}
}
