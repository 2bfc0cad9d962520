package store_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/goliatone/go-regform/pkg/model"
	"github.com/goliatone/go-regform/pkg/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// gatedEncoder blocks each encode until its filename is released.
type gatedEncoder struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
}

func newGatedEncoder(names ...string) *gatedEncoder {
	g := &gatedEncoder{gates: make(map[string]chan struct{})}
	for _, name := range names {
		g.gates[name] = make(chan struct{})
	}
	return g
}

func (g *gatedEncoder) release(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	close(g.gates[name])
}

func (g *gatedEncoder) encode(ctx context.Context, pic *model.Picture) (string, error) {
	g.mu.Lock()
	gate := g.gates[pic.Filename]
	g.mu.Unlock()
	select {
	case <-gate:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return "data:image/png;base64," + pic.Filename, nil
}

func TestImageLoader_AppliesCompletedLoad(t *testing.T) {
	st := store.New()
	loader := store.NewImageLoader(st)

	token := loader.Load(context.Background(), &model.Picture{
		Filename: "me.png",
		Data:     []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'},
	})
	loader.Wait()

	if token != 1 || loader.Latest() != 1 {
		t.Fatalf("unexpected tokens: issued %d, latest %d", token, loader.Latest())
	}
	image, ok := store.SelectFormImage(st.State())
	if !ok || !strings.HasPrefix(image, "data:image/png;base64,") {
		t.Fatalf("expected png data url in store, got %q (%v)", image, ok)
	}
}

func TestImageLoader_DiscardsStaleCompletion(t *testing.T) {
	st := store.New()
	gates := newGatedEncoder("first.png", "second.png")

	settled := make(chan store.LoadResult, 2)
	loader := store.NewImageLoader(st,
		store.WithEncoder(gates.encode),
		store.WithNotify(func(r store.LoadResult) { settled <- r }),
	)

	ctx := context.Background()
	first := loader.Load(ctx, &model.Picture{Filename: "first.png"})
	second := loader.Load(ctx, &model.Picture{Filename: "second.png"})

	// The newer selection finishes first, then the older read completes.
	gates.release("second.png")
	newer := <-settled
	gates.release("first.png")
	older := <-settled
	loader.Wait()

	image, _ := store.SelectFormImage(st.State())
	if image != "data:image/png;base64,second.png" {
		t.Fatalf("stale completion overwrote newer image: %q", image)
	}
	if newer.Token != second || !newer.Applied || newer.Stale {
		t.Fatalf("expected second load applied, got %+v", newer)
	}
	if older.Token != first || older.Applied || !older.Stale {
		t.Fatalf("expected first load stale, got %+v", older)
	}
}

func TestImageLoader_FailedReadNeverApplied(t *testing.T) {
	st := store.New()
	boom := errors.New("unreadable")
	var got store.LoadResult
	loader := store.NewImageLoader(st,
		store.WithEncoder(func(context.Context, *model.Picture) (string, error) { return "", boom }),
		store.WithNotify(func(r store.LoadResult) { got = r }),
	)

	loader.Load(context.Background(), &model.Picture{Filename: "broken.png"})
	loader.Wait()

	if _, ok := store.SelectFormImage(st.State()); ok {
		t.Fatalf("failed load must not write the store")
	}
	if !errors.Is(got.Err, boom) || got.Applied {
		t.Fatalf("unexpected result %+v", got)
	}
}
