package catalog

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"onmodulus/xervo/internal/cache"
	"onmodulus/xervo/internal/domain"
	"onmodulus/xervo/internal/librarian"
	"onmodulus/xervo/internal/retry"
)

const imagesJSON = `[
	{"id":"img-node","name":"node","label":"Node.js","tags":[{"id":"t-20","version":"20"},{"id":"t-18","version":"18"}]},
	{"id":"img-php","name":"php","label":"PHP","tags":[]}
]`

const addonsJSON = `[
	{"id":"mongo","name":"MongoDB","plans":[{"id":"free","name":"Sandbox"},{"id":"p1","name":"Production"}]}
]`

// catalogDoer serves the catalog endpoints, failing the first failures
// calls with a transport error.
type catalogDoer struct {
	failures int
	calls    int
}

func (d *catalogDoer) Send(_ context.Context, _, path string, _ url.Values, _ any) (librarian.Payload, error) {
	d.calls++
	if d.calls <= d.failures {
		return nil, &librarian.Error{Kind: librarian.KindTransport, Err: errors.New("connection reset")}
	}
	switch path {
	case "/images":
		return librarian.Payload(imagesJSON), nil
	case "/addons":
		return librarian.Payload(addonsJSON), nil
	}
	return nil, nil
}

func (d *catalogDoer) Raw(context.Context, librarian.RawRequest) (*librarian.RawResponse, error) {
	return nil, errors.New("not used")
}

func newTestService(t *testing.T, doer *catalogDoer) *Service {
	t.Helper()
	return NewService(librarian.NewClient(doer, "tok"), cache.New(t.TempDir()),
		WithRetry(retry.Config{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}))
}

func TestImages_CachedAfterFirstFetch(t *testing.T) {
	doer := &catalogDoer{}
	svc := newTestService(t, doer)

	for range 3 {
		images, err := svc.Images(context.Background())
		if err != nil {
			t.Fatalf("Images() error = %v", err)
		}
		if len(images) != 2 {
			t.Fatalf("Images() returned %d images, want 2", len(images))
		}
	}
	if doer.calls != 1 {
		t.Errorf("API called %d times, want 1", doer.calls)
	}

	if err := svc.Refresh(); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if _, err := svc.Images(context.Background()); err != nil {
		t.Fatal(err)
	}
	if doer.calls != 2 {
		t.Errorf("API called %d times after refresh, want 2", doer.calls)
	}
}

func TestImages_RetriesTransientFailures(t *testing.T) {
	doer := &catalogDoer{failures: 2}
	svc := newTestService(t, doer)

	if _, err := svc.Images(context.Background()); err != nil {
		t.Fatalf("Images() error = %v", err)
	}
	if doer.calls != 3 {
		t.Errorf("API called %d times, want 3", doer.calls)
	}
}

func TestImages_GivesUp(t *testing.T) {
	doer := &catalogDoer{failures: 10}
	svc := newTestService(t, doer)

	_, err := svc.Images(context.Background())
	if !errors.Is(err, &librarian.Error{Kind: librarian.KindTransport}) {
		t.Fatalf("Images() error = %v, want transport error", err)
	}
	if doer.calls != 3 {
		t.Errorf("API called %d times, want 3", doer.calls)
	}
}

func TestResolveImage(t *testing.T) {
	svc := newTestService(t, &catalogDoer{})

	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{ref: "node", want: "t-20"},
		{ref: "Node.js", want: "t-20"},
		{ref: "NODE@18", want: "t-18"},
		{ref: "node@12", wantErr: true},
		{ref: "php", wantErr: true},
		{ref: "ruby", wantErr: true},
		{ref: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			_, tag, err := svc.ResolveImage(context.Background(), tt.ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveImage(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			}
			if tag.ID != tt.want {
				t.Errorf("ResolveImage(%q) tag = %q, want %q", tt.ref, tag.ID, tt.want)
			}
		})
	}

	if _, _, err := svc.ResolveImage(context.Background(), "ruby"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown image error = %v, want ErrNotFound", err)
	}
}

func TestImageTagIDs(t *testing.T) {
	img := domain.Image{Name: "node", Type: "runtime"}
	got := ImageTagIDs(img, domain.ImageTag{ID: "t-20"})
	if got["runtime"] != "t-20" || len(got) != 1 {
		t.Errorf("ImageTagIDs() = %v, want runtime=t-20", got)
	}
	got = ImageTagIDs(domain.Image{Name: "node"}, domain.ImageTag{ID: "t-20"})
	if got["node"] != "t-20" {
		t.Errorf("ImageTagIDs() without type = %v, want keyed by name", got)
	}
}

func TestFindAddon(t *testing.T) {
	svc := newTestService(t, &catalogDoer{})
	ctx := context.Background()

	a, p, err := svc.FindAddon(ctx, "mongodb", "")
	if err != nil {
		t.Fatalf("FindAddon() error = %v", err)
	}
	if a.ID != "mongo" || p.ID != "free" {
		t.Errorf("FindAddon() = %s/%s, want mongo/free", a.ID, p.ID)
	}

	if _, p, err = svc.FindAddon(ctx, "mongo", "production"); err != nil || p.ID != "p1" {
		t.Errorf("FindAddon(plan by name) = %s, %v; want p1", p.ID, err)
	}
	if _, _, err = svc.FindAddon(ctx, "redis", ""); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("FindAddon(unknown) error = %v, want ErrNotFound", err)
	}
}
