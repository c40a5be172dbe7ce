package batch

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/bardec/internal/barcode"
)

// taggedImage carries the codes the fake backend should "find" in it.
type taggedImage struct {
	image.Image
	codes []string
}

func newTaggedImage(codes ...string) *taggedImage {
	return &taggedImage{Image: imaging.New(8, 8, color.White), codes: codes}
}

// fakeResolver serves pre-built images and counts how often each item is resolved.
type fakeResolver struct {
	mu     sync.Mutex
	images map[string][]image.Image
	calls  map[string]int
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{images: map[string][]image.Image{}, calls: map[string]int{}}
}

func (r *fakeResolver) add(item string, imgs ...image.Image) {
	r.images[item] = imgs
}

func (r *fakeResolver) Resolve(_ context.Context, item string) ([]image.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls[item]++
	imgs, ok := r.images[item]
	if !ok {
		return nil, &ResourceError{Input: item, Err: errors.New("no such item")}
	}
	return imgs, nil
}

func (r *fakeResolver) callCounts() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]int, len(r.calls))
	for k, v := range r.calls {
		out[k] = v
	}
	return out
}

// fakeBackend reports one QR code per tag on a taggedImage.
type fakeBackend struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (b *fakeBackend) Decode(_ context.Context, img image.Image, _ barcode.Options) ([]barcode.Result, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()

	if b.err != nil {
		return nil, b.err
	}
	tagged, ok := img.(*taggedImage)
	if !ok {
		return []barcode.Result{}, nil
	}
	results := make([]barcode.Result, 0, len(tagged.codes))
	for _, text := range tagged.codes {
		results = append(results, barcode.Result{Format: barcode.FormatQR, Text: text})
	}
	return results, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingProgress counts callback invocations.
type recordingProgress struct {
	mu        sync.Mutex
	started   int
	progress  int
	errors    int
	errorAt   []int
	completed int
	lastTotal int
}

func (p *recordingProgress) OnStart(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started++
	p.lastTotal = total
}

func (p *recordingProgress) OnProgress(int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.progress++
}

func (p *recordingProgress) OnComplete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed++
}

func (p *recordingProgress) OnError(current int, _ error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errors++
	p.errorAt = append(p.errorAt, current)
}
