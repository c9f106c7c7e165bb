package collector

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/xlei/mediagen-api/internal/media"
	"github.com/xlei/mediagen-api/internal/provider"
	"github.com/xlei/mediagen-api/internal/storage"
	"github.com/xlei/mediagen-api/internal/task"
)

// fakeProvider serves downloads from a map of URL to bytes.
type fakeProvider struct {
	blobs     map[string][]byte
	downloads int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) UploadAsset(context.Context, string, []byte) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeProvider) Submit(context.Context, provider.SubmitRequest) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeProvider) Poll(context.Context, string) (provider.PollResult, error) {
	return provider.PollResult{}, errors.New("not implemented")
}

func (f *fakeProvider) Balance(context.Context) (int64, error) { return 0, nil }

func (f *fakeProvider) Download(_ context.Context, url string) ([]byte, error) {
	f.downloads++
	data, ok := f.blobs[url]
	if !ok {
		return nil, errors.New("blob not found")
	}
	return data, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	data, err := media.EncodePNG(media.BlankImage(8, 8))
	if err != nil {
		t.Fatalf("building test png: %v", err)
	}
	return data
}

func TestCollect_OrderedDownloads(t *testing.T) {
	png := pngBytes(t)
	fp := &fakeProvider{blobs: map[string][]byte{
		"https://cdn/0.png": png,
		"https://cdn/1.png": png,
	}}
	c := New(fp, testLogger())

	assets, err := c.Collect(context.Background(), "run-1", task.KindImage,
		[]string{"https://cdn/0.png", "https://cdn/1.png"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(assets) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(assets))
	}
	for i, a := range assets {
		if a.Index != i {
			t.Errorf("expected asset %d to have index %d, got %d", i, i, a.Index)
		}
		if a.Kind != task.KindImage {
			t.Errorf("expected image kind, got %s", a.Kind)
		}
		if len(a.Bytes) == 0 {
			t.Errorf("expected asset %d to carry bytes", i)
		}
	}
	if assets[0].RemoteURL != "https://cdn/0.png" {
		t.Errorf("unexpected remote url %s", assets[0].RemoteURL)
	}
}

func TestCollect_AllOrNothing(t *testing.T) {
	png := pngBytes(t)
	fp := &fakeProvider{blobs: map[string][]byte{
		"https://cdn/0.png": png,
		// 1.png missing
	}}
	c := New(fp, testLogger())

	_, err := c.Collect(context.Background(), "run-1", task.KindImage,
		[]string{"https://cdn/0.png", "https://cdn/1.png"})
	if err == nil {
		t.Fatal("expected error when one download fails")
	}
}

func TestCollect_RejectsUndecodableImage(t *testing.T) {
	fp := &fakeProvider{blobs: map[string][]byte{
		"https://cdn/0.png": []byte("not a png"),
	}}
	c := New(fp, testLogger())

	_, err := c.Collect(context.Background(), "run-1", task.KindImage,
		[]string{"https://cdn/0.png"})
	if err == nil {
		t.Fatal("expected error for undecodable image bytes")
	}
}

func TestCollect_VideoSkipsImageDecode(t *testing.T) {
	fp := &fakeProvider{blobs: map[string][]byte{
		"https://cdn/out.mp4": []byte("binary video payload"),
	}}
	c := New(fp, testLogger())

	assets, err := c.Collect(context.Background(), "run-1", task.KindVideo,
		[]string{"https://cdn/out.mp4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assets) != 1 || assets[0].Kind != task.KindVideo {
		t.Errorf("unexpected assets %+v", assets)
	}
}

func TestCollect_CapsAssetCount(t *testing.T) {
	png := pngBytes(t)
	fp := &fakeProvider{blobs: map[string][]byte{
		"https://cdn/0.png": png,
		"https://cdn/1.png": png,
		"https://cdn/2.png": png,
	}}
	c := New(fp, testLogger(), WithMaxAssets(2))

	assets, err := c.Collect(context.Background(), "run-1", task.KindImage,
		[]string{"https://cdn/0.png", "https://cdn/1.png", "https://cdn/2.png"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assets) != 2 {
		t.Errorf("expected 2 assets after cap, got %d", len(assets))
	}
	if fp.downloads != 2 {
		t.Errorf("expected 2 downloads, got %d", fp.downloads)
	}
}

func TestCollect_NoURLs(t *testing.T) {
	c := New(&fakeProvider{}, testLogger())

	_, err := c.Collect(context.Background(), "run-1", task.KindImage, nil)
	if !errors.Is(err, ErrNoAssets) {
		t.Errorf("expected ErrNoAssets, got %v", err)
	}
}

func TestCollect_ArchivesAssets(t *testing.T) {
	png := pngBytes(t)
	fp := &fakeProvider{blobs: map[string][]byte{
		"https://cdn/0.png": png,
	}}

	archive, err := storage.NewLocalArchive(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := New(fp, testLogger(), WithArchive(archive))

	assets, err := c.Collect(context.Background(), "run-1", task.KindImage,
		[]string{"https://cdn/0.png"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assets[0].SourceRef == "" {
		t.Fatal("expected archived asset to carry a source ref")
	}

	stored, err := os.ReadFile(assets[0].SourceRef)
	if err != nil {
		t.Fatalf("reading archived file: %v", err)
	}
	if len(stored) != len(png) {
		t.Errorf("expected archived copy of %d bytes, got %d", len(png), len(stored))
	}
}
