package uploader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/xlei/mediagen-api/internal/provider"
)

// fakeProvider implements provider.Provider with canned upload behavior.
type fakeProvider struct {
	failAt   int // index of the upload that fails, -1 for none
	uploaded []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) UploadAsset(_ context.Context, name string, _ []byte) (string, error) {
	if f.failAt >= 0 && len(f.uploaded) == f.failAt {
		return "", errors.New("upstream rejected")
	}
	url := fmt.Sprintf("https://cdn/%s", name)
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeProvider) Submit(context.Context, provider.SubmitRequest) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeProvider) Poll(context.Context, string) (provider.PollResult, error) {
	return provider.PollResult{}, errors.New("not implemented")
}

func (f *fakeProvider) Balance(context.Context) (int64, error) { return 0, nil }

func (f *fakeProvider) Download(context.Context, string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestUploadAll_PreservesOrder(t *testing.T) {
	fp := &fakeProvider{failAt: -1}
	up := New(fp, testLogger())

	inputs := []Input{
		{Name: "a.png", Data: []byte{1}},
		{Name: "b.png", Data: []byte{2}},
		{Name: "c.png", Data: []byte{3}},
	}
	refs, err := up.UploadAll(context.Background(), inputs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"https://cdn/a.png", "https://cdn/b.png", "https://cdn/c.png"}
	if len(refs) != len(want) {
		t.Fatalf("expected %d refs, got %d", len(want), len(refs))
	}
	for i, ref := range want {
		if refs[i] != ref {
			t.Errorf("expected ref %d to be %s, got %s", i, ref, refs[i])
		}
	}
}

func TestUploadAll_FailFastCarriesIndex(t *testing.T) {
	fp := &fakeProvider{failAt: 1}
	up := New(fp, testLogger())

	inputs := []Input{
		{Name: "a.png", Data: []byte{1}},
		{Name: "b.png", Data: []byte{2}},
		{Name: "c.png", Data: []byte{3}},
	}
	_, err := up.UploadAll(context.Background(), inputs)
	if err == nil {
		t.Fatal("expected error")
	}

	var upErr *Error
	if !errors.As(err, &upErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if upErr.Index != 1 {
		t.Errorf("expected failing index 1, got %d", upErr.Index)
	}
	if upErr.Name != "b.png" {
		t.Errorf("expected failing name b.png, got %s", upErr.Name)
	}

	// The failure must stop the sequence before the third upload.
	if len(fp.uploaded) != 1 {
		t.Errorf("expected 1 completed upload before failure, got %d", len(fp.uploaded))
	}
}

func TestUploadAll_Empty(t *testing.T) {
	up := New(&fakeProvider{failAt: -1}, testLogger())

	_, err := up.UploadAll(context.Background(), nil)
	if !errors.Is(err, ErrNoAssets) {
		t.Errorf("expected ErrNoAssets, got %v", err)
	}
}
