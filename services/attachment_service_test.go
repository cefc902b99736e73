package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"customer-care-backend/storage"
)

// fakeBlobStore implements storage.BlobStore in memory.
type fakeBlobStore struct {
	mu         sync.Mutex
	objects    map[string]storage.BlobRef // by public id
	deletes    []string
	storeCalls int
	failAtCall int             // 1-based Store call that fails; 0 never
	failDelete map[string]bool // public ids whose Delete fails
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{
		objects:    make(map[string]storage.BlobRef),
		failDelete: make(map[string]bool),
	}
}

func (f *fakeBlobStore) Store(ctx context.Context, content io.Reader, contentType, folder string) (storage.BlobRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.storeCalls++
	if f.failAtCall != 0 && f.storeCalls == f.failAtCall {
		return storage.BlobRef{}, errors.New("upload failed")
	}

	publicID := fmt.Sprintf("%s/blob-%d", folder, f.storeCalls)
	ref := storage.BlobRef{
		URL:       "https://blobs.example.com/image/upload/v1/" + publicID + ".jpg",
		PublicID:  publicID,
		CreatedAt: time.Now(),
	}
	f.objects[publicID] = ref
	return ref, nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failDelete[publicID] {
		return errors.New("delete failed")
	}
	f.deletes = append(f.deletes, publicID)
	delete(f.objects, publicID)
	return nil
}

func (f *fakeBlobStore) List(ctx context.Context, folder string) ([]storage.BlobRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var refs []storage.BlobRef
	for _, ref := range f.objects {
		refs = append(refs, ref)
	}
	return refs, nil
}

func (f *fakeBlobStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func makeUploads(n int) []Upload {
	uploads := make([]Upload, n)
	for i := range uploads {
		uploads[i] = Upload{
			Filename:    fmt.Sprintf("photo-%d.jpg", i+1),
			ContentType: "image/jpeg",
			Content:     strings.NewReader("fake image bytes"),
		}
	}
	return uploads
}

func TestAttachAll_StoresEveryFileInOrder(t *testing.T) {
	blobs := newFakeBlobStore()
	svc := NewAttachmentService(blobs, "test-folder")

	refs, err := svc.AttachAll(context.Background(), makeUploads(3))
	if err != nil {
		t.Fatalf("AttachAll: %v", err)
	}
	if len(refs) != 3 {
		t.Fatalf("got %d refs, want 3", len(refs))
	}
	for i, ref := range refs {
		want := fmt.Sprintf("test-folder/blob-%d", i+1)
		if ref.PublicID != want {
			t.Errorf("ref %d public id = %q, want %q", i, ref.PublicID, want)
		}
	}
	if blobs.count() != 3 {
		t.Errorf("blob store holds %d objects, want 3", blobs.count())
	}
}

func TestAttachAll_RollsBackBatchOnFailure(t *testing.T) {
	blobs := newFakeBlobStore()
	blobs.failAtCall = 3
	svc := NewAttachmentService(blobs, "test-folder")

	_, err := svc.AttachAll(context.Background(), makeUploads(3))
	if err == nil {
		t.Fatal("expected error when the last upload fails")
	}

	// The two successful uploads of the batch must be gone.
	if blobs.count() != 0 {
		t.Errorf("blob store holds %d objects after failed batch, want 0", blobs.count())
	}
}

func TestAttachAll_NoFilesIsNoop(t *testing.T) {
	blobs := newFakeBlobStore()
	svc := NewAttachmentService(blobs, "test-folder")

	refs, err := svc.AttachAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("AttachAll: %v", err)
	}
	if len(refs) != 0 || blobs.storeCalls != 0 {
		t.Errorf("expected no uploads, got %d refs and %d store calls", len(refs), blobs.storeCalls)
	}
}

func TestDetachAll_ContinuesPastFailures(t *testing.T) {
	blobs := newFakeBlobStore()
	svc := NewAttachmentService(blobs, "test-folder")

	refs, err := svc.AttachAll(context.Background(), makeUploads(3))
	if err != nil {
		t.Fatalf("AttachAll: %v", err)
	}
	blobs.failDelete[refs[0].PublicID] = true

	urls := make([]string, len(refs))
	for i, ref := range refs {
		urls[i] = ref.URL
	}
	svc.DetachAll(context.Background(), urls)

	// The two deletable blobs must be gone despite the first one failing.
	if blobs.count() != 1 {
		t.Errorf("blob store holds %d objects, want 1 (the undeletable one)", blobs.count())
	}
}

func TestApplyRemovals_RemovesPresentURLs(t *testing.T) {
	blobs := newFakeBlobStore()
	svc := NewAttachmentService(blobs, "test-folder")

	refs, err := svc.AttachAll(context.Background(), makeUploads(3))
	if err != nil {
		t.Fatalf("AttachAll: %v", err)
	}

	current := []string{refs[0].URL, refs[1].URL, refs[2].URL}
	kept := svc.ApplyRemovals(context.Background(), current, []string{refs[1].URL})

	if len(kept) != 2 || kept[0] != refs[0].URL || kept[1] != refs[2].URL {
		t.Errorf("kept = %v, want first and last URL in order", kept)
	}
	if blobs.count() != 2 {
		t.Errorf("blob store holds %d objects, want 2", blobs.count())
	}
}

func TestApplyRemovals_UnknownURLIsIgnored(t *testing.T) {
	blobs := newFakeBlobStore()
	svc := NewAttachmentService(blobs, "test-folder")

	refs, err := svc.AttachAll(context.Background(), makeUploads(2))
	if err != nil {
		t.Fatalf("AttachAll: %v", err)
	}

	current := []string{refs[0].URL, refs[1].URL}
	kept := svc.ApplyRemovals(context.Background(), current,
		[]string{"https://blobs.example.com/image/upload/v1/test-folder/unknown.jpg"})

	if len(kept) != 2 {
		t.Errorf("kept = %v, want list unchanged", kept)
	}
	if len(blobs.deletes) != 0 {
		t.Errorf("got %d delete calls for an unknown URL, want 0", len(blobs.deletes))
	}
}
