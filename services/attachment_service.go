package services

import (
	"context"
	"io"
	"log"

	"customer-care-backend/models"
	"customer-care-backend/storage"
)

// Upload is one raw file handed in by the transport layer.
type Upload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// AttachmentService turns uploaded files into committed blob URLs and
// guarantees a failed batch leaves nothing behind in the blob store.
type AttachmentService struct {
	blobs  storage.BlobStore
	folder string
}

func NewAttachmentService(blobs storage.BlobStore, folder string) *AttachmentService {
	return &AttachmentService{blobs: blobs, folder: folder}
}

func (s *AttachmentService) Folder() string {
	return s.folder
}

// AttachAll stores every upload, all-or-nothing. If any store call fails the
// batch's earlier successes are deleted before the error is returned.
func (s *AttachmentService) AttachAll(ctx context.Context, uploads []Upload) ([]storage.BlobRef, error) {
	if len(uploads) == 0 {
		return nil, nil
	}

	refs := make([]storage.BlobRef, 0, len(uploads))
	for _, upload := range uploads {
		ref, err := s.blobs.Store(ctx, upload.Content, upload.ContentType, s.folder)
		if err != nil {
			s.Rollback(ctx, refs)
			return nil, &models.StorageError{Op: "upload", Err: err}
		}
		refs = append(refs, ref)
	}

	return refs, nil
}

// Rollback deletes every blob of a failed batch. It must run even when the
// request context was already canceled, so the blobs of an abandoned request
// do not linger.
func (s *AttachmentService) Rollback(ctx context.Context, refs []storage.BlobRef) {
	ctx = context.WithoutCancel(ctx)
	for _, ref := range refs {
		if err := s.blobs.Delete(ctx, ref.PublicID); err != nil {
			log.Printf("Failed to roll back uploaded blob %s: %v", ref.PublicID, err)
		}
	}
}

// DetachAll deletes the blobs behind a list of attachment URLs. Best effort:
// one failed delete is logged and does not stop the rest, and never blocks
// the owning record's mutation.
func (s *AttachmentService) DetachAll(ctx context.Context, urls []string) {
	for _, url := range urls {
		publicID := storage.ExtractPublicID(url)
		if err := s.blobs.Delete(ctx, publicID); err != nil {
			log.Printf("Failed to delete attachment %s: %v", url, err)
		}
	}
}

// ApplyRemovals returns current minus toRemove, preserving order, and
// detaches the blobs of the URLs actually removed. URLs not present in
// current are ignored and trigger no delete call.
func (s *AttachmentService) ApplyRemovals(ctx context.Context, current, toRemove []string) []string {
	if len(toRemove) == 0 {
		return current
	}

	removeSet := make(map[string]struct{}, len(toRemove))
	for _, url := range toRemove {
		removeSet[url] = struct{}{}
	}

	kept := make([]string, 0, len(current))
	var removed []string
	for _, url := range current {
		if _, ok := removeSet[url]; ok {
			removed = append(removed, url)
		} else {
			kept = append(kept, url)
		}
	}

	if len(removed) > 0 {
		s.DetachAll(ctx, removed)
	}
	return kept
}
