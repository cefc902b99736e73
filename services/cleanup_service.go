package services

import (
	"context"
	"log"
	"time"

	"customer-care-backend/storage"

	"github.com/robfig/cron/v3"
)

// orphanGraceWindow keeps blobs of in-flight requests out of the sweep.
const orphanGraceWindow = time.Hour

// CleanupService periodically deletes blobs in the attachment folder that no
// history record references anymore. Normal create/update failures roll
// their own uploads back; the sweep catches what a crash between upload and
// rollback left behind.
type CleanupService struct {
	store  *storage.EntityStore
	blobs  storage.BlobStore
	folder string
}

func NewCleanupService(store *storage.EntityStore, blobs storage.BlobStore, folder string) *CleanupService {
	return &CleanupService{store: store, blobs: blobs, folder: folder}
}

func (s *CleanupService) StartScheduler() {
	c := cron.New()

	if _, err := c.AddFunc("@daily", func() {
		if err := s.SweepOrphans(context.Background()); err != nil {
			log.Printf("Orphan sweep failed: %v", err)
		}
	}); err != nil {
		log.Printf("Failed to schedule orphan sweep: %v", err)
		return
	}

	c.Start()
	log.Println("Orphan sweep scheduler started")
}

// SweepOrphans lists the attachment folder, diffs it against every image URL
// stored on a history record, and deletes unreferenced blobs older than the
// grace window.
func (s *CleanupService) SweepOrphans(ctx context.Context) error {
	blobs, err := s.blobs.List(ctx, s.folder)
	if err != nil {
		return err
	}

	referenced, err := s.store.AllHistoryImages(ctx)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-orphanGraceWindow)
	removed := 0
	for _, blob := range blobs {
		if _, ok := referenced[blob.URL]; ok {
			continue
		}
		if blob.CreatedAt.After(cutoff) {
			continue
		}
		if err := s.blobs.Delete(ctx, blob.PublicID); err != nil {
			log.Printf("Failed to delete orphaned blob %s: %v", blob.PublicID, err)
			continue
		}
		removed++
	}

	log.Printf("Orphan sweep completed: %d blobs checked, %d removed", len(blobs), removed)
	return nil
}
