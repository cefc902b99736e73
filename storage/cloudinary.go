package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// CloudinaryStore implements BlobStore on Cloudinary. Credentials come from
// CLOUDINARY_URL.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStore() (*CloudinaryStore, error) {
	cld, err := cloudinary.New()
	if err != nil {
		return nil, err
	}
	cld.Config.URL.Secure = true

	return &CloudinaryStore{cld: cld}, nil
}

func (s *CloudinaryStore) Store(ctx context.Context, content io.Reader, contentType, folder string) (BlobRef, error) {
	publicID := "service-history-" + uuid.NewString()

	resp, err := s.cld.Upload.Upload(ctx, content, uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return BlobRef{}, err
	}
	if resp.Error.Message != "" {
		return BlobRef{}, errors.New(resp.Error.Message)
	}

	return BlobRef{
		URL:       resp.SecureURL,
		PublicID:  resp.PublicID,
		CreatedAt: resp.CreatedAt,
	}, nil
}

// Delete destroys one blob. An unknown public id reports success so that
// rollback and cleanup retries stay safe.
func (s *CloudinaryStore) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}

	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return err
	}
	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("destroy %s: %s", publicID, resp.Result)
	}
	return nil
}

func (s *CloudinaryStore) List(ctx context.Context, folder string) ([]BlobRef, error) {
	var refs []BlobRef
	cursor := ""

	for {
		resp, err := s.cld.Admin.Assets(ctx, admin.AssetsParams{
			AssetType:    api.Image,
			DeliveryType: "upload",
			Prefix:       folder + "/",
			MaxResults:   500,
			NextCursor:   cursor,
		})
		if err != nil {
			return nil, err
		}

		for _, asset := range resp.Assets {
			refs = append(refs, BlobRef{
				URL:       asset.SecureURL,
				PublicID:  asset.PublicID,
				CreatedAt: asset.CreatedAt,
			})
		}

		if resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}

	return refs, nil
}
