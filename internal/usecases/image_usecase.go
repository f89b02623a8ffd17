package usecases

import (
	"context"
	"path/filepath"

	"loremaster/internal/access"
	"loremaster/internal/apperr"
	"loremaster/internal/entities"
	"loremaster/internal/interfaces"
)

// ImageFile is a stored image ready to be served.
type ImageFile struct {
	Path     string
	MimeType string
	Name     string
}

// ImageUsecase attaches uploaded images to entities. Upload and delete are
// DM-only; reading requires the owning entity to be visible.
type ImageUsecase struct {
	images interfaces.ImageStore
	files  interfaces.FileStorage
	lookup interfaces.EntityLookup
}

func NewImageUsecase(images interfaces.ImageStore, files interfaces.FileStorage, lookup interfaces.EntityLookup) *ImageUsecase {
	return &ImageUsecase{images: images, files: files, lookup: lookup}
}

func (uc *ImageUsecase) List(ctx context.Context, v access.Viewer, t entities.EntityType, id int) ([]entities.EntityImage, error) {
	if err := requireVisibleEntity(ctx, uc.lookup, v, t, id); err != nil {
		return nil, err
	}
	return uc.images.ListForEntity(ctx, v.CampaignID, t, id)
}

// Upload stores data and records it. The file is removed again if the row
// cannot be written.
func (uc *ImageUsecase) Upload(ctx context.Context, v access.Viewer, t entities.EntityType, id int, originalName string, data []byte) (*entities.EntityImage, error) {
	if err := requireManagedEntity(ctx, uc.lookup, v, t, id); err != nil {
		return nil, err
	}
	rel, mime, err := uc.files.Save(v.CampaignID, t, id, data)
	if err != nil {
		return nil, err
	}
	img := &entities.EntityImage{
		CampaignID:   v.CampaignID,
		EntityType:   t,
		EntityID:     id,
		FilePath:     rel,
		OriginalName: baseName(originalName),
		MimeType:     mime,
		SizeBytes:    int64(len(data)),
		UploadedBy:   v.UserID,
	}
	if err := uc.images.Create(ctx, img); err != nil {
		_ = uc.files.Remove(rel)
		return nil, err
	}
	return img, nil
}

// Open resolves an image for download after checking the owning entity.
func (uc *ImageUsecase) Open(ctx context.Context, v access.Viewer, imageID int) (*ImageFile, error) {
	img, err := uc.images.GetByID(ctx, v.CampaignID, imageID)
	if err != nil {
		return nil, err
	}
	if err := requireVisibleEntity(ctx, uc.lookup, v, img.EntityType, img.EntityID); err != nil {
		if apperr.CodeOf(err) == apperr.CodeNotFound {
			return nil, hiddenFrom("image")
		}
		return nil, err
	}
	path, err := uc.files.Open(img.FilePath)
	if err != nil {
		return nil, err
	}
	return &ImageFile{Path: path, MimeType: img.MimeType, Name: img.OriginalName}, nil
}

func (uc *ImageUsecase) Delete(ctx context.Context, v access.Viewer, imageID int) error {
	if err := access.RequireDM(v); err != nil {
		return err
	}
	img, err := uc.images.GetByID(ctx, v.CampaignID, imageID)
	if err != nil {
		return err
	}
	if err := uc.images.Delete(ctx, v.CampaignID, imageID); err != nil {
		return err
	}
	return uc.files.Remove(img.FilePath)
}

func baseName(name string) string {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." {
		return ""
	}
	return base
}
