package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// deliveryTransformation is baked into every returned URL so clients always
// fetch a web-sized webp regardless of what was uploaded.
const deliveryTransformation = "q_auto,f_webp,w_1280"

// MediaService uploads binary assets to Cloudinary and hands back delivery
// URLs. Storage and transformation both happen on the asset host; this
// service never keeps bytes locally.
type MediaService struct {
	cld *cloudinary.Cloudinary
}

func NewMediaService(cloudinaryURL string) (*MediaService, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &MediaService{cld: cld}, nil
}

// UploadImage stores one multipart image in the given folder and returns its
// transformed delivery URL.
func (m *MediaService) UploadImage(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	resp, err := m.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder: folder,
	})
	if err != nil {
		return "", fmt.Errorf("upload to cloudinary: %w", err)
	}

	asset, err := m.cld.Image(resp.PublicID)
	if err != nil {
		return "", fmt.Errorf("build delivery url: %w", err)
	}
	asset.Transformation = deliveryTransformation

	url, err := asset.String()
	if err != nil {
		return "", fmt.Errorf("render delivery url: %w", err)
	}
	return url, nil
}
