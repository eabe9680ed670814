package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/pkg/errors"

	"github.com/totegamma/engaja/internal/domain"
)

type UploaderConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

type assetAPI interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
}

// Uploader pushes data: attachments to cloudinary.
type Uploader struct {
	api    assetAPI
	folder string
}

func NewUploader(config UploaderConfig) (*Uploader, error) {
	if config.CloudName == "" || config.APIKey == "" || config.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials are not configured")
	}
	cld, err := cloudinary.NewFromParams(config.CloudName, config.APIKey, config.APISecret)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize cloudinary")
	}
	folder := config.Folder
	if folder == "" {
		folder = "engaja"
	}
	return &Uploader{api: &cld.Upload, folder: folder}, nil
}

func (u *Uploader) Upload(ctx context.Context, issueID string, attachment domain.Attachment) (string, error) {
	ctx, span := tracer.Start(ctx, "Gateway.Uploader.Upload")
	defer span.End()

	if !strings.HasPrefix(attachment.URL, "data:") {
		return attachment.URL, nil
	}

	result, err := u.api.Upload(ctx, attachment.URL, uploader.UploadParams{
		PublicID:     attachment.ID,
		Folder:       u.folder + "/" + issueID,
		ResourceType: "auto",
	})
	if err != nil {
		span.RecordError(err)
		return "", errors.Wrap(err, "upload failed")
	}
	if result.Error.Message != "" {
		err := fmt.Errorf("upload rejected: %s", result.Error.Message)
		span.RecordError(err)
		return "", err
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("upload returned no url")
	}
	return result.SecureURL, nil
}
