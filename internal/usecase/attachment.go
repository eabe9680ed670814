package usecase

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/totegamma/engaja"
	"github.com/totegamma/engaja/internal/domain"
)

// uploadAll uploads local attachments concurrently. Each upload is bounded by
// the upload timeout; on failure the local representation is kept.
func (uc *IssueUsecase) uploadAll(ctx context.Context, issueID string, inputs []domain.Attachment, skip bool) []domain.Attachment {
	result := make([]domain.Attachment, len(inputs))
	for i, a := range inputs {
		if a.ID == "" {
			a.ID = engaja.NewID("att")
		}
		a.Local = strings.HasPrefix(a.URL, "data:")
		result[i] = a
	}

	if skip || uc.uploader == nil {
		return result
	}

	ctx, span := tracer.Start(ctx, "Issue.Usecase.UploadAttachments")
	defer span.End()

	var wg sync.WaitGroup
	for i := range result {
		if !result[i].Local {
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result[i] = uc.uploadOne(ctx, issueID, result[i])
		}(i)
	}
	wg.Wait()
	return result
}

func (uc *IssueUsecase) uploadOne(ctx context.Context, issueID string, a domain.Attachment) domain.Attachment {
	ctx, cancel := context.WithTimeout(ctx, uc.config.UploadTimeout)
	defer cancel()

	type uploaded struct {
		url string
		err error
	}
	done := make(chan uploaded, 1)
	go func() {
		url, err := uc.uploader.Upload(ctx, issueID, a)
		done <- uploaded{url: url, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			zap.S().Warnw("upload failed, keeping local attachment", "issue", issueID, "attachment", a.ID, "error", r.err)
			return a
		}
		a.URL = r.url
		a.Local = false
		return a
	case <-ctx.Done():
		zap.S().Warnw("upload timed out, keeping local attachment", "issue", issueID, "attachment", a.ID, "timeout", uc.config.UploadTimeout)
		return a
	}
}
