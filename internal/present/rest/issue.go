package rest

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/totegamma/engaja"
	"github.com/totegamma/engaja/internal/domain"
	"github.com/totegamma/engaja/internal/present/rest/presenter"
	"github.com/totegamma/engaja/internal/usecase"
)

func (h *Handler) handleListIssues(c echo.Context) error {
	ctx, userID := requester(c)

	var issues []domain.Issue
	switch c.QueryParam("view") {
	case "public":
		issues = h.issue.PublicIssues(ctx)
	case "mine":
		issues = h.issue.AuthorIssues(ctx, userID)
	case "", "visible":
		issues = h.issue.VisibleIssues(ctx, userID)
	default:
		return presenter.BadRequestMessage(c, "invalid view parameter")
	}

	return presenter.OK(c, h.issueViews(issues, userID))
}

func (h *Handler) handleCreateIssue(c echo.Context) error {
	ctx, userID := requester(c)

	var req engaja.CreateIssueRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	attachments := make([]domain.Attachment, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		kind := domain.AttachmentType(strings.ToUpper(strings.TrimSpace(a.Type)))
		switch kind {
		case domain.AttachmentImage, domain.AttachmentVideo, domain.AttachmentAudio:
		default:
			return presenter.BadRequestMessage(c, "invalid attachment type: "+a.Type)
		}
		if a.Data == "" {
			return presenter.BadRequestMessage(c, "attachment data is required")
		}
		attachments = append(attachments, domain.Attachment{Type: kind, Name: a.Name, URL: a.Data})
	}

	issue, err := h.issue.Create(ctx, userID, usecase.CreateIssueInput{
		Title:             req.Title,
		Description:       req.Description,
		Category:          req.Category,
		IsAnonymous:       req.IsAnonymous,
		LiabilityAccepted: req.LiabilityAccepted,
		Location:          locationFromWire(req.Location),
		Attachments:       attachments,
		SkipUploads:       req.SkipUploads,
	})
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.Created(c, h.issueView(issue, userID))
}

func (h *Handler) handleGetIssue(c echo.Context) error {
	ctx, userID := requester(c)
	issue, err := h.issue.Get(ctx, userID, c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, h.issueView(issue, userID))
}

func (h *Handler) handleEditIssue(c echo.Context) error {
	ctx, userID := requester(c)

	var req engaja.UpdateIssueRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	patch := usecase.IssuePatch{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Category != nil {
		category, ok := domain.ParseCategory(*req.Category)
		if !ok {
			return presenter.BadRequestMessage(c, "unknown category")
		}
		patch.Category = &category
	}
	if req.Status != nil {
		status, ok := domain.ParseStatus(*req.Status)
		if !ok {
			return presenter.BadRequestMessage(c, "unknown status")
		}
		patch.Status = &status
	}
	if req.Location != nil {
		location := locationFromWire(*req.Location)
		patch.Location = &location
	}

	issue, err := h.issue.Edit(ctx, userID, c.Param("id"), patch)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, h.issueView(issue, userID))
}

func (h *Handler) handleDeleteIssue(c echo.Context) error {
	ctx, userID := requester(c)
	err := h.issue.Delete(ctx, userID, c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleSupport(c echo.Context) error {
	ctx, userID := requester(c)
	issue, supported, err := h.issue.ToggleSupport(ctx, userID, c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, engaja.SupportResult{Supported: supported, Issue: h.issueView(issue, userID)})
}

func (h *Handler) handleFlag(c echo.Context) error {
	ctx, userID := requester(c)

	var req engaja.FlagRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	issue, err := h.issue.Flag(ctx, userID, c.Param("id"), req.Reason)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, h.issueView(issue, userID))
}

func (h *Handler) handleComment(c echo.Context) error {
	ctx, userID := requester(c)

	var req engaja.CommentRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	issue, err := h.issue.Comment(ctx, userID, c.Param("id"), req.Text)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, h.issueView(issue, userID))
}

func (h *Handler) handleRespond(c echo.Context) error {
	ctx, userID := requester(c)

	var req engaja.CommentRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	issue, err := h.issue.Respond(ctx, userID, c.Param("id"), req.Text, req.AudioURL)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, h.issueView(issue, userID))
}

func (h *Handler) handleReview(c echo.Context) error {
	ctx, userID := requester(c)

	var req engaja.ReviewRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	decision, ok := domain.ParseModeration(req.Decision)
	if !ok {
		return presenter.BadRequestMessage(c, "unknown decision")
	}

	issue, err := h.issue.Review(ctx, userID, c.Param("id"), decision)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, h.issueView(issue, userID))
}

func (h *Handler) handleAdvance(c echo.Context) error {
	ctx, userID := requester(c)
	issue, err := h.issue.Advance(ctx, userID, c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, h.issueView(issue, userID))
}

func (h *Handler) handleClassify(c echo.Context) error {
	ctx := c.Request().Context()

	var req engaja.ClassifyRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	result, err := h.issue.Classify(ctx, req.Description)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, engaja.Classification{
		Category:             string(result.Category),
		Severity:             string(result.Severity),
		Summary:              result.Summary,
		ConstructiveFeedback: result.Feedback,
		SafetyFlag:           result.SafetyFlag,
		Fallback:             result.Fallback,
	})
}
