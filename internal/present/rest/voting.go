package rest

import (
	"github.com/labstack/echo/v4"

	"github.com/totegamma/engaja"
	"github.com/totegamma/engaja/internal/domain"
	"github.com/totegamma/engaja/internal/present/rest/presenter"
	"github.com/totegamma/engaja/internal/usecase"
)

func (h *Handler) handleListPolls(c echo.Context) error {
	ctx, userID := requester(c)
	polls := h.voting.Polls(ctx)
	views := make([]engaja.PollView, 0, len(polls))
	for _, p := range polls {
		views = append(views, pollView(p, userID))
	}
	return presenter.OK(c, views)
}

func (h *Handler) handleCreatePoll(c echo.Context) error {
	ctx, userID := requester(c)

	var req engaja.CreatePollRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	poll, err := h.voting.CreatePoll(ctx, userID, usecase.CreatePollInput{
		Question: req.Question,
		Options:  req.Options,
		Points:   req.Points,
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, pollView(poll, userID))
}

func (h *Handler) handleSetPollActive(c echo.Context) error {
	ctx, userID := requester(c)

	var req struct {
		Active bool `json:"active"`
	}
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	poll, err := h.voting.SetPollActive(ctx, userID, c.Param("id"), req.Active)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, pollView(poll, userID))
}

func (h *Handler) handleVotePoll(c echo.Context) error {
	ctx, userID := requester(c)

	var req engaja.PollVoteRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	poll, voted, err := h.voting.VotePoll(ctx, userID, c.Param("id"), req.OptionID)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, engaja.VoteResult[engaja.PollView]{Voted: voted, Entity: pollView(poll, userID)})
}

func (h *Handler) handleListBills(c echo.Context) error {
	ctx, userID := requester(c)
	bills := h.voting.Bills(ctx)
	views := make([]engaja.BillView, 0, len(bills))
	for _, b := range bills {
		views = append(views, billView(b, userID))
	}
	return presenter.OK(c, views)
}

func (h *Handler) handleCreateBill(c echo.Context) error {
	ctx, userID := requester(c)

	var req engaja.CreateBillRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	bill, err := h.voting.CreateBill(ctx, userID, usecase.CreateBillInput{
		Code:        req.Code,
		Title:       req.Title,
		Description: req.Description,
		Author:      req.Author,
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, billView(bill, userID))
}

func (h *Handler) handleSetBillStatus(c echo.Context) error {
	ctx, userID := requester(c)

	var req engaja.BillStatusRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	status, ok := domain.ParseBillStatus(req.Status)
	if !ok {
		return presenter.BadRequestMessage(c, "unknown bill status")
	}

	bill, err := h.voting.SetBillStatus(ctx, userID, c.Param("id"), status)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, billView(bill, userID))
}

func (h *Handler) handleVoteBill(c echo.Context) error {
	ctx, userID := requester(c)

	var req engaja.BillVoteRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	choice := domain.BillChoice(req.Choice)
	if choice != domain.ChoiceFavor && choice != domain.ChoiceAgainst {
		return presenter.BadRequestMessage(c, "choice must be FAVOR or AGAINST")
	}

	bill, voted, err := h.voting.VoteBill(ctx, userID, c.Param("id"), choice)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, engaja.VoteResult[engaja.BillView]{Voted: voted, Entity: billView(bill, userID)})
}
