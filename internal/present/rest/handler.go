package rest

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/totegamma/engaja"
	"github.com/totegamma/engaja/internal/domain"
	"github.com/totegamma/engaja/internal/present/rest/middleware"
	"github.com/totegamma/engaja/internal/present/rest/presenter"
	"github.com/totegamma/engaja/internal/service"
	"github.com/totegamma/engaja/internal/usecase"
)

// MapConfig places issues without coordinates around the city center.
type MapConfig struct {
	CenterLat float64
	CenterLng float64
	PinSpread float64
}

type Handler struct {
	mapConfig MapConfig
	issue     *usecase.IssueUsecase
	voting    *usecase.VotingUsecase
	dashboard *usecase.DashboardUsecase
	users     *usecase.UserUsecase
	auth      *service.AuthService
	signal    *service.SignalService
}

func NewHandler(
	mapConfig MapConfig,
	issue *usecase.IssueUsecase,
	voting *usecase.VotingUsecase,
	dashboard *usecase.DashboardUsecase,
	users *usecase.UserUsecase,
	auth *service.AuthService,
	signal *service.SignalService,
) *Handler {
	return &Handler{
		mapConfig: mapConfig,
		issue:     issue,
		voting:    voting,
		dashboard: dashboard,
		users:     users,
		auth:      auth,
		signal:    signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	e.GET("/health", h.handleHealth)
	e.GET("/realtime", h.handleRealtime)

	api := e.Group("/api/v1", authMiddleware.IdentifyIdentity)
	api.POST("/session", h.handleSession)

	user := api.Group("", authMiddleware.RequireUser)
	user.GET("/me", h.handleMe)

	user.GET("/issues", h.handleListIssues)
	user.POST("/issues", h.handleCreateIssue)
	user.GET("/issues/:id", h.handleGetIssue)
	user.PATCH("/issues/:id", h.handleEditIssue)
	user.DELETE("/issues/:id", h.handleDeleteIssue)
	user.POST("/issues/:id/support", h.handleSupport)
	user.POST("/issues/:id/flag", h.handleFlag)
	user.POST("/issues/:id/comments", h.handleComment)
	user.POST("/issues/:id/responses", h.handleRespond)
	user.POST("/issues/:id/review", h.handleReview)
	user.POST("/issues/:id/advance", h.handleAdvance)
	user.POST("/classify", h.handleClassify)

	user.GET("/polls", h.handleListPolls)
	user.POST("/polls", h.handleCreatePoll)
	user.PUT("/polls/:id/active", h.handleSetPollActive)
	user.POST("/polls/:id/vote", h.handleVotePoll)

	user.GET("/bills", h.handleListBills)
	user.POST("/bills", h.handleCreateBill)
	user.PUT("/bills/:id/status", h.handleSetBillStatus)
	user.POST("/bills/:id/vote", h.handleVoteBill)

	user.GET("/dashboard", h.handleDashboard)
	user.GET("/dashboard/export.csv", h.handleExport)
}

func requester(c echo.Context) (context.Context, string) {
	ctx := c.Request().Context()
	return ctx, middleware.RequesterID(ctx)
}

func (h *Handler) handleHealth(c echo.Context) error {
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req engaja.SessionRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	role := domain.RoleCitizen
	if req.Role != "" {
		parsed, ok := domain.ParseRole(req.Role)
		if !ok {
			return presenter.BadRequestMessage(c, "unknown role")
		}
		role = parsed
	}

	user, err := h.users.Register(ctx, req.Name, role, req.Avatar)
	if err != nil {
		return presenter.Error(c, err)
	}

	token, err := h.auth.IssueToken(ctx, user)
	if err != nil {
		return presenter.InternalError(c, err)
	}

	return presenter.Created(c, engaja.SessionResponse{Token: token, User: userView(user)})
}

func (h *Handler) handleMe(c echo.Context) error {
	ctx, userID := requester(c)
	user, err := h.users.Get(ctx, userID)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, userView(user))
}

func (h *Handler) handleDashboard(c echo.Context) error {
	ctx, userID := requester(c)
	stats, err := h.dashboard.Stats(ctx, userID)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, stats)
}

func (h *Handler) handleExport(c echo.Context) error {
	ctx, userID := requester(c)

	var buf bytes.Buffer
	err := h.dashboard.ExportCSV(ctx, userID, &buf)
	if err != nil {
		return presenter.Error(c, err)
	}

	filename := "engaja-issues-" + time.Now().UTC().Format("2006-01-02") + ".csv"
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Request struct {
	Type     string   `json:"type"`
	Prefixes []string `json:"prefixes"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	if h.signal == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "realtime is not configured"})
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		zap.S().Errorw("failed to upgrade websocket", "error", err, "module", "socket")
		return err
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	input := make(chan []string)
	output := make(chan engaja.Event)

	go h.signal.Realtime(ctx, input, output)

	quit := make(chan struct{})

	go func() {
		defer close(quit)
		for {
			var req Request
			err := ws.ReadJSON(&req)
			if err != nil {
				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						zap.S().Debugw("websocket closed", "error", wsErr, "module", "socket")
					}
				} else {
					zap.S().Debugw("error reading message", "error", err, "module", "socket")
				}
				return
			}

			switch req.Type {
			case "listen":
				select {
				case input <- req.Prefixes:
				case <-ctx.Done():
					return
				}
				zap.S().Debugw("socket subscribe", "prefixes", req.Prefixes, "module", "socket")
			case "h": // heartbeat
			default:
				zap.S().Infow("unknown request type", "type", req.Type, "module", "socket")
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				zap.S().Warnw("error writing message", "error", err, "module", "socket")
				return nil
			}
		}
	}
}
