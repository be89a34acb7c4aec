package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"skirmish/internal/app/auth"
	"skirmish/internal/app/lobby"
	"skirmish/internal/app/ports"
	"skirmish/internal/domain/game"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type matchDirectory interface {
	Matches() []lobby.MatchSummary
	Match(id string) (lobby.MatchSummary, game.Snapshot, bool)
	Waiting() []string
}

type tokenIssuer interface {
	Enabled() bool
	Issue(req auth.IssueRequest) (auth.IssueResponse, error)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

type Handler struct {
	Lobby    matchDirectory
	Tokens   tokenIssuer
	Sessions ports.ParticipantSessionRepository
	KPI      kpiSnapshotProvider
	// OriginPatterns restricts CORS to matching origin hosts; empty allows any.
	OriginPatterns []string
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware(h.OriginPatterns))
	s.GET("/healthz", h.healthz)
	s.GET("/ops/kpi", h.kpi)

	api := s.Group("/api")
	api.GET("/lobby", h.waiting)
	api.GET("/matches", h.matches)
	api.GET("/matches/:id", h.match)
	api.GET("/matches/:id/sessions", h.sessions)
	api.POST("/join-tokens", h.issueToken)
}

func (h Handler) healthz(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]string{"status": "ok"})
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

type waitingResponse struct {
	Waiting []string `json:"waiting"`
}

func (h Handler) waiting(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, waitingResponse{Waiting: h.Lobby.Waiting()})
}

type matchesResponse struct {
	Matches []lobby.MatchSummary `json:"matches"`
}

func (h Handler) matches(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, matchesResponse{Matches: h.Lobby.Matches()})
}

type matchResponse struct {
	Match    lobby.MatchSummary `json:"match"`
	Snapshot game.Snapshot      `json:"snapshot"`
}

func (h Handler) match(_ context.Context, ctx *app.RequestContext) {
	id := strings.TrimSpace(ctx.Param("id"))
	summary, snap, ok := h.Lobby.Match(id)
	if !ok {
		writeError(ctx, ports.ErrNotFound)
		return
	}
	ctx.JSON(consts.StatusOK, matchResponse{Match: summary, Snapshot: snap})
}

type sessionView struct {
	Nickname    string `json:"nickname"`
	Status      string `json:"status"`
	Suspensions int    `json:"suspensions"`
	UpdatedAt   int64  `json:"updated_at_unix"`
}

type sessionsResponse struct {
	MatchID  string        `json:"match_id"`
	Sessions []sessionView `json:"sessions"`
}

func (h Handler) sessions(c context.Context, ctx *app.RequestContext) {
	if h.Sessions == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "session store not configured")
		return
	}
	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "missing match id")
		return
	}
	rows, err := h.Sessions.ListByMatch(c, id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	if len(rows) == 0 {
		writeError(ctx, ports.ErrNotFound)
		return
	}
	resp := sessionsResponse{MatchID: id, Sessions: make([]sessionView, 0, len(rows))}
	for _, r := range rows {
		resp.Sessions = append(resp.Sessions, sessionView{
			Nickname:    r.Nickname,
			Status:      string(r.Status),
			Suspensions: r.Suspensions,
			UpdatedAt:   r.UpdatedAt.Unix(),
		})
	}
	ctx.JSON(consts.StatusOK, resp)
}

type issueTokenRequest struct {
	Nickname string `json:"nickname"`
}

func (h Handler) issueToken(_ context.Context, ctx *app.RequestContext) {
	if h.Tokens == nil || !h.Tokens.Enabled() {
		writeError(ctx, auth.ErrDisabled)
		return
	}
	var body issueTokenRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	nickname, err := lobby.NormalizeNickname(body.Nickname)
	if err != nil {
		writeError(ctx, err)
		return
	}
	resp, err := h.Tokens.Issue(auth.IssueRequest{Nickname: nickname})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, resp)
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, auth.ErrDisabled):
		writeErrorBody(ctx, consts.StatusNotFound, "join_tokens_disabled", err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		writeErrorBody(ctx, consts.StatusUnauthorized, "invalid_token", err.Error())
	case errors.Is(err, lobby.ErrInvalidNickname),
		errors.Is(err, auth.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, lobby.ErrNicknameTaken):
		writeErrorBody(ctx, consts.StatusConflict, "nickname_taken", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
