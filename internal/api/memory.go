package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"feynman_tutor/internal/services"
	"feynman_tutor/pkg"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app"
)

func (h *Handler) LearningPath(c context.Context, ctx *app.RequestContext) {
	var req pkg.PathRequest
	if err := decodeJSON(ctx, &req); err != nil {
		writeError(ctx, err)
		return
	}
	if strings.TrimSpace(req.Concept) == "" {
		writeBadRequest(ctx, "concept is required")
		return
	}

	path, err := h.Learning.Path(c, req.Concept, req.UserLevel)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, path)
}

// ReviewSchedule handles GET /api/memory/review?user_id=
func (h *Handler) ReviewSchedule(c context.Context, ctx *app.RequestContext) {
	schedule, err := h.Memory.ReviewSchedule(c, userID(ctx.Query("user_id")))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, schedule)
}

func (h *Handler) StartReview(c context.Context, ctx *app.RequestContext) {
	req, ok := h.reviewRequest(ctx)
	if !ok {
		return
	}
	session, err := h.Memory.StartReview(c, req.UserID, req.Concept)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, session)
}

func (h *Handler) SkipReview(c context.Context, ctx *app.RequestContext) {
	req, ok := h.reviewRequest(ctx)
	if !ok {
		return
	}
	session, err := h.Memory.SkipReview(c, req.UserID, req.Concept)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, session)
}

// SubmitReview handles POST /api/memory/review/submit. The concept must
// already have a record; unknown concepts get 404 and nothing is written.
func (h *Handler) SubmitReview(c context.Context, ctx *app.RequestContext) {
	req, ok := h.reviewRequest(ctx)
	if !ok {
		return
	}
	if req.PerformanceScore == nil {
		writeBadRequest(ctx, "performance_score is required")
		return
	}

	record, err := h.Memory.RecordReview(c, req.UserID, req.Concept, *req.PerformanceScore)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, pkg.ReviewResult{
		Status: "success",
		Record: record,
		Entry:  h.Memory.Scheduler().Entry(record, time.Now()),
	})
}

// AddRecord handles POST /api/memory/records: 201 when created, 200 when it existed
func (h *Handler) AddRecord(c context.Context, ctx *app.RequestContext) {
	req, ok := h.reviewRequest(ctx)
	if !ok {
		return
	}
	record, created, err := h.Memory.AddRecord(c, req.UserID, req.Concept)
	if err != nil {
		writeError(ctx, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	ctx.JSON(status, pkg.RecordResponse{Record: record, Created: created})
}

func (h *Handler) Stats(c context.Context, ctx *app.RequestContext) {
	stats, err := h.Memory.Stats(c, userID(ctx.Query("user_id")))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

func (h *Handler) Strength(c context.Context, ctx *app.RequestContext) {
	overview, err := h.Memory.Strengths(c, userID(ctx.Query("user_id")))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, overview)
}

// Healthz pings every registered dependency
func (h *Handler) Healthz(c context.Context, ctx *app.RequestContext) {
	resp := pkg.HealthResponse{Status: "ok", Checks: map[string]string{}}
	status := http.StatusOK
	for name, p := range h.Health {
		if err := p.Ping(c); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	ctx.JSON(status, resp)
}

// reviewRequest decodes the body, defaults user_id and requires a concept.
// It writes the error response itself.
func (h *Handler) reviewRequest(ctx *app.RequestContext) (pkg.ReviewRequest, bool) {
	var req pkg.ReviewRequest
	if err := decodeJSON(ctx, &req); err != nil {
		writeError(ctx, err)
		return req, false
	}
	if strings.TrimSpace(req.Concept) == "" {
		writeBadRequest(ctx, "concept is required")
		return req, false
	}
	req.UserID = userID(req.UserID)
	return req, true
}

func decodeJSON(ctx *app.RequestContext, dst any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return fmt.Errorf("%w: request body is required", services.ErrInvalidInput)
	}
	if err := sonic.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", services.ErrInvalidInput, err)
	}
	return nil
}

func userID(v string) string {
	if strings.TrimSpace(v) == "" {
		return pkg.DefaultUserID
	}
	return v
}
