package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"feynman_tutor/pkg"

	"github.com/cloudwego/hertz/pkg/app"
)

// SearchConcepts handles GET /api/concept/search?q=
func (h *Handler) SearchConcepts(c context.Context, ctx *app.RequestContext) {
	results, err := h.Concepts.Search(c, ctx.Query("q"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, results)
}

func (h *Handler) GetConcept(c context.Context, ctx *app.RequestContext) {
	concept, err := h.Concepts.Get(c, ctx.Param("name"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, concept)
}

func (h *Handler) GetExplanation(c context.Context, ctx *app.RequestContext) {
	explanation, err := h.Concepts.Explanation(c, ctx.Param("name"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, explanation)
}

// GetExercises handles GET /api/concept/:name/exercises?difficulty=
func (h *Handler) GetExercises(c context.Context, ctx *app.RequestContext) {
	exercises, err := h.Concepts.Exercises(c, ctx.Param("name"), ctx.Query("difficulty"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, exercises)
}

func (h *Handler) GetKnowledgeGraph(c context.Context, ctx *app.RequestContext) {
	graph, err := h.Concepts.KnowledgeGraph(c, ctx.Param("name"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, graph)
}

// GetRelated handles GET /api/concept/:name/related?limit=
func (h *Handler) GetRelated(c context.Context, ctx *app.RequestContext) {
	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeBadRequest(ctx, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	related, err := h.Concepts.Related(c, ctx.Param("name"), limit)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, related)
}

// UpdateRelationship handles PUT /api/concept/:name/related/:other
func (h *Handler) UpdateRelationship(c context.Context, ctx *app.RequestContext) {
	var req pkg.RelationshipRequest
	if err := decodeJSON(ctx, &req); err != nil {
		writeError(ctx, err)
		return
	}
	if req.Weight == nil {
		writeBadRequest(ctx, "weight is required")
		return
	}

	from, to := ctx.Param("name"), ctx.Param("other")
	if err := h.Concepts.UpdateRelationship(c, from, to, *req.Weight); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, pkg.Relationship{From: from, To: to, Weight: *req.Weight})
}

// ImportConcepts handles POST /api/concept/import with a multipart "file"
func (h *Handler) ImportConcepts(c context.Context, ctx *app.RequestContext) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		writeBadRequest(ctx, "file is required")
		return
	}
	if fh.Size > h.MaxUploadBytes {
		writeStatus(ctx, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", h.MaxUploadBytes))
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(ctx, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer f.Close()

	result, err := h.Importer.Import(c, fh.Filename, f)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}
