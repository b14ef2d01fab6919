// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/folio/internal/comments"
)

type submitCommentRequest struct {
	AuthorName string `json:"author_name"`
	Content    string `json:"content"`
}

type replyRequest struct {
	Content string `json:"content"`
}

// ItemComments handles GET /api/v1/items/{id}/comments: approved threads only.
func (h *Handler) ItemComments(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	threads, err := h.Comments.ListPublic(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondList(w, threads, start, false)
}

// SubmitComment handles POST /api/v1/items/{id}/comments. Visitor comments
// are held for moderation and the response says so with 202.
func (h *Handler) SubmitComment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req submitCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}
	item, err := h.Items.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	c, err := h.Comments.Submit(r.Context(), comments.NewComment{
		ItemID:     item.ID,
		ItemKind:   item.Kind,
		AuthorName: req.AuthorName,
		Content:    req.Content,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	status := http.StatusAccepted
	if c.Approved {
		status = http.StatusCreated
		h.commentPublished(c.ItemID, c.ID)
	}
	respondData(w, status, c, start, false)
}

// AdminComments handles GET /api/v1/admin/comments?status=&q=&item_id=&limit=
func (h *Handler) AdminComments(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()
	status, err := comments.ParseStatus(q.Get("status"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	found, err := h.Comments.Search(r.Context(), comments.AdminFilter{
		Status: status,
		Query:  q.Get("q"),
		ItemID: q.Get("item_id"),
		Limit:  clampLimit(getIntParam(r, "limit", defaultItemLimit), defaultItemLimit),
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondList(w, found, start, false)
}

// AdminItemThreads handles GET /api/v1/admin/items/{id}/comments: every
// thread on the item, pending ones included.
func (h *Handler) AdminItemThreads(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	threads, err := h.Comments.ListAdmin(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondList(w, threads, start, false)
}

// PendingComments handles GET /api/v1/admin/comments/pending, oldest first.
func (h *Handler) PendingComments(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	pending, err := h.Comments.PendingQueue(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondList(w, pending, start, false)
}

// ApproveComment handles POST /api/v1/admin/comments/{id}/approve.
func (h *Handler) ApproveComment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	c, err := h.Comments.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	h.commentPublished(c.ItemID, c.ID)
	respondData(w, http.StatusOK, c, start, false)
}

// RejectComment handles DELETE /api/v1/admin/comments/{id}.
func (h *Handler) RejectComment(w http.ResponseWriter, r *http.Request) {
	if err := h.Comments.Reject(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondErr(w, r, err)
		return
	}
	h.InvalidateItems()
	w.WriteHeader(http.StatusNoContent)
}

// ReplyComment handles POST /api/v1/admin/comments/{id}/reply.
func (h *Handler) ReplyComment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req replyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}
	c, err := h.Comments.Reply(r.Context(), chi.URLParam(r, "id"), req.Content)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	h.commentPublished(c.ItemID, c.ID)
	respondData(w, http.StatusCreated, c, start, false)
}

// commentPublished drops stale listings and tells connected clients.
func (h *Handler) commentPublished(itemID, commentID string) {
	h.InvalidateItems()
	h.Hub.CommentApproved(itemID, commentID)
}
