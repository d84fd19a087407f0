package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/news-api/internal/application/comment"
	"github.com/news-api/internal/domain"
)

// CommentHandler handles comment and reply endpoints.
type CommentHandler struct {
	svc comment.Service
}

func NewCommentHandler(svc comment.Service) *CommentHandler { return &CommentHandler{svc: svc} }

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var input domain.CommentInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	c, err := h.svc.Create(r.Context(), p, chi.URLParam(r, "id"), input)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CommentHandler) Reply(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var input domain.ReplyInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	rep, err := h.svc.Reply(r.Context(), p, chi.URLParam(r, "commentID"), input)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rep)
}

func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteComment(r.Context(), p, chi.URLParam(r, "commentID")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "comment deleted"})
}

func (h *CommentHandler) DeleteReply(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteReply(r.Context(), p, chi.URLParam(r, "replyID")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "reply deleted"})
}

func (h *CommentHandler) LikeComment(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.LikeComment(r.Context(), chi.URLParam(r, "commentID")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "liked"})
}

func (h *CommentHandler) LikeReply(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.LikeReply(r.Context(), chi.URLParam(r, "replyID")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "liked"})
}

func (h *CommentHandler) GetComment(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetComment(r.Context(), chi.URLParam(r, "commentID"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var input domain.CommentInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	c, err := h.svc.UpdateComment(r.Context(), p, chi.URLParam(r, "commentID"), input)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CommentHandler) SetCommentStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var input domain.ModerationInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	c, err := h.svc.SetCommentStatus(r.Context(), p, chi.URLParam(r, "commentID"), *input.Status)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CommentHandler) ListReplies(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListReplies(r.Context(), chi.URLParam(r, "commentID"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *CommentHandler) ListChildReplies(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListChildReplies(r.Context(), chi.URLParam(r, "replyID"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *CommentHandler) GetReply(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.GetReply(r.Context(), chi.URLParam(r, "replyID"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *CommentHandler) UpdateReply(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var input domain.ReplyInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	rep, err := h.svc.UpdateReply(r.Context(), p, chi.URLParam(r, "replyID"), input)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *CommentHandler) SetReplyStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var input domain.ModerationInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	rep, err := h.svc.SetReplyStatus(r.Context(), p, chi.URLParam(r, "replyID"), *input.Status)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
