package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/news-api/internal/application/category"
	"github.com/news-api/internal/application/tag"
	"github.com/news-api/internal/domain"
)

// CategoryHandler handles category endpoints.
type CategoryHandler struct {
	svc category.Service
}

func NewCategoryHandler(svc category.Service) *CategoryHandler { return &CategoryHandler{svc: svc} }

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.CategoryInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	c, err := h.svc.Create(r.Context(), input)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input domain.CategoryInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	c, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "category deleted"})
}

// TagHandler handles tag endpoints.
type TagHandler struct {
	svc tag.Service
}

func NewTagHandler(svc tag.Service) *TagHandler { return &TagHandler{svc: svc} }

func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *TagHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.TagInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	t, err := h.svc.Create(r.Context(), input)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input domain.TagInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	t, err := h.svc.Rename(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "tag deleted"})
}
