package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/news-api/internal/application/article"
	"github.com/news-api/internal/domain"
)

// maxImageSize bounds multipart image uploads.
const maxImageSize = 10 << 20

// ArticleHandler handles public, writer and admin article endpoints.
type ArticleHandler struct {
	svc article.Service
}

func NewArticleHandler(svc article.Service) *ArticleHandler { return &ArticleHandler{svc: svc} }

func filterFromQuery(r *http.Request) domain.ArticleFilter {
	q := r.URL.Query()
	return domain.ArticleFilter{
		Status:     q.Get("status"),
		AuthorID:   q.Get("author_id"),
		CategoryID: q.Get("category_id"),
		TagID:      q.Get("tag_id"),
	}
}

func (h *ArticleHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListPublished(r.Context(), filterFromQuery(r))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ArticleHandler) View(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.View(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *ArticleHandler) Search(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Search(r.Context(), r.URL.Query().Get("keyword"), filterFromQuery(r))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Top serves the most read articles; ?count defaults to five.
func (h *ArticleHandler) Top(w http.ResponseWriter, r *http.Request) {
	count := article.DefaultTopCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "count must be a positive integer")
			return
		}
		count = n
	}
	items, err := h.svc.Top(r.Context(), count)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ArticleHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListAll(r.Context(), filterFromQuery(r))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ArticleHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	items, err := h.svc.ListOwn(r.Context(), p, r.URL.Query().Get("status"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ArticleHandler) GetForEdit(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	a, err := h.svc.GetForEdit(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var input domain.ArticleInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	a, err := h.svc.Create(r.Context(), p, input)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var input domain.ArticleInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	a, err := h.svc.Update(r.Context(), p, chi.URLParam(r, "id"), input)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "article deleted"})
}

func (h *ArticleHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var input domain.ArticleStatusInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	a, err := h.svc.UpdateStatus(r.Context(), p, chi.URLParam(r, "id"), input.Status)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// UploadImage accepts a multipart form with an "image" file and optional
// "caption" field.
func (h *ArticleHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize+(1<<20))
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	// The declared Content-Type is ignored in favour of the sniffed one.
	mt, err := mimetype.DetectReader(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable image")
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		httpError(w, err)
		return
	}
	img, err := h.svc.UploadImage(r.Context(), p, chi.URLParam(r, "id"), article.UploadInput{
		Reader:      file,
		Filename:    header.Filename,
		ContentType: mt.String(),
		Size:        header.Size,
		Caption:     r.FormValue("caption"),
	})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, img)
}

func (h *ArticleHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.svc.ListImages(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, images)
}

func (h *ArticleHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteImage(r.Context(), p, chi.URLParam(r, "id"), chi.URLParam(r, "imageID")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "image deleted"})
}
