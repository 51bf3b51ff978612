package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"dealership_reviews/internal/app"
	"dealership_reviews/internal/domain"
)

// largest accepted insert_review body
const maxBodyBytes = 1 << 20

const welcomeText = "Welcome to the Dealership Reviews API"

type Handlers struct {
	Q *app.QueryService
	I *app.InsertService
}

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(welcomeText))
	})
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Get("/fetchReviews", h.fetchReviews)
	s.mux.Get("/fetchReviews/dealer/{id}", h.fetchDealerReviews)
	s.mux.Get("/fetchDealers", h.fetchDealers)
	s.mux.Get("/fetchDealers/{state}", h.fetchDealersByState)
	s.mux.Get("/fetchDealer/{id}", h.fetchDealer)
	s.mux.Post("/insert_review", h.insertReview)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg, detail string) {
	writeJSON(w, status, errorBody{Error: msg, Detail: detail})
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return "", nil, err
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body, nil
}

// writeCollection answers a lookup. Every failure collapses into one generic 500.
func writeCollection[T any](w http.ResponseWriter, r *http.Request, items []T, err error) {
	if err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("fetch failed")
		writeError(w, http.StatusInternalServerError, "Error fetching documents", "")
		return
	}

	etag, body, err := calcETagAndBody(items)
	if err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("encode failed")
		writeError(w, http.StatusInternalServerError, "Error fetching documents", "")
		return
	}
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write body")
	}
}

// pathParam returns the decoded value of a route parameter. chi matches on
// URL.RawPath when it is set, so only then is the segment still escaped.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v
	}
	if dec, err := url.PathUnescape(v); err == nil {
		return dec
	}
	return v
}

func (h *Handlers) fetchReviews(w http.ResponseWriter, r *http.Request) {
	rs, err := h.Q.ListReviews(r.Context())
	writeCollection(w, r, rs, err)
}

func (h *Handlers) fetchDealerReviews(w http.ResponseWriter, r *http.Request) {
	rs, err := h.Q.ListReviewsByDealer(r.Context(), pathParam(r, "id"))
	writeCollection(w, r, rs, err)
}

func (h *Handlers) fetchDealers(w http.ResponseWriter, r *http.Request) {
	ds, err := h.Q.ListDealerships(r.Context())
	writeCollection(w, r, ds, err)
}

func (h *Handlers) fetchDealersByState(w http.ResponseWriter, r *http.Request) {
	ds, err := h.Q.ListDealershipsByState(r.Context(), pathParam(r, "state"))
	writeCollection(w, r, ds, err)
}

func (h *Handlers) fetchDealer(w http.ResponseWriter, r *http.Request) {
	ds, err := h.Q.FindDealerships(r.Context(), pathParam(r, "id"))
	writeCollection(w, r, ds, err)
}

// insertReview reads the body regardless of Content-Type.
func (h *Handlers) insertReview(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid review payload", "body could not be read")
		return
	}

	rv, err := h.I.InsertRaw(r.Context(), body)
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Invalid review payload", err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msg("insert review failed")
		writeError(w, http.StatusInternalServerError, "Error inserting review", "")
		return
	}

	log.Info().Int64("id", rv.ID).Msg("review inserted")
	writeJSON(w, http.StatusOK, rv)
}
