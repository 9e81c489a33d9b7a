package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"staysync/internal/app"
	"staysync/internal/domain"
)

type Handlers struct{ S *app.Service }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/match", h.match)
	s.mux.Get("/v1/compare", h.compare)
	s.mux.Get("/v1/timeline", h.timeline)
	s.mux.Get("/v1/sites", h.sites)
	s.mux.Patch("/v1/restaurant-bookings/{id}", h.updateBooking)
	s.mux.Post("/v1/restaurant-bookings/{id}/exclude", h.excludeMatch)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	var ce *domain.ConfigError
	var ue *domain.UpstreamError
	switch {
	case errors.As(err, &ve):
		writeProblem(w, http.StatusBadRequest, "Invalid Request", ve.Msg)
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "no such booking")
	case errors.As(err, &ce):
		writeProblem(w, http.StatusInternalServerError, "Configuration Error", ce.Msg)
	case errors.As(err, &ue):
		writeProblem(w, http.StatusBadGateway, "Upstream Unavailable", ue.Error())
	default:
		writeProblem(w, http.StatusInternalServerError, "Internal Error", err.Error())
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func queryInt64(r *http.Request, key string) (int64, bool) {
	n, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	return n, err == nil
}

func queryDate(r *http.Request, key string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", r.URL.Query().Get(key))
	return t, err == nil
}

func refresh(r *http.Request) bool {
	return r.URL.Query().Get("refresh") == "1"
}

func (h *Handlers) match(w http.ResponseWriter, r *http.Request) {
	id, ok := queryInt64(r, "booking_id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "booking_id must be a number")
		return
	}
	out, err := h.S.MatchStay(r.Context(), id, refresh(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeCacheable(w, r, out)
}

func (h *Handlers) compare(w http.ResponseWriter, r *http.Request) {
	hotelID, ok := queryInt64(r, "hotel_id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "hotel_id must be a number")
		return
	}
	restaurantID, ok := queryInt64(r, "restaurant_id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "restaurant_id must be a number")
		return
	}
	date, ok := queryDate(r, "date")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "date must be YYYY-MM-DD")
		return
	}
	out, err := h.S.Compare(r.Context(), hotelID, restaurantID, date, refresh(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeCacheable(w, r, out)
}

func (h *Handlers) timeline(w http.ResponseWriter, r *http.Request) {
	date, ok := queryDate(r, "date")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "date must be YYYY-MM-DD")
		return
	}
	out, err := h.S.Timeline(r.Context(), date, refresh(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeCacheable(w, r, out)
}

func (h *Handlers) sites(w http.ResponseWriter, r *http.Request) {
	out, err := h.S.Sites(r.Context(), refresh(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeCacheable(w, r, out)
}

type updateRequest struct {
	Name   *string           `json:"name"`
	Phone  *string           `json:"phone"`
	Email  *string           `json:"email"`
	Covers *int              `json:"covers"`
	Status *string           `json:"status"`
	Custom map[string]string `json:"custom_fields"`
}

func (h *Handlers) updateBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	u := app.BookingUpdate{
		GuestName: req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		Covers:    req.Covers,
		Custom:    req.Custom,
	}
	if req.Status != nil {
		st := domain.BookingStatus(*req.Status)
		u.Status = &st
	}
	if err := h.S.UpdateBooking(r.Context(), id, u); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) excludeMatch(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	var req struct {
		HotelID int64 `json:"hotel_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.S.ExcludeMatch(r.Context(), id, req.HotelID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
