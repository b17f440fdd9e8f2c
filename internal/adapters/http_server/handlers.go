package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"pollen_tracker/internal/adapters/observability"
	"pollen_tracker/internal/app"
	"pollen_tracker/internal/domain"
)

type Handlers struct {
	Q       *app.QueryService
	S       *app.SubmitService
	Submit  *SubmitLimiter // optional, nil disables throttling
	MapsKey string
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type summaryPage struct {
	Items []domain.SummaryRow `json:"items"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/", h.mapPage)
	if h.Submit != nil {
		s.mux.With(h.Submit.Middleware).Post("/v1/reviews", h.createReview)
	} else {
		s.mux.Post("/v1/reviews", h.createReview)
	}
	s.mux.Get("/v1/reviews", h.listReviews)
	s.mux.Get("/v1/reviews/{id}", h.getReview)
	s.mux.Get("/v1/summary", h.summary)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		// Log but don't fail the whole response; return empty ETag and best-effort body.
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
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

func (h *Handlers) createReview(w http.ResponseWriter, r *http.Request) {
	var in domain.NewReview
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		var tErr *json.UnmarshalTypeError
		if errors.As(err, &tErr) && tErr.Field != "" {
			writeProblem(w, http.StatusBadRequest, "Invalid Field",
				fmt.Sprintf("field %q must be of type %s", tErr.Field, tErr.Type))
			return
		}
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", "request body is not valid JSON")
		return
	}

	rev, err := h.S.CreateReview(r.Context(), in)
	if err != nil {
		var fe *domain.FieldError
		if errors.As(err, &fe) {
			writeProblem(w, http.StatusBadRequest, "Invalid Review", fe.Error())
			return
		}
		log.Error().Err(err).Msg("create review failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not store review")
		return
	}
	observability.ObserveReviewInserted(rev.PollenType)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", fmt.Sprintf("/v1/reviews/%d", rev.ID))
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(rev); err != nil {
		log.Error().Err(err).Msg("failed to write createReview body")
	}
}

func (h *Handlers) getReview(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}

	rev, err := h.Q.GetReview(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "review not found")
			return
		}
		log.Error().Err(err).Msg("get review failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not load review")
		return
	}

	writeJSON(w, r, rev)
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 50
	if ls := q.Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		limit = l
	}
	page := domain.PageQuery{Limit: limit}

	bounds, ok, err := parseBounds(q)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid bounds", err.Error())
		return
	}

	var out domain.ReviewsPage
	switch {
	case ok:
		out, err = h.Q.ListInBounds(r.Context(), bounds, page)
	case q.Get("pollen_type") != "":
		out, err = h.Q.ListByPollenType(r.Context(), q.Get("pollen_type"), page)
	default:
		out, err = h.Q.ListRecent(r.Context(), page)
	}
	if err != nil {
		log.Error().Err(err).Msg("list reviews failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not list reviews")
		return
	}
	if out.Items == nil {
		out.Items = []domain.Review{} // no matches serializes as [], not null
	}

	writeJSON(w, r, out)
}

// parseBounds reads the four bounding-box params. They come as a package
// deal: all four present is a bounds query, none is not, anything in
// between is an error.
func parseBounds(q map[string][]string) (domain.Bounds, bool, error) {
	keys := []string{"min_lat", "max_lat", "min_lng", "max_lng"}
	vals := make([]float64, 0, len(keys))
	missing := 0
	for _, k := range keys {
		vs, ok := q[k]
		if !ok || len(vs) == 0 || vs[0] == "" {
			missing++
			continue
		}
		f, err := strconv.ParseFloat(vs[0], 64)
		if err != nil {
			return domain.Bounds{}, false, fmt.Errorf("%s must be a number", k)
		}
		vals = append(vals, f)
	}
	if missing == len(keys) {
		return domain.Bounds{}, false, nil
	}
	if missing > 0 {
		return domain.Bounds{}, false, errors.New("bounds need min_lat, max_lat, min_lng and max_lng together")
	}
	return domain.Bounds{MinLat: vals[0], MaxLat: vals[1], MinLng: vals[2], MaxLng: vals[3]}, true, nil
}

func (h *Handlers) summary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Q.Summary(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("summary failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not aggregate reviews")
		return
	}
	if rows == nil {
		rows = []domain.SummaryRow{} // empty table serializes as [], not null
	}

	writeJSON(w, r, summaryPage{Items: rows})
}
