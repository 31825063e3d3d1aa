package reports

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fleetdesk/fleetdesk/internal/platform/httpx"
	"github.com/fleetdesk/fleetdesk/internal/shared"
)

// Handler wires HTTP endpoints for reporting.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/earnings", h.earnings)
	r.Get("/counts", h.counts)
	r.Get("/summary", h.summary)
}

func (h *Handler) earnings(w http.ResponseWriter, r *http.Request) {
	p, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	params, err := parseParams(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, err := h.service.Earnings(r.Context(), p, params)
	if err != nil {
		h.logger.Error("earnings report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) counts(w http.ResponseWriter, r *http.Request) {
	p, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	params, err := parseParams(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, err := h.service.Counts(r.Context(), p, params)
	if err != nil {
		h.logger.Error("count report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	p, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	summary, err := h.service.Summary(r.Context(), p)
	if err != nil {
		h.logger.Error("report summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func parseParams(r *http.Request) (Params, error) {
	params := Params{Timeframe: r.URL.Query().Get("timeframe")}
	var err error
	if params.Year, err = parseIntParam(r, "year"); err != nil {
		return Params{}, err
	}
	if params.Month, err = parseIntParam(r, "month"); err != nil {
		return Params{}, err
	}
	if params.Day, err = parseIntParam(r, "day"); err != nil {
		return Params{}, err
	}
	return params, nil
}

func parseIntParam(r *http.Request, name string) (*int, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s", httpx.ErrValidation, name)
	}
	return &n, nil
}
