package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iwvelando/lever-planner/internal/baseline"
	"github.com/iwvelando/lever-planner/internal/config"
	"github.com/iwvelando/lever-planner/internal/matrix"
	"github.com/iwvelando/lever-planner/internal/planner"
	"github.com/iwvelando/lever-planner/pkg/constants"
	"github.com/iwvelando/lever-planner/pkg/levers"
	"github.com/iwvelando/lever-planner/pkg/output"
)

// Simulator runs the simulation for an overrides payload and returns its
// raw JSON response.
type Simulator interface {
	RunSimulation(ctx context.Context, overrides matrix.Overrides) ([]byte, error)
}

// Options tunes a handler. Zero values select defaults; a nil Simulator
// disables the simulation endpoint.
type Options struct {
	MaxUploadSize int64
	Version       string
	Simulator     Simulator
}

type handler struct {
	logger        *zap.Logger
	ctrl          *planner.Controller
	sim           Simulator
	maxUploadSize int64
	version       string
	sessionID     string
}

// NewHandler constructs the HTTP handler that serves the lever API over a
// single planning session.
func NewHandler(logger *zap.Logger, ctrl *planner.Controller, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ctrl == nil {
		ctrl = planner.NewController(planner.WithLogger(logger))
	}

	maxUploadSize := opts.MaxUploadSize
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		ctrl:          ctrl,
		sim:           opts.Simulator,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		sessionID:     uuid.NewString(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /api/version", h.handleVersion)
	mux.HandleFunc("GET /api/offices", h.handleOffices)

	// Lever matrix
	mux.HandleFunc("POST /api/levers/apply", h.handleApply)
	mux.HandleFunc("POST /api/levers/reset", h.handleReset)
	mux.HandleFunc("GET /api/levers/cell", h.handleGetCell)
	mux.HandleFunc("POST /api/levers/cell", h.handleSetCell)
	mux.HandleFunc("GET /api/levers/overrides", h.handleOverrides)
	mux.HandleFunc("GET /api/levers/summary", h.handleSummary)

	// Baseline and simulation
	mux.HandleFunc("POST /api/baseline/normalize", h.handleNormalize)
	mux.HandleFunc("POST /api/simulation/run", h.handleSimulation)

	return mux
}

type officeResponse struct {
	Name     string               `json:"name"`
	TotalFTE float64              `json:"totalFte"`
	Journey  levers.OfficeJourney `json:"journey"`
}

type applyResponse struct {
	Applied  bool     `json:"applied"`
	Summary  []string `json:"summary"`
	Changes  any      `json:"changes,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

type cellRequest struct {
	Office    string  `json:"office"`
	Level     string  `json:"level"`
	LeverType string  `json:"leverType"`
	Month     int     `json:"month"`
	Value     float64 `json:"value"`
}

type cellResponse struct {
	Office    string           `json:"office"`
	Level     levers.Level     `json:"level"`
	LeverType levers.LeverType `json:"leverType"`
	Month     levers.Month     `json:"month"`
	Value     float64          `json:"value"`
}

type normalizeResponse struct {
	Baseline baseline.Baseline `json:"baseline"`
	Seeded   *int              `json:"seeded,omitempty"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
		"session": h.sessionID,
	})
}

func (h *handler) handleOffices(w http.ResponseWriter, r *http.Request) {
	summaries := h.ctrl.Offices()
	resp := make([]officeResponse, 0, len(summaries))
	for _, s := range summaries {
		resp = append(resp, officeResponse{
			Name:     s.Name,
			TotalFTE: s.TotalFTE,
			Journey:  levers.Classify(s.TotalFTE),
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleApply(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleApply"

	var rc config.RequestConfig
	if err := h.decodeBody(w, r, &rc); err != nil {
		h.respondBodyError(w, err, op)
		return
	}

	req, err := rc.ToRequest()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	known := make([]string, 0)
	for _, s := range h.ctrl.Offices() {
		known = append(known, s.Name)
	}

	summary, applied := h.ctrl.Apply(req)
	h.logger.Info("levers applied",
		zap.String("op", op),
		zap.Bool("applied", applied),
		zap.Int("changes", len(summary)),
	)

	resp := applyResponse{
		Applied:  applied,
		Summary:  summary.Lines(),
		Warnings: rc.Warnings(0, known),
	}
	if applied {
		resp.Changes = summary
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.ctrl.Reset()
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *handler) handleGetCell(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGetCell"

	q := r.URL.Query()
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid month %q", q.Get("month")), op)
		return
	}
	cell, err := parseCell(cellRequest{
		Office:    q.Get("office"),
		Level:     q.Get("level"),
		LeverType: q.Get("leverType"),
		Month:     month,
	})
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	value, err := h.ctrl.Get(cell.Office, cell.Level, cell.LeverType, cell.Month)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}
	cell.Value = value
	h.writeJSON(w, http.StatusOK, cell)
}

func (h *handler) handleSetCell(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSetCell"

	var body cellRequest
	if err := h.decodeBody(w, r, &body); err != nil {
		h.respondBodyError(w, err, op)
		return
	}
	cell, err := parseCell(body)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	if err := h.ctrl.Set(cell.Office, cell.Level, cell.LeverType, cell.Month, body.Value); err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}

	// Report the stored value, which is clamped into [0, 1].
	cell.Value, _ = h.ctrl.Get(cell.Office, cell.Level, cell.LeverType, cell.Month)
	h.writeJSON(w, http.StatusOK, cell)
}

func (h *handler) handleOverrides(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleOverrides"

	report := output.Report{Overrides: h.ctrl.Overrides()}
	switch format := r.URL.Query().Get("format"); format {
	case "", constants.OutputFormatJSON:
		h.writeJSON(w, http.StatusOK, map[string]matrix.Overrides{"office_overrides": report.Overrides})
	case constants.OutputFormatYAML:
		var buf bytes.Buffer
		if err := output.YAMLFormat(&buf, report); err != nil {
			h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode overrides: %v", err), op)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	default:
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("unsupported format %q", format), op)
	}
}

func (h *handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	audit := h.ctrl.Audit()
	if audit == nil {
		audit = []planner.AuditEntry{}
	}
	h.writeJSON(w, http.StatusOK, audit)
}

func (h *handler) handleNormalize(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleNormalize"

	body, err := h.readBody(w, r)
	if err != nil {
		h.respondBodyError(w, err, op)
		return
	}
	if !json.Valid(body) {
		h.respondErrorWithOp(w, http.StatusBadRequest, "baseline payload is not valid JSON", op)
		return
	}

	seed, _ := strconv.ParseBool(r.URL.Query().Get("seed"))
	if !seed {
		h.writeJSON(w, http.StatusOK, normalizeResponse{Baseline: baseline.Normalize(body)})
		return
	}

	seeded := h.ctrl.SeedBaseline(body)
	h.writeJSON(w, http.StatusOK, normalizeResponse{Baseline: h.ctrl.Baseline(), Seeded: &seeded})
}

func (h *handler) handleSimulation(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSimulation"

	if h.sim == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "no simulation backend configured", op)
		return
	}

	result, err := h.sim.RunSimulation(r.Context(), h.ctrl.Overrides())
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadGateway, fmt.Sprintf("simulation failed: %v", err), op)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result); err != nil {
		h.logger.Error("failed to write simulation response", zap.String("op", op), zap.Error(err))
	}
}

func parseCell(body cellRequest) (cellResponse, error) {
	if strings.TrimSpace(body.Office) == "" {
		return cellResponse{}, errors.New("missing office")
	}
	level, err := levers.ParseLevel(body.Level)
	if err != nil {
		return cellResponse{}, err
	}
	leverType, err := levers.ParseLeverType(body.LeverType)
	if err != nil {
		return cellResponse{}, err
	}
	month := levers.Month(body.Month)
	if !month.Valid() {
		return cellResponse{}, fmt.Errorf("month %d outside 1-12", body.Month)
	}
	return cellResponse{Office: body.Office, Level: level, LeverType: leverType, Month: month}, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, planner.ErrUnknownOffice):
		return http.StatusNotFound
	case errors.Is(err, matrix.ErrNotApplicable):
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func (h *handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	return io.ReadAll(r.Body)
}

func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := h.readBody(w, r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return errors.New("empty request body")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}
	return nil
}

func (h *handler) respondBodyError(w http.ResponseWriter, err error, op string) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
		return
	}
	h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("lever request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
