package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fastprodman/txledger/internal/csvio"
	"github.com/fastprodman/txledger/internal/repos/snapshots"
	"github.com/fastprodman/txledger/internal/services/replay"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	headerSource    = "X-Source"
	headerProcessed = "X-Records-Processed"
	headerRejected  = "X-Records-Rejected"
	headerRunID     = "X-Run-Id"

	defaultSource = "http"
)

type Replayer interface {
	Run(ctx context.Context, source string, r io.Reader) (replay.Result, error)
}

type RunGetter interface {
	Get(ctx context.Context, runID uuid.UUID) (snapshots.Run, error)
}

// HandlerProvider exposes the replay service over HTTP.
type HandlerProvider struct {
	replay  Replayer
	runs    RunGetter
	maxBody int64
}

// NewHandler returns a new Handler provider. runs may be nil when no
// archive is configured.
func NewHandler(rp Replayer, runs RunGetter, maxBody int64) *HandlerProvider {
	return &HandlerProvider{replay: rp, runs: runs, maxBody: maxBody}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseRunIDFromPath reads `{runId}` from GET /runs/{runId}.
func parseRunIDFromPath(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "runId"))
}

type accountResponse struct {
	Client    uint16 `json:"client"`
	Available string `json:"available"`
	Held      string `json:"held"`
	Total     string `json:"total"`
	Locked    bool   `json:"locked"`
}

type runResponse struct {
	RunID     uuid.UUID         `json:"runId"`
	Source    string            `json:"source"`
	Processed int               `json:"processed"`
	Rejected  int               `json:"rejected"`
	CreatedAt time.Time         `json:"createdAt"`
	Accounts  []accountResponse `json:"accounts"`
}

func toRunResponse(run snapshots.Run) runResponse {
	resp := runResponse{
		RunID:     run.ID,
		Source:    run.Source,
		Processed: run.Processed,
		Rejected:  run.Rejected,
		CreatedAt: run.CreatedAt,
		Accounts:  make([]accountResponse, 0, len(run.Accounts)),
	}

	for _, row := range run.Accounts {
		resp.Accounts = append(resp.Accounts, accountResponse{
			Client:    row.ClientID,
			Available: row.AvailableText(),
			Held:      row.HeldText(),
			Total:     row.TotalText(),
			Locked:    row.Locked,
		})
	}

	return resp
}

// --- Handlers ---

// ReplayHandler handles POST /replay. The body is a transactions CSV; the
// response is the account snapshot CSV.
func (h *HandlerProvider) ReplayHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	defer r.Body.Close()

	source := strings.TrimSpace(r.Header.Get(headerSource))
	if source == "" {
		source = defaultSource
	}

	res, err := h.replay.Run(r.Context(), source, r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError

		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "body too large")
		case errors.Is(err, context.Canceled):
			// client went away, nobody to answer
		default:
			slog.Error("replay failed", "source", source, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}

		return
	}

	var buf bytes.Buffer

	err = csvio.WriteSnapshot(&buf, res.Rows)
	if err != nil {
		slog.Error("encode snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")

		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set(headerProcessed, strconv.Itoa(res.Report.Processed))
	w.Header().Set(headerRejected, strconv.Itoa(res.Report.Rejected))

	if res.RunID != uuid.Nil {
		w.Header().Set(headerRunID, res.RunID.String())
	}

	w.WriteHeader(http.StatusOK)

	_, err = w.Write(buf.Bytes())
	if err != nil {
		slog.Error("write snapshot response", "error", err)
	}
}

// GetRunHandler handles GET /runs/{runId}.
func (h *HandlerProvider) GetRunHandler(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		writeError(w, http.StatusNotImplemented, "archive not configured")
		return
	}

	runID, err := parseRunIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid runId in path")
		return
	}

	run, err := h.runs.Get(r.Context(), runID)
	if err != nil {
		if errors.Is(err, snapshots.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}

		slog.Error("get run failed", "run_id", runID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")

		return
	}

	writeJSON(w, http.StatusOK, toRunResponse(run))
}
