package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vanguard/pkg/domain/interfaces"
	"github.com/secmon-lab/vanguard/pkg/domain/model"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
	"github.com/secmon-lab/vanguard/pkg/repository"
	"github.com/secmon-lab/vanguard/pkg/utils/errutil"
	"github.com/secmon-lab/vanguard/pkg/utils/logging"
)

type Server struct {
	mux *chi.Mux
}

func safeWrite(w http.ResponseWriter, code int, body []byte) {
	w.WriteHeader(code)

	if _, err := w.Write(body); err != nil {
		logging.Default().Error("fail to write response", slog.Any("error", err))
	}
}

func respondJSON(w http.ResponseWriter, code int, body any) {
	raw, err := json.Marshal(body)
	if err != nil {
		logging.Default().Error("fail to marshal response", slog.Any("error", err))
		safeWrite(w, http.StatusInternalServerError, []byte(`{"error":"internal error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	safeWrite(w, code, raw)
}

func respondError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrInvalidRequest), errors.Is(err, types.ErrInvalidOption):
		code = http.StatusBadRequest
	case errors.Is(err, types.ErrJobNotFound), errors.Is(err, types.ErrResourceNotFound), errors.Is(err, repository.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, types.ErrJobNotCompleted), errors.Is(err, repository.ErrAlreadyExists):
		code = http.StatusConflict
	case errors.Is(err, types.ErrUploadDenied):
		code = http.StatusForbidden
	}

	respondJSON(w, code, map[string]string{"error": err.Error()})
}

func New(uc interfaces.UseCase) *Server {
	r := chi.NewRouter()
	r.Use(preProcess)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		safeWrite(w, http.StatusOK, []byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/scans", func(r chi.Router) {
			r.Post("/", handleSubmitScan(uc))
			r.Get("/", handleListScans(uc))
			r.Route("/{test_id}", func(r chi.Router) {
				r.Get("/", handleGetScan(uc))
				r.Get("/events", handleScanEvents(uc))
				r.Post("/upload", handleRequestUpload(uc))
			})
		})
	})

	return &Server{
		mux: r,
	}
}

func (x *Server) Mux() *chi.Mux {
	return x.mux
}

func handleSubmitScan(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.ScanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, goerr.Wrap(types.ErrInvalidRequest, "malformed scan request body"))
			return
		}

		job, err := uc.SubmitScan(r.Context(), &req)
		if err != nil {
			errutil.HandleError(r.Context(), "fail to submit scan", err)
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusAccepted, job)
	}
}

func handleListScans(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := uc.ListJobs(r.Context())
		if err != nil {
			errutil.HandleError(r.Context(), "fail to list scans", err)
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{"scans": jobs})
	}
}

func handleGetScan(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := types.TestID(chi.URLParam(r, "test_id"))

		job, err := uc.GetJob(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, job)
	}
}

// handleScanEvents streams job events as Server-Sent Events. The full history
// is replayed first, then live events follow until the stream's terminal event
// or client disconnect.
func handleScanEvents(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := types.TestID(chi.URLParam(r, "test_id"))

		logStream, ok := uc.Stream(id)
		if !ok {
			respondError(w, goerr.Wrap(types.ErrJobNotFound, "no event stream for scan", goerr.V("test_id", id)))
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			respondError(w, goerr.New("streaming is not supported"))
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		history, live := logStream.Attach()
		defer logStream.Detach(live)

		for _, event := range history {
			writeSSE(w, &event)
		}
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case event, ok := <-live:
				if !ok {
					return
				}
				writeSSE(w, &event)
				flusher.Flush()
			}
		}
	}
}

func writeSSE(w http.ResponseWriter, event *model.LogEvent) {
	raw, err := json.Marshal(event)
	if err != nil {
		logging.Default().Error("fail to marshal stream event", slog.Any("error", err))
		return
	}

	if _, err := w.Write([]byte("event: " + string(event.Type) + "\ndata: " + string(raw) + "\n\n")); err != nil {
		logging.Default().Error("fail to write stream event", slog.Any("error", err))
	}
}

type uploadBody struct {
	Tier types.StorageTier `json:"tier"`
}

func handleRequestUpload(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := types.TestID(chi.URLParam(r, "test_id"))

		var body uploadBody
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				respondError(w, goerr.Wrap(types.ErrInvalidRequest, "malformed upload request body"))
				return
			}
		}
		if body.Tier == "" {
			body.Tier = types.StorageTierRaw
		}
		if body.Tier != types.StorageTierRaw && body.Tier != types.StorageTierGolden {
			respondError(w, goerr.Wrap(types.ErrInvalidRequest, "unknown storage tier", goerr.V("tier", body.Tier)))
			return
		}

		conf, err := uc.RequestUpload(r.Context(), id, body.Tier)
		if err != nil {
			errutil.HandleError(r.Context(), "fail to upload scan bundle", err)
			respondError(w, err)
			return
		}

		code := http.StatusOK
		if conf.Status == types.UploadStatusDenied {
			code = http.StatusForbidden
		}

		respondJSON(w, code, conf)
	}
}
