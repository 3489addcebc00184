package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vanguard/pkg/controller/server"
	"github.com/secmon-lab/vanguard/pkg/domain/mock"
	"github.com/secmon-lab/vanguard/pkg/domain/model"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
	"github.com/secmon-lab/vanguard/pkg/infra"
	"github.com/secmon-lab/vanguard/pkg/stream"
	"github.com/secmon-lab/vanguard/pkg/usecase"
)

func TestRouterSmokeTests(t *testing.T) {
	t.Run("GET /health returns 200", func(t *testing.T) {
		clients := infra.New()
		uc := usecase.New(clients)
		srv := server.New(uc)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()

		srv.Mux().ServeHTTP(rec, req)

		gt.V(t, rec.Code).Equal(http.StatusOK)
		gt.V(t, rec.Body.String()).Equal("ok")
	})
}

func TestSubmitScan(t *testing.T) {
	t.Run("valid request is accepted", func(t *testing.T) {
		mockUC := &mock.UseCaseMock{
			SubmitScanFunc: func(ctx context.Context, req *model.ScanRequest) (*model.ScanJob, error) {
				job := model.NewScanJob(req, time.Now().UTC())
				job.TestID = "test-0001"
				return job, nil
			},
		}
		srv := server.New(mockUC)

		body := []byte(`{
			"workspace_id": "ws-1",
			"component_id": "comp-1",
			"assessment_id": "assess-1",
			"profile": "light",
			"source": {"kind": "directory", "locator": "/tmp/src"},
			"manifest": {"inline": "{\"profiles\":[{\"name\":\"light\"}]}"}
		}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		srv.Mux().ServeHTTP(rec, req)

		gt.V(t, rec.Code).Equal(http.StatusAccepted)
		gt.A(t, mockUC.SubmitScanCalls()).Length(1)

		var job model.ScanJob
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
		gt.V(t, job.TestID).Equal("test-0001")
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		mockUC := &mock.UseCaseMock{}
		srv := server.New(mockUC)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", strings.NewReader("{broken"))
		rec := httptest.NewRecorder()

		srv.Mux().ServeHTTP(rec, req)

		gt.V(t, rec.Code).Equal(http.StatusBadRequest)
		gt.A(t, mockUC.SubmitScanCalls()).Length(0)
	})

	t.Run("validation error maps to 400", func(t *testing.T) {
		mockUC := &mock.UseCaseMock{
			SubmitScanFunc: func(ctx context.Context, req *model.ScanRequest) (*model.ScanJob, error) {
				return nil, goerr.Wrap(types.ErrInvalidRequest, "workspace ID is empty")
			},
		}
		srv := server.New(mockUC)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()

		srv.Mux().ServeHTTP(rec, req)

		gt.V(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func TestGetScan(t *testing.T) {
	t.Run("unknown job maps to 404", func(t *testing.T) {
		mockUC := &mock.UseCaseMock{
			GetJobFunc: func(ctx context.Context, id types.TestID) (*model.ScanJob, error) {
				return nil, goerr.Wrap(types.ErrJobNotFound, "job not found", goerr.V("test_id", id))
			},
		}
		srv := server.New(mockUC)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/scans/no-such-id", nil)
		rec := httptest.NewRecorder()

		srv.Mux().ServeHTTP(rec, req)

		gt.V(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("returns job document", func(t *testing.T) {
		mockUC := &mock.UseCaseMock{
			GetJobFunc: func(ctx context.Context, id types.TestID) (*model.ScanJob, error) {
				return &model.ScanJob{
					TestID: id,
					Status: types.JobStatusSucceeded,
				}, nil
			},
		}
		srv := server.New(mockUC)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/scans/test-42", nil)
		rec := httptest.NewRecorder()

		srv.Mux().ServeHTTP(rec, req)

		gt.V(t, rec.Code).Equal(http.StatusOK)

		var job model.ScanJob
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
		gt.V(t, job.TestID).Equal("test-42")
		gt.V(t, job.Status).Equal(types.JobStatusSucceeded)
	})
}

func TestScanEvents(t *testing.T) {
	t.Run("replays history of a finished stream", func(t *testing.T) {
		s := stream.New("test-events")
		s.Emit(model.EventTypeStatus, map[string]any{"status": "QUEUED"})
		s.Emit(model.EventTypeStep, map[string]any{"step": "scan"})
		s.Close(types.JobStatusSucceeded, nil)

		mockUC := &mock.UseCaseMock{
			StreamFunc: func(id types.TestID) (*stream.Stream, bool) {
				return s, true
			},
		}
		srv := server.New(mockUC)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/scans/test-events/events", nil)
		rec := httptest.NewRecorder()

		srv.Mux().ServeHTTP(rec, req)

		gt.V(t, rec.Code).Equal(http.StatusOK)
		gt.V(t, rec.Header().Get("Content-Type")).Equal("text/event-stream")

		body := rec.Body.String()
		gt.True(t, strings.Contains(body, "event: status"))
		gt.True(t, strings.Contains(body, "event: step"))
		gt.True(t, strings.Contains(body, "event: terminal"))
		gt.True(t, strings.Contains(body, `"SUCCEEDED"`))
	})

	t.Run("unknown stream maps to 404", func(t *testing.T) {
		mockUC := &mock.UseCaseMock{
			StreamFunc: func(id types.TestID) (*stream.Stream, bool) {
				return nil, false
			},
		}
		srv := server.New(mockUC)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/scans/no-such-id/events", nil)
		rec := httptest.NewRecorder()

		srv.Mux().ServeHTTP(rec, req)

		gt.V(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestRequestUpload(t *testing.T) {
	t.Run("defaults to raw tier", func(t *testing.T) {
		mockUC := &mock.UseCaseMock{
			RequestUploadFunc: func(ctx context.Context, id types.TestID, tier types.StorageTier) (*model.UploadConfirmation, error) {
				return &model.UploadConfirmation{Status: types.UploadStatusUploaded}, nil
			},
		}
		srv := server.New(mockUC)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/scans/test-1/upload", nil)
		rec := httptest.NewRecorder()

		srv.Mux().ServeHTTP(rec, req)

		gt.V(t, rec.Code).Equal(http.StatusOK)
		calls := mockUC.RequestUploadCalls()
		gt.A(t, calls).Length(1)
		gt.V(t, calls[0].Tier).Equal(types.StorageTierRaw)
	})

	t.Run("unknown tier is rejected", func(t *testing.T) {
		mockUC := &mock.UseCaseMock{}
		srv := server.New(mockUC)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/scans/test-1/upload", strings.NewReader(`{"tier":"frozen"}`))
		rec := httptest.NewRecorder()

		srv.Mux().ServeHTTP(rec, req)

		gt.V(t, rec.Code).Equal(http.StatusBadRequest)
		gt.A(t, mockUC.RequestUploadCalls()).Length(0)
	})

	t.Run("denied upload maps to 403", func(t *testing.T) {
		mockUC := &mock.UseCaseMock{
			RequestUploadFunc: func(ctx context.Context, id types.TestID, tier types.StorageTier) (*model.UploadConfirmation, error) {
				return &model.UploadConfirmation{Status: types.UploadStatusDenied}, nil
			},
		}
		srv := server.New(mockUC)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/scans/test-1/upload", strings.NewReader(`{"tier":"golden"}`))
		rec := httptest.NewRecorder()

		srv.Mux().ServeHTTP(rec, req)

		gt.V(t, rec.Code).Equal(http.StatusForbidden)

		var conf model.UploadConfirmation
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conf))
		gt.V(t, conf.Status).Equal(types.UploadStatusDenied)
	})

	t.Run("incomplete job maps to 409", func(t *testing.T) {
		mockUC := &mock.UseCaseMock{
			RequestUploadFunc: func(ctx context.Context, id types.TestID, tier types.StorageTier) (*model.UploadConfirmation, error) {
				return nil, goerr.Wrap(types.ErrJobNotCompleted, "upload requires a succeeded job")
			},
		}
		srv := server.New(mockUC)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/scans/test-1/upload", nil)
		rec := httptest.NewRecorder()

		srv.Mux().ServeHTTP(rec, req)

		gt.V(t, rec.Code).Equal(http.StatusConflict)
	})
}
