package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"ProposalReviewer/internal/domain"
	"ProposalReviewer/internal/infrastructure/storage"
	"ProposalReviewer/internal/usecase"
)

// maxRequestBody bounds a whole multipart request; individual file
// limits are enforced downstream by the extractor.
const maxRequestBody = 96 << 20

type rubricRequest struct {
	Name     string `json:"name"`
	Criteria string `json:"criteria"`
}

type generateRequest struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

func (s *Server) handleCreateRubric(w http.ResponseWriter, r *http.Request) {
	if s.rubrics == nil {
		writeError(w, http.StatusServiceUnavailable, "rubric storage is not configured")
		return
	}

	var req rubricRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Criteria = strings.TrimSpace(req.Criteria)
	if req.Name == "" || req.Criteria == "" {
		writeError(w, http.StatusBadRequest, "name and criteria are required")
		return
	}

	rubric, err := s.rubrics.CreateRubric(r.Context(), domain.Rubric{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Criteria: req.Criteria,
	})
	if err != nil {
		s.serverError(w, "create rubric", err)
		return
	}
	writeJSON(w, http.StatusCreated, rubric)
}

func (s *Server) handleListRubrics(w http.ResponseWriter, r *http.Request) {
	if s.rubrics == nil {
		writeError(w, http.StatusServiceUnavailable, "rubric storage is not configured")
		return
	}

	rubrics, err := s.rubrics.ListRubrics(r.Context())
	if err != nil {
		s.serverError(w, "list rubrics", err)
		return
	}
	writeJSON(w, http.StatusOK, rubrics)
}

func (s *Server) handleGetRubric(w http.ResponseWriter, r *http.Request) {
	if s.rubrics == nil {
		writeError(w, http.StatusServiceUnavailable, "rubric storage is not configured")
		return
	}

	rubric, err := s.rubrics.GetRubric(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "rubric not found")
			return
		}
		s.serverError(w, "get rubric", err)
		return
	}
	writeJSON(w, http.StatusOK, rubric)
}

func (s *Server) handleDeleteRubric(w http.ResponseWriter, r *http.Request) {
	if s.rubrics == nil {
		writeError(w, http.StatusServiceUnavailable, "rubric storage is not configured")
		return
	}

	if err := s.rubrics.DeleteRubric(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "rubric not found")
			return
		}
		s.serverError(w, "delete rubric", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReviewBatch accepts a multipart form with either an inline
// "rubric" field or a stored "rubric_id", an optional "context" field,
// and one or more "files" parts (documents or a single ZIP).
func (s *Server) handleReviewBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := r.ParseMultipartForm(maxRequestBody); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	rubricText, err := s.resolveRubric(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	uploads, err := readUploads(r.MultipartForm.File["files"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := s.reviews.ReviewBatch(r.Context(), rubricText, r.FormValue("context"), uploads)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, outcome)
	case errors.Is(err, usecase.ErrBatchFailed):
		// Distinct from a partial success: nothing was reviewed.
		writeJSON(w, http.StatusUnprocessableEntity, outcome)
	case errors.Is(err, usecase.ErrEmptyRubric),
		errors.Is(err, usecase.ErrNoDocuments),
		errors.Is(err, usecase.ErrBatchTooLarge):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.serverError(w, "review batch", err)
	}
}

func (s *Server) resolveRubric(r *http.Request) (string, error) {
	if text := strings.TrimSpace(r.FormValue("rubric")); text != "" {
		return text, nil
	}

	id := strings.TrimSpace(r.FormValue("rubric_id"))
	if id == "" {
		return "", errors.New("provide rubric text or rubric_id")
	}
	if s.rubrics == nil {
		return "", errors.New("rubric storage is not configured")
	}

	rubric, err := s.rubrics.GetRubric(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", fmt.Errorf("rubric %s not found", id)
		}
		return "", fmt.Errorf("load rubric: %w", err)
	}
	return rubric.Criteria, nil
}

func readUploads(headers []*multipart.FileHeader) ([]domain.RawUpload, error) {
	uploads := make([]domain.RawUpload, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload %s: %w", header.Filename, err)
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("read upload %s: %w", header.Filename, err)
		}

		uploads = append(uploads, domain.RawUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return uploads, nil
}

func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	if s.batches == nil {
		writeError(w, http.StatusServiceUnavailable, "batch storage is not configured")
		return
	}

	batch, err := s.batches.GetBatch(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "batch not found")
			return
		}
		s.serverError(w, "get batch", err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (s *Server) handleExportBatch(w http.ResponseWriter, r *http.Request) {
	if s.batches == nil {
		writeError(w, http.StatusServiceUnavailable, "batch storage is not configured")
		return
	}

	batch, err := s.batches.GetBatch(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "batch not found")
			return
		}
		s.serverError(w, "get batch", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "batch-"+batch.ID+".csv"))
	if err := usecase.ExportCSV(w, batch); err != nil && s.logger != nil {
		s.logger.Warn("export csv", "batch_id", batch.ID, "error", err)
	}
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	proposals, err := s.generator.Generate(r.Context(), req.Topic, req.Count)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"proposals": proposals})
}

func (s *Server) serverError(w http.ResponseWriter, action string, err error) {
	if s.logger != nil {
		s.logger.Error(action, "error", err)
	}
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
