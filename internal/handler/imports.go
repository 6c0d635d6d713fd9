package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/masjid-admin/internal/csvimport"
	"github.com/pkordes/masjid-admin/internal/domain"
)

// multipartMemory is how much of an upload is held in memory before
// spilling to a temp file. The body size itself is capped by middleware.
const multipartMemory = 1 << 20

// ImportSession is the JSON form of an import session. The parsed rows stay
// server-side; RowPreview carries enough of them to build the mapping table.
type ImportSession struct {
	ID             openapi_types.UUID  `json:"id"`
	MasjidID       openapi_types.UUID  `json:"masjid_id"`
	Step           csvimport.Step      `json:"step"`
	Filename       string              `json:"filename,omitempty"`
	Headers        []string            `json:"headers"`
	RowCount       int                 `json:"row_count"`
	RowPreview     []map[string]string `json:"row_preview"`
	FieldMapping   map[string]string   `json:"field_mapping"`
	Unmapped       []string            `json:"unmapped"`
	CanContinue    bool                `json:"can_continue"`
	RequiredFields []string            `json:"required_fields"`
	OptionalFields []string            `json:"optional_fields"`
	Error          string              `json:"error,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

// MappingRequest is the body of PUT .../mapping: field -> header, where an
// empty header clears the field.
type MappingRequest struct {
	FieldMapping map[string]string `json:"field_mapping"`
}

// SuggestionsResponse is the body of GET .../suggestions.
type SuggestionsResponse struct {
	Suggestions map[string]string `json:"suggestions"`
}

// OpenImport handles POST /masjids/{masjidId}/imports.
func (s *Server) OpenImport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.imports.Open(r.Context(), masjidID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionToResponse(sess))
}

// GetImport handles GET .../imports/{sessionId}.
func (s *Server) GetImport(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, s.imports.Get)
}

// CloseImport handles DELETE .../imports/{sessionId}.
func (s *Server) CloseImport(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "sessionId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.imports.Close(r.Context(), masjidID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadImportFile handles POST .../imports/{sessionId}/file with the
// timetable in the multipart field "file". A file that cannot be parsed is
// answered 422 parse_error; the session keeps the message for the next GET.
func (s *Server) UploadImportFile(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "sessionId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		badBody(w, r, err)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			requestError(w, "file is required")
			return
		}
		badBody(w, r, err)
		return
	}
	defer file.Close()

	sess, err := s.imports.UploadFile(r.Context(), masjidID(r), id, file, header.Filename)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(sess))
}

// AssignImportMapping handles PUT .../imports/{sessionId}/mapping.
func (s *Server) AssignImportMapping(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "sessionId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body MappingRequest
	if err := decodeJSON(r, &body); err != nil {
		badBody(w, r, err)
		return
	}
	if len(body.FieldMapping) == 0 {
		requestError(w, "field_mapping is required")
		return
	}
	sess, err := s.imports.Assign(r.Context(), masjidID(r), id, body.FieldMapping)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(sess))
}

// SuggestImportMapping handles GET .../imports/{sessionId}/suggestions.
func (s *Server) SuggestImportMapping(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "sessionId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	sug, err := s.imports.Suggest(r.Context(), masjidID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if sug == nil {
		sug = map[string]string{}
	}
	writeJSON(w, http.StatusOK, SuggestionsResponse{Suggestions: sug})
}

// ContinueImport handles POST .../imports/{sessionId}/continue.
func (s *Server) ContinueImport(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, s.imports.Continue)
}

// BackImport handles POST .../imports/{sessionId}/back.
func (s *Server) BackImport(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, s.imports.Back)
}

// ReviewImport handles GET .../imports/{sessionId}/review.
func (s *Server) ReviewImport(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "sessionId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	sum, err := s.imports.Review(r.Context(), masjidID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if sum.Preview == nil {
		sum.Preview = []domain.PrayerTimeInput{}
	}
	writeJSON(w, http.StatusOK, sum)
}

// SubmitImport handles POST .../imports/{sessionId}/submit.
func (s *Server) SubmitImport(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "sessionId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.imports.Submit(r.Context(), masjidID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// withSession runs a session-returning operation on {sessionId}.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, masjidID, id uuid.UUID) (*csvimport.Session, error)) {
	id, err := pathUUID(r, "sessionId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := op(r.Context(), masjidID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(sess))
}

func sessionToResponse(s *csvimport.Session) ImportSession {
	n := min(len(s.Rows), csvimport.PreviewSize)
	resp := ImportSession{
		ID:             s.ID,
		MasjidID:       s.MasjidID,
		Step:           s.Step,
		Filename:       s.Filename,
		Headers:        s.Headers,
		RowCount:       len(s.Rows),
		RowPreview:     s.Rows[:n],
		FieldMapping:   s.Mapping,
		Unmapped:       s.Unmapped(),
		CanContinue:    s.CanContinue(),
		RequiredFields: domain.RequiredImportFields,
		OptionalFields: domain.OptionalImportFields,
		Error:          s.Error,
		CreatedAt:      s.CreatedAt,
	}
	if resp.Headers == nil {
		resp.Headers = []string{}
	}
	if resp.RowPreview == nil {
		resp.RowPreview = []map[string]string{}
	}
	if resp.FieldMapping == nil {
		resp.FieldMapping = map[string]string{}
	}
	if resp.Unmapped == nil || s.Step == csvimport.StepUpload {
		resp.Unmapped = []string{}
	}
	return resp
}
