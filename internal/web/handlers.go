package web

import (
	"encoding/json"
	"net/http"

	"github.com/nboulle/meterflow/internal/mapping"
	"github.com/nboulle/meterflow/internal/pipeline"
	"github.com/nboulle/meterflow/internal/universal"
)

// convertRequest carries a source file for in-memory normalization.
// Content is base64 on the wire (encoding/json's []byte representation).
type convertRequest struct {
	Filename   string           `json:"filename"`
	Content    []byte           `json:"content"`
	SourceName string           `json:"source_name,omitempty"`
	Mapping    *mapping.Mapping `json:"mapping,omitempty"`
}

type convertResponse struct {
	Rows            []universal.Reading `json:"rows"`
	Count           int                 `json:"count"`
	DetectedMapping mapping.Mapping     `json:"detected_mapping"`
}

// exportRequest carries normalized rows for encoding into a target format.
type exportRequest struct {
	Rows   []universal.Reading `json:"rows"`
	Format string              `json:"format"`
}

type exportResponse struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}

// handleConvert normalizes an uploaded payload and returns the rows along
// with the mapping that was used, so the caller can display or adjust it.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxPayloadSize)

	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.Filename == "" {
		writeError(w, r, http.StatusBadRequest, "missing filename")
		return
	}

	sourceName := req.SourceName
	if sourceName == "" {
		sourceName = s.cfg.Import.DefaultSourceName
	}

	readings, resolved, err := pipeline.Convert(req.Filename, req.Content, req.Mapping, sourceName)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, r, convertResponse{
		Rows:            readings,
		Count:           len(readings),
		DetectedMapping: resolved,
	})
}

// handleExport encodes previously normalized rows for download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxPayloadSize)

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request payload")
		return
	}

	format := req.Format
	if format == "" {
		format = "csv"
	}

	filename, content, err := pipeline.Export(req.Rows, format)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, r, exportResponse{Filename: filename, Content: content})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]string{"status": "ok"})
}
