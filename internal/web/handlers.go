package web

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/csvtool/internal/application"
	"github.com/JonMunkholm/csvtool/internal/core"
	"github.com/JonMunkholm/csvtool/internal/history"
	"github.com/JonMunkholm/csvtool/internal/reader"
	"github.com/JonMunkholm/csvtool/internal/report"
)

// Response headers set on transform downloads.
const (
	HeaderRunID             = "X-Csvtool-Run-Id"
	HeaderDuplicatesRemoved = "X-Csvtool-Duplicates-Removed"
)

// ProfileResponse is the JSON body of POST /api/profile.
type ProfileResponse struct {
	RunID  string              `json:"runId"`
	Source string              `json:"source"`
	Report *core.ProfileReport `json:"report"`
}

// RunsResponse is the JSON body of GET /api/runs.
type RunsResponse struct {
	Runs []history.Run `json:"runs"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleProfile profiles an uploaded file.
//
// Form fields: file (required), key (optional key column).
// Query: format=text returns the plain text report instead of JSON.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	up, err := s.parseUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer up.Close()

	res, err := s.service.Profile(r.Context(), application.ProfileRequest{
		Input:     up.input(),
		KeyColumn: strings.TrimSpace(r.FormValue("key")),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set(HeaderRunID, res.RunID)
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, report.FormatWarnings(res.Report.Warnings))
		fmt.Fprint(w, report.FormatProfile(res.Report))
		return
	}

	writeJSON(w, ProfileResponse{
		RunID:  res.RunID,
		Source: up.name,
		Report: res.Report,
	})
}

// handleTransform cleans an uploaded file and returns the CSV.
//
// Form fields: file (required), columns (repeatable, required), case,
// duplicates, key. Empty options use the server's configured defaults.
func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	up, err := s.parseUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer up.Close()

	res, err := s.service.Transform(r.Context(), application.TransformRequest{
		Input:      up.input(),
		Columns:    r.MultipartForm.Value["columns"],
		Case:       r.FormValue("case"),
		Duplicates: r.FormValue("duplicates"),
		KeyColumn:  strings.TrimSpace(r.FormValue("key")),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	// Render fully before sending headers so a write failure is still
	// reported as a JSON error.
	var buf bytes.Buffer
	if err := core.WriteCSV(&buf, res.Table); err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", cleanFileName(up.name)))
	w.Header().Set(HeaderRunID, res.RunID)
	w.Header().Set(HeaderDuplicatesRemoved, strconv.Itoa(res.DuplicatesRemoved))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleListRuns returns recent runs, newest first. Query: limit.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := history.DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSONStatus(w, http.StatusBadRequest, ErrorResponse{
				Error:   "invalid limit",
				Message: "The limit parameter must be a positive integer",
				Action:  "Pass a number such as ?limit=20",
				Code:    "REQ001",
			})
			return
		}
		limit = n
	}

	runs, err := s.service.History(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if runs == nil {
		runs = []history.Run{}
	}
	writeJSON(w, RunsResponse{Runs: runs})
}

// upload is the file part of a multipart request.
type upload struct {
	file   multipart.File
	form   *multipart.Form
	name   string
	format reader.Format
}

func (u *upload) input() application.Input {
	return application.Input{Path: u.name, Reader: u.file, Format: u.format}
}

// Close closes the file and removes any temp files the form spilled to disk.
func (u *upload) Close() error {
	return errors.Join(u.file.Close(), u.form.RemoveAll())
}

// parseUpload reads the multipart form and opens its "file" part. The body
// is capped a little above the configured file size to leave room for the
// other form fields.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Input.MaxFileSize+(1<<20))

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) || strings.Contains(err.Error(), "request body too large") {
			return nil, fmt.Errorf("%w: upload exceeds %d bytes", reader.ErrFileTooLarge, s.cfg.Input.MaxFileSize)
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, application.ErrNoInput
		}
		return nil, fmt.Errorf("parse form: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, application.ErrNoInput
		}
		return nil, fmt.Errorf("read upload: %w", err)
	}

	name := filepath.Base(header.Filename)
	format, err := reader.FormatFromPath(name)
	if err != nil {
		file.Close()
		return nil, err
	}

	return &upload{file: file, form: r.MultipartForm, name: name, format: format}, nil
}

// cleanFileName derives the download name: "clients.xlsx" becomes
// "clients_clean.csv".
func cleanFileName(source string) string {
	base := strings.TrimSuffix(source, filepath.Ext(source))
	if base == "" || base == "." {
		base = "output"
	}
	return base + "_clean.csv"
}

// clientIP returns the host part of r.RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
