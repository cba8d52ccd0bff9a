package server

import (
	"encoding/base64"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"challan-service/internal/models"
	"challan-service/internal/parsers"
	"challan-service/internal/pipeline"
	"challan-service/internal/profile"
	"challan-service/internal/writer"
	"challan-service/pkg/errors"
)

// multipart fields holding upload files
const (
	fieldPayroll     = "payroll"
	fieldPFPayroll   = "pf_payroll"
	fieldESIPayroll  = "esi_payroll"
	fieldPFRoster    = "pf_roster"
	fieldESIRoster   = "esi_roster"
	fieldESITemplate = "esi_template"
)

// multipartMemory is how much of an upload is held in memory before spilling to disk
const multipartMemory = 8 << 20

type profileView struct {
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases,omitempty"`
	Description string   `json:"description"`
	Layout      string   `json:"layout"`
	Uploads     []string `json:"uploads"`
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	profiles := profile.All()
	views := make([]profileView, 0, len(profiles))
	for _, p := range profiles {
		uploads := []string{fieldPayroll, fieldPFRoster, fieldESIRoster}
		if p.Layout == profile.LayoutSplit {
			uploads = []string{fieldPFPayroll, fieldESIPayroll, fieldPFRoster, fieldESIRoster}
		}
		views = append(views, profileView{
			Name:        p.Name,
			Aliases:     p.Aliases,
			Description: p.Description,
			Layout:      p.Layout.String(),
			Uploads:     uploads,
		})
	}
	Success(w, views, GetRequestID(r.Context()))
}

type artifactsView struct {
	PFFileName  string `json:"pf_file_name"`
	PFText      string `json:"pf_text"`
	ESIFileName string `json:"esi_file_name"`
	ESIWorkbook string `json:"esi_workbook"`
}

type challanView struct {
	RunID   string            `json:"run_id"`
	Company string            `json:"company"`
	Period  string            `json:"period"`
	Cutoff  string            `json:"cutoff"`
	Summary *pipeline.Summary `json:"summary"`

	PFVerification  []models.ReconciliationRecord `json:"pf_verification"`
	ESIVerification []models.ReconciliationRecord `json:"esi_verification"`
	PFRecords       []models.ContributionRecord   `json:"pf_records"`
	ESIRecords      []models.AttendanceRecord     `json:"esi_records"`

	Artifacts artifactsView `json:"artifacts"`
}

func (s *Server) handleChallans(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		Fail(w, http.StatusBadRequest, "invalid_request", "request must be multipart/form-data within the size limit", reqID)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	req, err := s.buildRequest(r)
	if err != nil {
		FailError(w, err, reqID)
		return
	}

	result, err := s.pipeline.Run(r.Context(), req)
	if err != nil {
		FailError(w, err, reqID)
		return
	}

	Success(w, challanView{
		RunID:           result.RunID,
		Company:         result.Company,
		Period:          result.Period.String(),
		Cutoff:          result.Cutoff.Format("2006-01-02"),
		Summary:         result.Summary,
		PFVerification:  result.PF.Verification,
		ESIVerification: result.ESI.Verification,
		PFRecords:       result.PF.Records,
		ESIRecords:      result.ESI.Records,
		Artifacts: artifactsView{
			PFFileName:  writer.PFFileName,
			PFText:      string(result.Artifacts.PF),
			ESIFileName: writer.ESIFileName,
			ESIWorkbook: base64.StdEncoding.EncodeToString(result.Artifacts.ESI),
		},
	}, reqID)
}

func (s *Server) buildRequest(r *http.Request) (*pipeline.Request, error) {
	p, err := profile.Lookup(r.FormValue("company"))
	if err != nil {
		return nil, err
	}
	req := &pipeline.Request{Profile: p}

	if value := strings.TrimSpace(r.FormValue("period")); value != "" {
		period, err := models.ParsePeriod(value)
		if err != nil {
			return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "period", value, err)
		}
		req.Period = period
	}
	if value := strings.TrimSpace(r.FormValue("as_of")); value != "" {
		asOf, err := time.Parse("2006-01-02", value)
		if err != nil {
			return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "as_of", value, err)
		}
		req.AsOf = asOf
	}

	uploads := []struct {
		field  string
		source *parsers.Source
	}{
		{fieldPayroll, &req.Sources.Payroll},
		{fieldPFPayroll, &req.Sources.PFPayroll},
		{fieldESIPayroll, &req.Sources.ESIPayroll},
		{fieldPFRoster, &req.Sources.PFRoster},
		{fieldESIRoster, &req.Sources.ESIRoster},
		{fieldESITemplate, &req.Sources.ESITemplate},
	}
	for _, upload := range uploads {
		source, err := formSource(r, upload.field)
		if err != nil {
			return nil, err
		}
		*upload.source = source
	}

	return req, nil
}

// formSource reads an uploaded file into memory. A missing field yields a
// zero Source.
func formSource(r *http.Request, field string) (parsers.Source, error) {
	file, header, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return parsers.Source{}, nil
	}
	if err != nil {
		return parsers.Source{}, errors.FileError(errors.CodeFileCorrupted, field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return parsers.Source{}, errors.FileError(errors.CodeFileCorrupted, header.Filename, err)
	}
	return parsers.BytesSource(header.Filename, data), nil
}

func (s *Server) handleIFSC(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	result, err := s.ifsc.Lookup(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		FailError(w, err, reqID)
		return
	}
	Success(w, result, reqID)
}
