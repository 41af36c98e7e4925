package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/skillnav/internal/app/enrollment"
	model "github.com/okian/skillnav/internal/domain/model"
)

// CandidateService is what the candidates API needs from the enrollment
// use-cases.
type CandidateService interface {
	Submit(ctx context.Context, c model.Candidate, uploads []enrollment.Upload) (model.Candidate, error)
	UpdateCompletion(ctx context.Context, email string, pct float64) (model.Candidate, error)
	RecordMcq(ctx context.Context, email string, score model.McqScore) (model.Candidate, error)
	RecordProjectEvaluation(ctx context.Context, email string, eval model.ProjectEvaluation) (model.Candidate, error)
	Recommendations(ctx context.Context, email string) (enrollment.Recommendation, error)
	Candidate(ctx context.Context, email string) (model.Candidate, error)
	Batches(ctx context.Context) map[model.Batch][]model.Candidate
}

// Upload form fields.
var uploadFields = []struct {
	field string
	kind  model.AttachmentKind
}{
	{"cert_files", model.AttachmentCertification},
	{"internship_files", model.AttachmentInternship},
	{"course_files", model.AttachmentCourse},
}

const welcomeCandidates = "Welcome to AI Skill Navigator Application."

// NewCandidatesRouter returns the candidates service handler.
func NewCandidatesRouter(svc CandidateService, stats StatsProvider, opts ...Option) http.Handler {
	c := newConfig(opts)
	h := &candidatesHandler{svc: svc, maxUploadBytes: c.maxUploadBytes}

	r := newRouter(c, welcomeCandidates, stats)
	r.Post("/submit_candidate_info", h.handleSubmit)
	r.Post("/update_progress/{email}", h.handleUpdateProgress)
	r.Post("/record_mcq_scores/{email}", h.handleRecordMcq)
	r.Post("/record_project_evaluation/{email}", h.handleRecordProject)
	r.Get("/get_recommendations/{email}", h.handleRecommendations)
	r.Get("/batches", h.handleBatches)
	r.Get("/candidates/{email}", h.handleCandidate)
	return r
}

type candidatesHandler struct {
	svc            CandidateService
	maxUploadBytes int64
}

func (h *candidatesHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_candidate_info"

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := parseForm(r, h.maxUploadBytes); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	candidate := model.Candidate{
		Name:                      r.FormValue("name"),
		Email:                     r.FormValue("email"),
		Degree:                    r.FormValue("degree"),
		Specialization:            r.FormValue("specialization"),
		PhoneNumber:               r.FormValue("phone_number"),
		Certifications:            model.SplitList(r.FormValue("certifications")),
		InternshipDetails:         r.FormValue("internship_details"),
		CoursesCompleted:          model.SplitList(r.FormValue("courses_completed")),
		LinkedInProfile:           r.FormValue("linkedin_profile"),
		GitHubProfile:             r.FormValue("github_profile"),
		ProgrammingLanguagesKnown: model.SplitList(r.FormValue("programming_languages_known")),
	}

	stored, err := h.svc.Submit(r.Context(), candidate, uploadsOf(r))
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}

	batch := ""
	if stored.BatchName != nil {
		batch = stored.BatchName.String()
	}
	writeJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Candidate %s has been allocated to the %s batch.", stored.Name, batch),
		Batch:   batch,
	})
}

func (h *candidatesHandler) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_progress"

	if err := parseForm(r, h.maxUploadBytes); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	pct, err := formFloat(r, "course_completion")
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	c, err := h.svc.UpdateCompletion(r.Context(), emailParam(r), pct)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Progress updated for " + c.Name})
}

func (h *candidatesHandler) handleRecordMcq(w http.ResponseWriter, r *http.Request) {
	const op = "api.record_mcq_scores"

	if err := parseForm(r, h.maxUploadBytes); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	score, err := formInt(r, "score")
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	total, err := formInt(r, "total")
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	c, err := h.svc.RecordMcq(r.Context(), emailParam(r), model.McqScore{Score: score, Total: total})
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "MCQ score recorded for " + c.Name})
}

func (h *candidatesHandler) handleRecordProject(w http.ResponseWriter, r *http.Request) {
	const op = "api.record_project_evaluation"

	if err := parseForm(r, h.maxUploadBytes); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	score, err := formInt(r, "score")
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	eval := model.ProjectEvaluation{Score: score, Feedback: r.FormValue("feedback")}
	c, err := h.svc.RecordProjectEvaluation(r.Context(), emailParam(r), eval)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Project evaluation recorded for " + c.Name})
}

func (h *candidatesHandler) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_recommendations"

	rec, err := h.svc.Recommendations(r.Context(), emailParam(r))
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *candidatesHandler) handleBatches(w http.ResponseWriter, r *http.Request) {
	batches := h.svc.Batches(r.Context())
	out := make(map[string][]model.Candidate, len(model.Batches()))
	for _, b := range model.Batches() {
		list := batches[b]
		if list == nil {
			list = []model.Candidate{}
		}
		out[b.String()] = list
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *candidatesHandler) handleCandidate(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_candidate"

	c, err := h.svc.Candidate(r.Context(), emailParam(r))
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// parseForm accepts multipart and urlencoded bodies alike.
func parseForm(r *http.Request, maxMemory int64) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return fmt.Errorf("parse multipart form: %w", err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parse form: %w", err)
	}
	return nil
}

func formInt(r *http.Request, field string) (int, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", field)
	}
	return n, nil
}

func formFloat(r *http.Request, field string) (float64, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", field)
	}
	return f, nil
}

// uploadsOf collects the attached files; empty file parts are skipped.
func uploadsOf(r *http.Request) []enrollment.Upload {
	if r.MultipartForm == nil {
		return nil
	}
	var uploads []enrollment.Upload
	for _, f := range uploadFields {
		for _, fh := range r.MultipartForm.File[f.field] {
			if fh.Filename == "" {
				continue
			}
			uploads = append(uploads, enrollment.Upload{
				Kind:     f.kind,
				Filename: fh.Filename,
				Open:     opener(fh),
			})
		}
	}
	return uploads
}

func opener(fh *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %w", model.ErrInvalidInput, fh.Filename, err)
		}
		return f, nil
	}
}
