package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/okian/skillnav/internal/adapters/blob"
	"github.com/okian/skillnav/internal/adapters/http/api"
	workerpool "github.com/okian/skillnav/internal/adapters/mq/worker"
	repository "github.com/okian/skillnav/internal/adapters/repository"
	"github.com/okian/skillnav/internal/app/enrollment"
	"github.com/okian/skillnav/internal/app/reporting"
	model "github.com/okian/skillnav/internal/domain/model"
	report "github.com/okian/skillnav/internal/domain/report"
	"github.com/okian/skillnav/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats(context.Context) map[string]interface{} {
	return m.stats
}

type mockReports struct {
	pdf []byte
	err error
	got report.Input
}

func (m *mockReports) Generate(_ context.Context, in report.Input) ([]byte, error) {
	m.got = in
	return m.pdf, m.err
}

type mockFeedback struct {
	label string
	err   error
}

func (m *mockFeedback) Predict(_ context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: text is required", model.ErrInvalidInput)
	}
	return m.label, m.err
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func postMultipart(path string, values url.Values, files map[string]string) *http.Request {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vs := range values {
		for _, v := range vs {
			_ = mw.WriteField(k, v)
		}
	}
	for field, name := range files {
		fw, _ := mw.CreateFormFile(field, name)
		_, _ = fw.Write([]byte("content of " + name))
	}
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func candidateForm(name, email, certs string) url.Values {
	return url.Values{
		"name":                        {name},
		"email":                       {email},
		"degree":                      {"B.Tech"},
		"specialization":              {"CSE"},
		"phone_number":                {"9999999999"},
		"certifications":              {certs},
		"courses_completed":           {"DSA, OOP"},
		"programming_languages_known": {"Go,Java"},
	}
}

func decodeError(w *httptest.ResponseRecorder) errorBody {
	var body errorBody
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body
}

func TestCandidatesRouter(t *testing.T) {
	Convey("Given a candidates router over an in-memory registry", t, func() {
		ctx := context.Background()
		files, err := blob.New(ctx, t.TempDir())
		So(err, ShouldBeNil)
		registry := repository.NewInMemoryRegistry(repository.WithCapacity(1))
		svc := enrollment.New(registry, enrollment.WithFileStore(files), enrollment.WithLogger(logger.Nop()))
		h := api.NewCandidatesRouter(svc, &mockStatsProvider{stats: map[string]interface{}{"candidates": 0}},
			api.WithLogger(logger.Nop()))

		Convey("When the root is requested", func() {
			w := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))

			Convey("Then the welcome message is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "Welcome to AI Skill Navigator Application.")
			})
		})

		Convey("When a candidate with an AWS certification registers with files", func() {
			form := candidateForm("Ravi", "Ravi@Example.com", " AWS , Scrum")
			w := serve(h, postMultipart("/submit_candidate_info", form, map[string]string{
				"cert_files":   "aws.pdf",
				"course_files": "dsa.pdf",
			}))

			Convey("Then the Java batch is reported", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body map[string]string
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body["message"], ShouldEqual, "Candidate Ravi has been allocated to the Java batch.")
				So(body["batch"], ShouldEqual, "Java")
			})

			Convey("And the candidate can be looked up with attachments", func() {
				w := serve(h, httptest.NewRequest(http.MethodGet, "/candidates/ravi@example.com", nil))
				So(w.Code, ShouldEqual, http.StatusOK)

				var c model.Candidate
				So(json.Unmarshal(w.Body.Bytes(), &c), ShouldBeNil)
				So(c.Email, ShouldEqual, "ravi@example.com")
				So(*c.BatchName, ShouldEqual, model.BatchJava)
				So(c.CoursesCompleted, ShouldResemble, []string{"DSA", "OOP"})
				So(c.Attachments, ShouldHaveLength, 2)
			})

			Convey("And a second Java candidate is rejected as batch full", func() {
				w := serve(h, postForm("/submit_candidate_info", candidateForm("Asha", "asha@example.com", "aws")))
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				body := decodeError(w)
				So(body.Code, ShouldEqual, "batch_full")
				So(body.Message, ShouldEqual, "Java batch is full. Cannot allocate at this time")
			})

			Convey("And the same email registering again conflicts", func() {
				w := serve(h, postForm("/submit_candidate_info", candidateForm("Ravi", "ravi@example.com", "Python")))
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(decodeError(w).Code, ShouldEqual, "duplicate")
			})

			Convey("And progress can be tracked", func() {
				w := serve(h, postForm("/update_progress/ravi@example.com", url.Values{"course_completion": {"45"}}))
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "Progress updated for Ravi")

				w = serve(h, postForm("/record_mcq_scores/ravi@example.com", url.Values{"score": {"4"}, "total": {"10"}}))
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "MCQ score recorded for Ravi")

				w = serve(h, postForm("/record_project_evaluation/ravi@example.com/", url.Values{"score": {"70"}, "feedback": {"solid"}}))
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "Project evaluation recorded for Ravi")

				Convey("And recommendations reflect the progress", func() {
					w := serve(h, httptest.NewRequest(http.MethodGet, "/get_recommendations/ravi@example.com", nil))
					So(w.Code, ShouldEqual, http.StatusOK)

					var rec enrollment.Recommendation
					So(json.Unmarshal(w.Body.Bytes(), &rec), ShouldBeNil)
					So(rec.Candidate, ShouldEqual, "Ravi")
					So(rec.Recommendations["focus_area"], ShouldEqual, "MCQ Performance")
					So(rec.Findings, ShouldHaveLength, 2)
				})
			})

			Convey("And an out-of-range completion is rejected", func() {
				w := serve(h, postForm("/update_progress/ravi@example.com", url.Values{"course_completion": {"140"}}))
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w).Code, ShouldEqual, "bad_request")
			})

			Convey("And a non-numeric MCQ score is rejected", func() {
				w := serve(h, postForm("/record_mcq_scores/ravi@example.com", url.Values{"score": {"four"}, "total": {"10"}}))
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w).Message, ShouldContainSubstring, "score must be an integer")
			})

			Convey("And batches list the candidate under Java only", func() {
				w := serve(h, httptest.NewRequest(http.MethodGet, "/batches/", nil))
				So(w.Code, ShouldEqual, http.StatusOK)

				var batches map[string][]model.Candidate
				So(json.Unmarshal(w.Body.Bytes(), &batches), ShouldBeNil)
				So(batches["Java"], ShouldHaveLength, 1)
				So(batches[".NET"], ShouldBeEmpty)
				So(batches["Data Engineering"], ShouldBeEmpty)
				So(batches, ShouldContainKey, ".NET")
			})
		})

		Convey("When certifications match no batch", func() {
			w := serve(h, postForm("/submit_candidate_info", candidateForm("Meera", "meera@example.com", "PMP")))

			Convey("Then no_match is returned with the original message", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				body := decodeError(w)
				So(body.Code, ShouldEqual, "no_match")
				So(body.Message, ShouldEqual, "No matching batch found for the given certifications.")
			})
		})

		Convey("When a required field is missing", func() {
			form := candidateForm("", "x@example.com", "aws")
			w := serve(h, postForm("/submit_candidate_info", form))

			Convey("Then the request is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w).Code, ShouldEqual, "bad_request")
			})
		})

		Convey("When an unknown candidate is addressed", func() {
			paths := []*http.Request{
				postForm("/update_progress/ghost@example.com", url.Values{"course_completion": {"10"}}),
				postForm("/record_mcq_scores/ghost@example.com", url.Values{"score": {"1"}, "total": {"2"}}),
				postForm("/record_project_evaluation/ghost@example.com", url.Values{"score": {"1"}, "feedback": {"x"}}),
				httptest.NewRequest(http.MethodGet, "/get_recommendations/ghost@example.com", nil),
				httptest.NewRequest(http.MethodGet, "/candidates/ghost@example.com", nil),
			}

			Convey("Then every endpoint answers Candidate Not Found", func() {
				for _, req := range paths {
					w := serve(h, req)
					So(w.Code, ShouldEqual, http.StatusNotFound)
					body := decodeError(w)
					So(body.Code, ShouldEqual, "not_found")
					So(body.Message, ShouldEqual, "Candidate Not Found")
				}
			})
		})

		Convey("When health and stats are requested", func() {
			health := serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			stats := serve(h, httptest.NewRequest(http.MethodGet, "/stats", nil))

			Convey("Then both respond", func() {
				So(health.Code, ShouldEqual, http.StatusOK)
				So(stats.Code, ShouldEqual, http.StatusOK)
				So(stats.Body.String(), ShouldContainSubstring, "candidates")
			})
		})

		Convey("When the docs are requested", func() {
			w := serve(h, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))

			Convey("Then the OpenAPI document is served", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "/submit_candidate_info")
			})
		})
	})
}

func TestReportsRouter(t *testing.T) {
	Convey("Given a reports router", t, func() {
		reports := &mockReports{pdf: []byte("%PDF-1.3 test")}
		h := api.NewReportsRouter(reports, &mockStatsProvider{stats: map[string]interface{}{}}, api.WithLogger(logger.Nop()))
		body := `{"batch":"Java","mcq_scores":{"MCQ1":7},"project_score":8,"course_completion_status":75,"internships":["Acme"],"certifications":["AWS"]}`

		Convey("When the root is requested", func() {
			w := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
			So(w.Body.String(), ShouldContainSubstring, "AI Recommendation System is up and running!")
		})

		Convey("When a report is requested", func() {
			w := serve(h, httptest.NewRequest(http.MethodPost, "/recommendations", strings.NewReader(body)))

			Convey("Then a PDF attachment is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/pdf")
				So(w.Header().Get("Content-Disposition"), ShouldEqual, "attachment; filename=recommendations.pdf")
				So(w.Body.String(), ShouldStartWith, "%PDF")
				So(reports.got.McqScores["MCQ1"], ShouldEqual, 7)
			})
		})

		Convey("When the body is not JSON", func() {
			w := serve(h, httptest.NewRequest(http.MethodPost, "/recommendations", strings.NewReader("batch=Java")))

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		cases := []struct {
			name   string
			err    error
			status int
			code   string
		}{
			{"invalid input", fmt.Errorf("%w: batch is required", model.ErrInvalidInput), http.StatusBadRequest, "bad_request"},
			{"a full pool", fmt.Errorf("%w: queue is full", workerpool.ErrBackpressure), http.StatusTooManyRequests, "backpressure"},
			{"a timed out generation", fmt.Errorf("%w: %w", reporting.ErrExternalService, context.DeadlineExceeded), http.StatusGatewayTimeout, "timeout"},
			{"a failed generation", fmt.Errorf("%w: quota", reporting.ErrExternalService), http.StatusInternalServerError, "external_service_failure"},
			{"an unexpected error", errors.New("boom"), http.StatusInternalServerError, "internal"},
		}
		for _, tc := range cases {
			Convey("When the service fails with "+tc.name, func() {
				reports.err = tc.err
				w := serve(h, httptest.NewRequest(http.MethodPost, "/recommendations", strings.NewReader(body)))

				Convey("Then the status is mapped", func() {
					So(w.Code, ShouldEqual, tc.status)
					So(decodeError(w).Code, ShouldEqual, tc.code)
				})
			})
		}
	})
}

func TestSentimentRouter(t *testing.T) {
	Convey("Given a sentiment router", t, func() {
		h := api.NewSentimentRouter(&mockFeedback{label: "positive"}, &mockStatsProvider{stats: map[string]interface{}{}},
			api.WithLogger(logger.Nop()))

		Convey("When feedback is posted", func() {
			w := serve(h, httptest.NewRequest(http.MethodPost, "/predict_feedback", strings.NewReader(`{"text":"great mentors"}`)))

			Convey("Then the label is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, `{"sentiment":"positive"}`)
			})
		})

		Convey("When the text is empty", func() {
			w := serve(h, httptest.NewRequest(http.MethodPost, "/predict_feedback", strings.NewReader(`{"text":""}`)))

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When a route does not exist", func() {
			w := serve(h, httptest.NewRequest(http.MethodGet, "/events", nil))

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestErrorWrapping(t *testing.T) {
	Convey("Given wrapped API errors", t, func() {
		cause := errors.New("cause")

		Convey("Then WrapKind exposes kind and cause", func() {
			err := api.WrapKind("op", api.ErrBadRequest, cause)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "op: bad request: cause")
		})

		Convey("Then Wrap classifies domain errors", func() {
			err := api.Wrap("op", repository.ErrNotFound)
			So(errors.Is(err, api.ErrNotFound), ShouldBeTrue)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			So(api.Wrap("op", nil), ShouldBeNil)
		})

		Convey("Then NewKind carries only the kind", func() {
			err := api.NewKind("op", api.ErrBackpressure)
			So(errors.Is(err, api.ErrBackpressure), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "op: backpressure")
		})
	})
}
