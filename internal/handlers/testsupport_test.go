package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/coursecompass-backend/internal/logger"
	"github.com/yungbote/coursecompass-backend/internal/services"
	"github.com/yungbote/coursecompass-backend/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newHandlerLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

type fakePlanService struct {
	result *services.CreateCourseResult
	err    error
	calls  int
	input  services.CreateCourseInput
}

func (f *fakePlanService) CreateCourseWithPlan(ctx context.Context, input services.CreateCourseInput) (*services.CreateCourseResult, error) {
	f.calls++
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeCourseService struct {
	courses      []*types.Course
	detail       *services.CourseDetail
	updated      *types.Course
	err          error
	sessionIndex int
}

func (f *fakeCourseService) GetUserCourses(ctx context.Context) ([]*types.Course, error) {
	return f.courses, f.err
}

func (f *fakeCourseService) GetCourseDetail(ctx context.Context, courseID uuid.UUID) (*services.CourseDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.detail, nil
}

func (f *fakeCourseService) SetSessionIndex(ctx context.Context, courseID uuid.UUID, sessionIndex int) (*types.Course, error) {
	f.sessionIndex = sessionIndex
	if f.err != nil {
		return nil, f.err
	}
	return f.updated, nil
}

type fakeBridgeService struct {
	creds *services.SessionCredentials
	err   error
}

func (f *fakeBridgeService) ResolveUser(ctx context.Context) (*types.User, error) {
	return nil, f.err
}

func (f *fakeBridgeService) BridgeSession(ctx context.Context) (*services.SessionCredentials, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.creds, nil
}

// multipartBody builds a multipart form with the given fields plus, when
// syllabus is non-nil, a "file" part carrying it.
func multipartBody(t *testing.T, fields map[string]string, syllabus *string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if syllabus != nil {
		part, err := w.CreateFormFile("file", "syllabus.txt")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte(*syllabus)); err != nil {
			t.Fatalf("write syllabus: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func jsonBody(t *testing.T, payload any) (io.Reader, string) {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return bytes.NewReader(raw), "application/json"
}

func performRequest(router *gin.Engine, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope ErrorEnvelope
	decodeBody(t, rec, &envelope)
	return envelope.Error.Code
}
