package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/coursecompass-backend/internal/apierr"
	"github.com/yungbote/coursecompass-backend/internal/logger"
	"github.com/yungbote/coursecompass-backend/internal/services"
	"github.com/yungbote/coursecompass-backend/internal/types"
)

type CourseHandler struct {
	log           *logger.Logger
	planService   services.PlanService
	courseService services.CourseService
}

func NewCourseHandler(log *logger.Logger, planService services.PlanService, courseService services.CourseService) *CourseHandler {
	return &CourseHandler{
		log:           log.With("handler", "CourseHandler"),
		planService:   planService,
		courseService: courseService,
	}
}

type coursePayload struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Code  string    `json:"code"`
	Term  string    `json:"term"`
	Slug  string    `json:"slug"`
}

// POST /api/courses
// Multipart form: courseTitle, courseCode, term, file. All required; the
// syllabus text comes from the uploaded file. Responds with the created
// course and its study plan content.
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	courseTitle := c.PostForm("courseTitle")
	courseCode := c.PostForm("courseCode")
	term := c.PostForm("term")

	fileHeader, fErr := c.FormFile("file")
	if courseTitle == "" || courseCode == "" || term == "" || fErr != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationError, fmt.Errorf("missing required fields"))
		return
	}

	f, oErr := fileHeader.Open()
	if oErr != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationError, fmt.Errorf("could not read uploaded file"))
		return
	}
	syllabus, rErr := io.ReadAll(f)
	_ = f.Close()
	if rErr != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationError, fmt.Errorf("could not read uploaded file"))
		return
	}

	result, err := h.planService.CreateCourseWithPlan(c.Request.Context(), services.CreateCourseInput{
		Title:    courseTitle,
		Code:     courseCode,
		Term:     term,
		Syllabus: string(syllabus),
	})
	if err != nil {
		RespondAPIError(c, err)
		return
	}

	RespondOK(c, gin.H{
		"course": coursePayload{
			ID:    result.Course.ID,
			Title: result.Course.Title,
			Code:  result.Course.Code,
			Term:  result.Course.Term,
			Slug:  result.Course.Slug,
		},
		"studyPlan": result.StudyPlan,
	})
}

// GET /api/courses
func (h *CourseHandler) ListUserCourses(c *gin.Context) {
	courses, err := h.courseService.GetUserCourses(c.Request.Context())
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	if courses == nil {
		courses = []*types.Course{}
	}
	RespondOK(c, gin.H{"courses": courses})
}

// GET /api/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationError, fmt.Errorf("invalid course id"))
		return
	}
	detail, dErr := h.courseService.GetCourseDetail(c.Request.Context(), courseID)
	if dErr != nil {
		RespondAPIError(c, dErr)
		return
	}
	RespondOK(c, detail)
}

// PATCH /api/courses/:id/progress
func (h *CourseHandler) UpdateProgress(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationError, fmt.Errorf("invalid course id"))
		return
	}
	var req struct {
		SessionIndex *int `json:"session_index"`
	}
	if bErr := c.ShouldBindJSON(&req); bErr != nil || req.SessionIndex == nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationError, fmt.Errorf("session_index is required"))
		return
	}
	course, uErr := h.courseService.SetSessionIndex(c.Request.Context(), courseID, *req.SessionIndex)
	if uErr != nil {
		RespondAPIError(c, uErr)
		return
	}
	RespondOK(c, gin.H{"course": course})
}
