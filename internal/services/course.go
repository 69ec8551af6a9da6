package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursecompass-backend/internal/apierr"
	"github.com/yungbote/coursecompass-backend/internal/logger"
	"github.com/yungbote/coursecompass-backend/internal/repos"
	"github.com/yungbote/coursecompass-backend/internal/types"
)

type CourseDetail struct {
	Course    *types.Course    `json:"course"`
	StudyPlan *types.StudyPlan `json:"study_plan,omitempty"`
}

type CourseService interface {
	GetUserCourses(ctx context.Context) ([]*types.Course, error)
	GetCourseDetail(ctx context.Context, courseID uuid.UUID) (*CourseDetail, error)
	SetSessionIndex(ctx context.Context, courseID uuid.UUID, sessionIndex int) (*types.Course, error)
}

type courseService struct {
	db         *gorm.DB
	log        *logger.Logger
	users      UserResolver
	courseRepo repos.CourseRepo
	planRepo   repos.StudyPlanRepo
}

func NewCourseService(
	db *gorm.DB,
	baseLog *logger.Logger,
	users UserResolver,
	courseRepo repos.CourseRepo,
	planRepo repos.StudyPlanRepo,
) CourseService {
	serviceLog := baseLog.With("service", "CourseService")
	return &courseService{
		db:         db,
		log:        serviceLog,
		users:      users,
		courseRepo: courseRepo,
		planRepo:   planRepo,
	}
}

func (cs *courseService) GetUserCourses(ctx context.Context) ([]*types.Course, error) {
	user, err := cs.users.ResolveUser(ctx)
	if err != nil {
		return nil, err
	}
	courses, cErr := cs.courseRepo.GetByUserIDs(ctx, nil, []uuid.UUID{user.ID})
	if cErr != nil {
		cs.log.Error("GetUserCourses failed", "error", cErr, "user_id", user.ID)
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodeUpstreamError, fmt.Errorf("get user courses: %w", cErr))
	}
	return courses, nil
}

// ownedCourse loads a course and enforces ownership. Courses of other users
// read as not found, same as missing rows.
func (cs *courseService) ownedCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error) {
	user, err := cs.users.ResolveUser(ctx)
	if err != nil {
		return nil, err
	}
	courses, cErr := cs.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
	if cErr != nil {
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodeUpstreamError, fmt.Errorf("load course: %w", cErr))
	}
	if len(courses) == 0 || courses[0] == nil || courses[0].UserID != user.ID {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeNotFound, fmt.Errorf("course not found"))
	}
	return courses[0], nil
}

func (cs *courseService) GetCourseDetail(ctx context.Context, courseID uuid.UUID) (*CourseDetail, error) {
	course, err := cs.ownedCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	detail := &CourseDetail{Course: course}
	plans, pErr := cs.planRepo.GetByCourseIDs(ctx, nil, []uuid.UUID{course.ID})
	if pErr != nil {
		cs.log.Error("Load study plan failed", "error", pErr, "course_id", course.ID)
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodeUpstreamError, fmt.Errorf("load study plan: %w", pErr))
	}
	if len(plans) > 0 {
		detail.StudyPlan = plans[0]
	}
	return detail, nil
}

func (cs *courseService) SetSessionIndex(ctx context.Context, courseID uuid.UUID, sessionIndex int) (*types.Course, error) {
	if sessionIndex < 0 {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeValidationError, fmt.Errorf("session_index must be >= 0"))
	}
	course, err := cs.ownedCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if uErr := cs.courseRepo.UpdateSessionIndex(ctx, nil, course.ID, sessionIndex); uErr != nil {
		cs.log.Error("SetSessionIndex failed", "error", uErr, "course_id", course.ID)
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodePersistenceError, fmt.Errorf("update session index: %w", uErr))
	}
	course.SessionIndex = sessionIndex
	return course, nil
}
