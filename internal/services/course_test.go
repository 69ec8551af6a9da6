package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/coursecompass-backend/internal/apierr"
	"github.com/yungbote/coursecompass-backend/internal/repos"
	"github.com/yungbote/coursecompass-backend/internal/types"
)

func mustSeedCourse(t *testing.T, gdb *gorm.DB, userID uuid.UUID, title string) *types.Course {
	t.Helper()
	now := time.Now()
	course := &types.Course{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Code:      "CS101",
		Term:      "Fall 2026",
		Slug:      "cs101-fall-2026",
		Syllabus:  "Week 1: variables.",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := gdb.Create(course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return course
}

func mustSeedPlan(t *testing.T, gdb *gorm.DB, courseID uuid.UUID) *types.StudyPlan {
	t.Helper()
	raw, _ := json.Marshal(fallbackStudyPlan("Intro CS", time.Now()))
	now := time.Now()
	plan := &types.StudyPlan{
		ID:        uuid.New(),
		CourseID:  courseID,
		Content:   datatypes.JSON(raw),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := gdb.Create(plan).Error; err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	return plan
}

func newCourseEnv(t *testing.T) (*gorm.DB, CourseService, *types.User) {
	t.Helper()
	gdb := newTestDB(t)
	log := newTestLogger(t)
	user := mustSeedUser(t, gdb, "auth0|owner", "owner@example.com")
	svc := NewCourseService(gdb, log, &fakeUserResolver{user: user}, repos.NewCourseRepo(gdb, log), repos.NewStudyPlanRepo(gdb, log))
	return gdb, svc, user
}

func TestGetUserCoursesScopedToOwner(t *testing.T) {
	gdb, svc, user := newCourseEnv(t)
	mustSeedCourse(t, gdb, user.ID, "Mine")
	other := mustSeedUser(t, gdb, "auth0|other", "other@example.com")
	mustSeedCourse(t, gdb, other.ID, "Not Mine")

	courses, err := svc.GetUserCourses(context.Background())
	if err != nil {
		t.Fatalf("GetUserCourses: %v", err)
	}
	if len(courses) != 1 || courses[0].Title != "Mine" {
		t.Fatalf("courses = %+v, want only the owner's course", courses)
	}
}

func TestGetCourseDetailIncludesPlan(t *testing.T) {
	gdb, svc, user := newCourseEnv(t)
	course := mustSeedCourse(t, gdb, user.ID, "Intro CS")
	mustSeedPlan(t, gdb, course.ID)

	detail, err := svc.GetCourseDetail(context.Background(), course.ID)
	if err != nil {
		t.Fatalf("GetCourseDetail: %v", err)
	}
	if detail.Course.ID != course.ID {
		t.Fatalf("course id = %s", detail.Course.ID)
	}
	if detail.StudyPlan == nil {
		t.Fatal("study plan missing from detail")
	}
}

func TestGetCourseDetailHidesOtherUsersCourses(t *testing.T) {
	gdb, svc, _ := newCourseEnv(t)
	other := mustSeedUser(t, gdb, "auth0|other", "other@example.com")
	foreign := mustSeedCourse(t, gdb, other.ID, "Not Mine")

	_, err := svc.GetCourseDetail(context.Background(), foreign.ID)
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign course, got %v", err)
	}

	_, err = svc.GetCourseDetail(context.Background(), uuid.New())
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404 for missing course, got %v", err)
	}
}

func TestSetSessionIndex(t *testing.T) {
	gdb, svc, user := newCourseEnv(t)
	course := mustSeedCourse(t, gdb, user.ID, "Intro CS")

	updated, err := svc.SetSessionIndex(context.Background(), course.ID, 4)
	if err != nil {
		t.Fatalf("SetSessionIndex: %v", err)
	}
	if updated.SessionIndex != 4 {
		t.Fatalf("returned session index = %d", updated.SessionIndex)
	}

	var stored types.Course
	if err := gdb.First(&stored, "id = ?", course.ID).Error; err != nil {
		t.Fatalf("reload course: %v", err)
	}
	if stored.SessionIndex != 4 {
		t.Fatalf("stored session index = %d, want 4", stored.SessionIndex)
	}
}

func TestSetSessionIndexRejectsNegative(t *testing.T) {
	gdb, svc, user := newCourseEnv(t)
	course := mustSeedCourse(t, gdb, user.ID, "Intro CS")

	_, err := svc.SetSessionIndex(context.Background(), course.ID, -1)
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
