package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/coursecompass-backend/internal/apierr"
	"github.com/yungbote/coursecompass-backend/internal/logger"
	"github.com/yungbote/coursecompass-backend/internal/normalization"
	"github.com/yungbote/coursecompass-backend/internal/repos"
	"github.com/yungbote/coursecompass-backend/internal/types"
)

// syllabusPromptLimit bounds how much syllabus text goes into the prompt.
const syllabusPromptLimit = 5000

type CreateCourseInput struct {
	Title    string
	Code     string
	Term     string
	Syllabus string
}

type CreateCourseResult struct {
	Course    *types.Course
	StudyPlan types.PlanContent
}

type PlanService interface {
	CreateCourseWithPlan(ctx context.Context, input CreateCourseInput) (*CreateCourseResult, error)
}

type planService struct {
	db         *gorm.DB
	log        *logger.Logger
	users      UserResolver
	courseRepo repos.CourseRepo
	planRepo   repos.StudyPlanRepo
	ai         GenerationClient
}

func NewPlanService(
	db *gorm.DB,
	baseLog *logger.Logger,
	users UserResolver,
	courseRepo repos.CourseRepo,
	planRepo repos.StudyPlanRepo,
	ai GenerationClient,
) PlanService {
	serviceLog := baseLog.With("service", "PlanService")
	return &planService{
		db:         db,
		log:        serviceLog,
		users:      users,
		courseRepo: courseRepo,
		planRepo:   planRepo,
		ai:         ai,
	}
}

// CreateCourseWithPlan is the whole flow: validate, resolve owner, generate
// (degrading to the fallback plan rather than erroring), then persist course
// and plan. The two inserts are not atomic; a failed plan insert deletes the
// course it orphaned.
func (ps *planService) CreateCourseWithPlan(ctx context.Context, input CreateCourseInput) (*CreateCourseResult, error) {
	title := normalization.ParseInputString(input.Title)
	code := normalization.ParseInputString(input.Code)
	term := normalization.ParseInputString(input.Term)
	if title == "" || code == "" || term == "" || strings.TrimSpace(input.Syllabus) == "" {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeValidationError, fmt.Errorf("courseTitle, courseCode, term and file are required"))
	}

	user, err := ps.users.ResolveUser(ctx)
	if err != nil {
		return nil, err
	}

	content := ps.generatePlan(ctx, title, input.Syllabus)

	raw, mErr := json.Marshal(content)
	if mErr != nil {
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodePersistenceError, fmt.Errorf("encode plan content: %w", mErr))
	}

	now := time.Now()
	course := &types.Course{
		ID:        uuid.New(),
		UserID:    user.ID,
		Title:     title,
		Code:      code,
		Term:      term,
		Slug:      normalization.CourseSlug(code, term),
		Syllabus:  input.Syllabus,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, cErr := ps.courseRepo.Create(ctx, nil, []*types.Course{course}); cErr != nil {
		ps.log.Error("Course insert failed", "error", cErr, "user_id", user.ID)
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodePersistenceError, fmt.Errorf("create course: %w", cErr))
	}

	plan := &types.StudyPlan{
		ID:        uuid.New(),
		CourseID:  course.ID,
		Content:   datatypes.JSON(raw),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, pErr := ps.planRepo.Create(ctx, nil, []*types.StudyPlan{plan}); pErr != nil {
		ps.log.Error("Study plan insert failed, deleting course", "error", pErr, "course_id", course.ID)
		if dErr := ps.courseRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{course.ID}); dErr != nil {
			ps.log.Error("Compensating course delete failed", "error", dErr, "course_id", course.ID)
		}
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodePersistenceError, fmt.Errorf("create study plan: %w", pErr))
	}

	return &CreateCourseResult{Course: course, StudyPlan: content}, nil
}

// generatePlan never fails: a generation or parse error degrades to the
// deterministic fallback plan.
func (ps *planService) generatePlan(ctx context.Context, courseTitle, syllabus string) types.PlanContent {
	prompt := buildStudyPlanPrompt(truncateSyllabus(syllabus))

	text, err := ps.ai.GenerateText(ctx, prompt)
	if err != nil {
		ps.log.Warn("Generation call failed, substituting fallback plan", "error", err)
		return fallbackStudyPlan(courseTitle, time.Now())
	}

	content, pErr := parsePlanContent(text)
	if pErr != nil {
		ps.log.Warn("Generated plan unparsable, substituting fallback plan", "error", pErr)
		return fallbackStudyPlan(courseTitle, time.Now())
	}

	normalizePlanContent(content)
	return *content
}

func buildStudyPlanPrompt(syllabus string) string {
	return fmt.Sprintf(`Create a comprehensive study plan for the following course syllabus:
%s

The study plan should include:
1. A list of study sessions, each covering a specific topic or concept
2. Recommended online study materials
3. Study strategies specific to the course content

Format the response as JSON with the following structure:
{
  "sessions": [
    {
      "id": number,
      "title": string,
      "description": string,
      "date": "YYYY-MM-DD",
      "duration": number,
      "priority": "high" | "medium" | "low",
      "completed": boolean
    }
  ],
  "recommendedLinks": string[],
  "studyStrategies": string[]
}
Respond with JSON only, no surrounding prose.`, syllabus)
}

func truncateSyllabus(s string) string {
	runes := []rune(s)
	if len(runes) <= syllabusPromptLimit {
		return s
	}
	return string(runes[:syllabusPromptLimit])
}

// parsePlanContent tries the raw text as JSON first, then the largest
// brace-delimited substring (models often wrap JSON in prose or fences).
func parsePlanContent(text string) (*types.PlanContent, error) {
	var content types.PlanContent
	if err := json.Unmarshal([]byte(text), &content); err == nil {
		return &content, nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object found in generated text")
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &content); err != nil {
		return nil, fmt.Errorf("extracted JSON did not parse: %w", err)
	}
	return &content, nil
}

// normalizePlanContent enforces the parts of the plan contract the generator
// is known to violate: the closed priority set and id uniqueness within the
// plan. Unknown priorities coerce to medium; duplicate or non-positive ids
// are reassigned to the smallest unused positive integer.
func normalizePlanContent(content *types.PlanContent) {
	seen := map[int]bool{}
	next := 1
	for i := range content.Sessions {
		s := &content.Sessions[i]
		if !s.Priority.Valid() {
			s.Priority = types.PlanPriorityMedium
		}
		if s.Duration < 0 {
			s.Duration = 0
		}
		if s.ID <= 0 || seen[s.ID] {
			for seen[next] {
				next++
			}
			s.ID = next
		}
		seen[s.ID] = true
	}
	if content.Sessions == nil {
		content.Sessions = []types.StudySession{}
	}
	if content.RecommendedLinks == nil {
		content.RecommendedLinks = []string{}
	}
	if content.StudyStrategies == nil {
		content.StudyStrategies = []string{}
	}
}

// fallbackStudyPlan is the deterministic generic plan: exactly three sessions
// seeded from the course title, with fixed resource links and strategies.
func fallbackStudyPlan(courseTitle string, now time.Time) types.PlanContent {
	day := func(offset int) string {
		return now.AddDate(0, 0, offset).Format("2006-01-02")
	}
	return types.PlanContent{
		Sessions: []types.StudySession{
			{
				ID:          1,
				Title:       courseTitle + ": Orientation",
				Description: "Review the syllabus and map out key topics, deadlines, and grading weights.",
				Date:        day(2),
				Duration:    60,
				Priority:    types.PlanPriorityHigh,
			},
			{
				ID:          2,
				Title:       courseTitle + ": Core Concepts",
				Description: "Work through the first units of material and note anything that needs a second pass.",
				Date:        day(7),
				Duration:    90,
				Priority:    types.PlanPriorityMedium,
			},
			{
				ID:          3,
				Title:       courseTitle + ": Review & Practice",
				Description: "Consolidate notes and self-test on everything covered so far.",
				Date:        day(14),
				Duration:    60,
				Priority:    types.PlanPriorityMedium,
			},
		},
		RecommendedLinks: []string{
			"https://www.khanacademy.org",
			"https://www.coursera.org",
			"https://quizlet.com",
		},
		StudyStrategies: []string{
			"Study in focused 25-minute blocks with short breaks between them.",
			"Rewrite lecture notes in your own words within a day of each class.",
			"Schedule a weekly review session covering everything to date.",
		},
	}
}
