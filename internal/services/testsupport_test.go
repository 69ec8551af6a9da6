package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/coursecompass-backend/internal/logger"
	"github.com/yungbote/coursecompass-backend/internal/requestdata"
	"github.com/yungbote/coursecompass-backend/internal/types"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&types.User{}, &types.Course{}, &types.StudyPlan{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return gdb
}

func ctxWithIdentity(subject, email, name string) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		TokenString: "test-token",
		Subject:     subject,
		Email:       email,
		Name:        name,
	})
}

type fakeSupabaseClient struct {
	createErr   error
	linkErr     error
	createCalls int
	linkCalls   int
	lastEmail   string
	link        MagicLink
}

func (f *fakeSupabaseClient) CreateUser(ctx context.Context, email string, metadata map[string]any) error {
	f.createCalls++
	f.lastEmail = email
	return f.createErr
}

func (f *fakeSupabaseClient) GenerateMagicLink(ctx context.Context, email string) (*MagicLink, error) {
	f.linkCalls++
	f.lastEmail = email
	if f.linkErr != nil {
		return nil, f.linkErr
	}
	link := f.link
	if link.HashedToken == "" {
		link.HashedToken = "hashed-token"
	}
	return &link, nil
}

type fakeGenerationClient struct {
	text  string
	err   error
	calls int
}

func (f *fakeGenerationClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeUserResolver struct {
	user *types.User
	err  error
}

func (f *fakeUserResolver) ResolveUser(ctx context.Context) (*types.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func mustSeedUser(t *testing.T, gdb *gorm.DB, subject, email string) *types.User {
	t.Helper()
	now := time.Now()
	u := &types.User{
		ID:        uuid.New(),
		Auth0ID:   subject,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := gdb.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}
