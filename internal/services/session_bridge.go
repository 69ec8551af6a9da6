package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursecompass-backend/internal/apierr"
	"github.com/yungbote/coursecompass-backend/internal/logger"
	"github.com/yungbote/coursecompass-backend/internal/repos"
	"github.com/yungbote/coursecompass-backend/internal/requestdata"
	"github.com/yungbote/coursecompass-backend/internal/types"
)

type SessionCredentials struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// UserResolver maps the verified identity in the request context to the local
// user row, creating it on first sight. Always derived from the verified
// token subject, never from client-supplied ids.
type UserResolver interface {
	ResolveUser(ctx context.Context) (*types.User, error)
}

type SessionBridgeService interface {
	UserResolver
	BridgeSession(ctx context.Context) (*SessionCredentials, error)
}

type sessionBridgeService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	supabase SupabaseAdminClient
}

func NewSessionBridgeService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	supabase SupabaseAdminClient,
) SessionBridgeService {
	serviceLog := baseLog.With("service", "SessionBridgeService")
	return &sessionBridgeService{
		db:       db,
		log:      serviceLog,
		userRepo: userRepo,
		supabase: supabase,
	}
}

// ResolveUser upserts by auth0_id. Absent rows are created; present rows get
// their email/name refreshed so the local profile tracks the provider.
// Idempotent: bridging twice leaves exactly one row per subject.
func (sbs *sessionBridgeService) ResolveUser(ctx context.Context) (*types.User, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.Subject == "" {
		return nil, apierr.New(http.StatusUnauthorized, apierr.CodeUnauthenticated, fmt.Errorf("no verified identity in request context"))
	}

	var user *types.User
	err := sbs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, fErr := sbs.userRepo.GetByAuth0IDs(ctx, tx, []string{rd.Subject})
		if fErr != nil {
			return fmt.Errorf("lookup user by subject: %w", fErr)
		}
		if len(found) == 0 {
			now := time.Now()
			user = &types.User{
				ID:        uuid.New(),
				Auth0ID:   rd.Subject,
				Email:     rd.Email,
				Name:      rd.Name,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if _, cErr := sbs.userRepo.Create(ctx, tx, []*types.User{user}); cErr != nil {
				return fmt.Errorf("create user: %w", cErr)
			}
			return nil
		}
		user = found[0]
		if user.Email != rd.Email || user.Name != rd.Name {
			if uErr := sbs.userRepo.UpdateProfile(ctx, tx, user.ID, rd.Email, rd.Name); uErr != nil {
				return fmt.Errorf("refresh user profile: %w", uErr)
			}
			user.Email = rd.Email
			user.Name = rd.Name
		}
		return nil
	})
	if err != nil {
		sbs.log.Error("ResolveUser failed", "error", err, "subject", rd.Subject)
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodeUpstreamError, err)
	}
	return user, nil
}

// BridgeSession performs the two side effects in order: user upsert, then
// credential issuance. No transaction spans both; a stranded user row after a
// credential failure is fine because the upsert is keyed by subject.
func (sbs *sessionBridgeService) BridgeSession(ctx context.Context) (*SessionCredentials, error) {
	user, err := sbs.ResolveUser(ctx)
	if err != nil {
		return nil, err
	}

	cErr := sbs.supabase.CreateUser(ctx, user.Email, map[string]any{
		"auth0_id": user.Auth0ID,
		"name":     user.Name,
	})
	if cErr != nil && !errors.Is(cErr, ErrSupabaseUserExists) {
		sbs.log.Error("Supabase account provisioning failed", "error", cErr, "user_id", user.ID)
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodeUpstreamError, fmt.Errorf("provision database account: %w", cErr))
	}

	link, lErr := sbs.supabase.GenerateMagicLink(ctx, user.Email)
	if lErr != nil {
		sbs.log.Error("Supabase link minting failed", "error", lErr, "user_id", user.ID)
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodeUpstreamError, fmt.Errorf("mint sign-in link: %w", lErr))
	}

	return &SessionCredentials{
		AccessToken:  link.HashedToken,
		RefreshToken: link.RefreshToken,
		ExpiresAt:    link.ExpiresAt,
	}, nil
}
