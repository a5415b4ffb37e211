// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/webstar-labs/webstar/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Update(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// UserRepository defines operations for users
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByUsername(ctx context.Context, username string) (*models.User, error)
	ByUUID(ctx context.Context, uuid string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID uint, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error
}

// UserSessionRepository defines operations for user sessions
type UserSessionRepository interface {
	Repository[models.UserSession, models.UserSessionFilter]
	BySessionToken(ctx context.Context, token string) (*models.UserSession, error)
	ByRefreshToken(ctx context.Context, token string) (*models.UserSession, error)
	RevokeSession(ctx context.Context, sessionID uint) error
	RevokeAllUserSessions(ctx context.Context, userID uint) error
	ActiveSessionsByUser(ctx context.Context, userID uint) ([]*models.UserSession, error)
}

// ProfileRepository defines operations for profiles
type ProfileRepository interface {
	Repository[models.Profile, models.ProfileFilter]
	ByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	IncrementProjectsCount(ctx context.Context, userID uint, delta int) error
}

// ProjectRepository defines operations for projects
type ProjectRepository interface {
	Repository[models.Project, models.ProjectFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Project, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Project, error)
	Delete(ctx context.Context, projectID uint) error
	AddMedia(ctx context.Context, media *models.ProjectMedia) error
}

// MediaAssetRepository defines operations for stored media assets
type MediaAssetRepository interface {
	Repository[models.MediaAsset, models.MediaAssetFilter]
	ByUUID(ctx context.Context, uuid string) (*models.MediaAsset, error)
	ByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.MediaAsset, error)
	Delete(ctx context.Context, assetID uint) error
}

// PointsRepository defines operations for the gamification ledger
type PointsRepository interface {
	SaveTransaction(ctx context.Context, tx *models.PointsTransaction) error
	TransactionsByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.PointsTransaction, error)
	HasTransaction(ctx context.Context, userID uint, action string) (bool, error)
	BalanceByUser(ctx context.Context, userID uint) (*models.UserPoints, error)
	AwardPoints(ctx context.Context, userID uint, points int, action, description string) error
}
