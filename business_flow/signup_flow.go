package businessflow

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/webstar-labs/webstar/app/dto"
	"github.com/webstar-labs/webstar/app/services"
	"github.com/webstar-labs/webstar/models"
	"github.com/webstar-labs/webstar/repository"
	"github.com/webstar-labs/webstar/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SignupFlow handles account creation
type SignupFlow interface {
	Signup(ctx context.Context, request *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error)
}

// PasswordPolicy carries the deployment's password hashing parameters.
type PasswordPolicy struct {
	BcryptCost int
	MinLength  int
}

// SignupFlowImpl implements the signup business flow
type SignupFlowImpl struct {
	userRepo     repository.UserRepository
	profileRepo  repository.ProfileRepository
	sessionRepo  repository.UserSessionRepository
	tokenService services.TokenService
	policy       PasswordPolicy
	db           *gorm.DB
}

// NewSignupFlow creates a new signup flow instance. Zero policy values fall
// back to bcrypt's default cost and an 8 character minimum.
func NewSignupFlow(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	sessionRepo repository.UserSessionRepository,
	tokenService services.TokenService,
	policy PasswordPolicy,
	db *gorm.DB,
) SignupFlow {
	if policy.BcryptCost == 0 {
		policy.BcryptCost = bcrypt.DefaultCost
	}
	if policy.MinLength == 0 {
		policy.MinLength = 8
	}
	return &SignupFlowImpl{
		userRepo:     userRepo,
		profileRepo:  profileRepo,
		sessionRepo:  sessionRepo,
		tokenService: tokenService,
		policy:       policy,
		db:           db,
	}
}

// Signup creates the user, an empty profile, and a first session in one
// transaction.
func (sf *SignupFlowImpl) Signup(ctx context.Context, request *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error) {
	email := strings.ToLower(strings.TrimSpace(request.Email))
	username := strings.ToLower(strings.TrimSpace(request.Username))

	if len(request.Password) < sf.policy.MinLength {
		return nil, NewBusinessError("WEAK_PASSWORD", "Password is too short", ErrPasswordTooShort)
	}

	var resp *dto.SignupResponse
	err := repository.WithTransaction(ctx, sf.db, func(txCtx context.Context) error {
		existing, err := sf.userRepo.ByEmail(txCtx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrEmailAlreadyExists
		}

		existing, err = sf.userRepo.ByUsername(txCtx, username)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrUsernameAlreadyExists
		}

		passwordHash, err := sf.hashPassword(request.Password)
		if err != nil {
			return err
		}

		user := &models.User{
			UUID:            uuid.New(),
			Email:           email,
			Username:        username,
			PasswordHash:    passwordHash,
			IsEmailVerified: utils.ToPtr(false),
			IsActive:        utils.ToPtr(true),
			IsAdmin:         utils.ToPtr(false),
		}
		if err := sf.userRepo.Save(txCtx, user); err != nil {
			return err
		}

		profile := &models.Profile{
			UserID: user.ID,
		}
		if err := sf.profileRepo.Save(txCtx, profile); err != nil {
			return err
		}

		_, accessToken, refreshToken, err := createSession(txCtx, sf.sessionRepo, sf.tokenService, user.ID, metadata)
		if err != nil {
			return err
		}

		resp = &dto.SignupResponse{
			UserID:       user.ID,
			UUID:         user.UUID.String(),
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    int(utils.AccessTokenTTL.Seconds()),
			User:         ToUserInfo(*user),
		}
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("SIGNUP_FAILED", "Signup failed", err)
	}

	return resp, nil
}

func (sf *SignupFlowImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), sf.policy.BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// createSession issues tokens and persists the session row. Shared between
// the signup and login flows.
func createSession(
	ctx context.Context,
	sessionRepo repository.UserSessionRepository,
	tokenService services.TokenService,
	userID uint,
	metadata *ClientMetadata,
) (*models.UserSession, string, string, error) {
	accessToken, refreshToken, err := tokenService.GenerateTokens(userID)
	if err != nil {
		return nil, "", "", err
	}

	expiresAt := utils.UTCNowAdd(utils.SessionTimeout)

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	session := &models.UserSession{
		UserID:        userID,
		CorrelationID: uuid.New(),
		SessionToken:  accessToken,
		RefreshToken:  &refreshToken,
		ExpiresAt:     expiresAt,
		IsActive:      utils.ToPtr(true),
		IPAddress:     &ipAddress,
		UserAgent:     &userAgent,
	}

	if err := sessionRepo.Save(ctx, session); err != nil {
		return nil, "", "", err
	}

	return session, accessToken, refreshToken, nil
}
