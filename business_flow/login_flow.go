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

// LoginFlow handles user authentication and session management
type LoginFlow interface {
	Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	RefreshToken(ctx context.Context, request *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.RefreshTokenResponse, error)
	Logout(ctx context.Context, userID uint, accessToken string) error
}

// LoginFlowImpl implements the login business flow
type LoginFlowImpl struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.UserSessionRepository
	tokenService services.TokenService
	db           *gorm.DB
}

// NewLoginFlow creates a new login flow instance
func NewLoginFlow(
	userRepo repository.UserRepository,
	sessionRepo repository.UserSessionRepository,
	tokenService services.TokenService,
	db *gorm.DB,
) LoginFlow {
	return &LoginFlowImpl{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		tokenService: tokenService,
		db:           db,
	}
}

// Login authenticates a user with email or username and password
func (lf *LoginFlowImpl) Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	var resp *dto.LoginResponse
	err := repository.WithTransaction(ctx, lf.db, func(txCtx context.Context) error {
		user, err := lf.findUserByIdentifier(txCtx, request.Identifier)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}

		if !utils.IsTrue(user.IsActive) {
			return ErrAccountInactive
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)); err != nil {
			return ErrIncorrectPassword
		}

		_, accessToken, refreshToken, err := createSession(txCtx, lf.sessionRepo, lf.tokenService, user.ID, metadata)
		if err != nil {
			return err
		}

		if err := lf.userRepo.UpdateLastLogin(txCtx, user.ID, utils.UTCNow()); err != nil {
			return err
		}

		resp = &dto.LoginResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    int(utils.AccessTokenTTL.Seconds()),
			User:         ToUserInfo(*user),
		}
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}

	return resp, nil
}

// RefreshToken rotates a refresh token and issues a fresh session
func (lf *LoginFlowImpl) RefreshToken(ctx context.Context, request *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.RefreshTokenResponse, error) {
	var resp *dto.RefreshTokenResponse
	err := repository.WithTransaction(ctx, lf.db, func(txCtx context.Context) error {
		session, err := lf.sessionRepo.ByRefreshToken(txCtx, request.RefreshToken)
		if err != nil {
			return err
		}
		if session == nil {
			return ErrSessionNotFound
		}
		if !session.IsValid() {
			return ErrSessionExpired
		}

		accessToken, refreshToken, err := lf.tokenService.RefreshToken(request.RefreshToken)
		if err != nil {
			return err
		}

		if err := lf.sessionRepo.RevokeSession(txCtx, session.ID); err != nil {
			return err
		}

		if _, _, _, err := createSessionFromTokens(txCtx, lf.sessionRepo, session.UserID, accessToken, refreshToken, metadata); err != nil {
			return err
		}

		resp = &dto.RefreshTokenResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    int(utils.AccessTokenTTL.Seconds()),
		}
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("REFRESH_FAILED", "Token refresh failed", err)
	}

	return resp, nil
}

// Logout revokes the current token and deactivates all matching sessions
func (lf *LoginFlowImpl) Logout(ctx context.Context, userID uint, accessToken string) error {
	err := repository.WithTransaction(ctx, lf.db, func(txCtx context.Context) error {
		session, err := lf.sessionRepo.BySessionToken(txCtx, accessToken)
		if err != nil {
			return err
		}
		if session == nil || session.UserID != userID {
			return ErrSessionNotFound
		}

		if err := lf.sessionRepo.RevokeSession(txCtx, session.ID); err != nil {
			return err
		}

		return lf.tokenService.RevokeToken(accessToken)
	})
	if err != nil {
		return NewBusinessError("LOGOUT_FAILED", "Logout failed", err)
	}
	return nil
}

// findUserByIdentifier resolves an identifier as email when it contains an
// @, as username otherwise.
func (lf *LoginFlowImpl) findUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if strings.Contains(identifier, "@") {
		return lf.userRepo.ByEmail(ctx, identifier)
	}
	return lf.userRepo.ByUsername(ctx, identifier)
}

// createSessionFromTokens persists a session row for already-issued tokens.
func createSessionFromTokens(
	ctx context.Context,
	sessionRepo repository.UserSessionRepository,
	userID uint,
	accessToken, refreshToken string,
	metadata *ClientMetadata,
) (*models.UserSession, string, string, error) {
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
