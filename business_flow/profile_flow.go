package businessflow

import (
	"context"

	"github.com/lib/pq"
	"github.com/webstar-labs/webstar/app/dto"
	"github.com/webstar-labs/webstar/app/services"
	"github.com/webstar-labs/webstar/models"
	"github.com/webstar-labs/webstar/repository"
	"github.com/webstar-labs/webstar/utils"
	"gorm.io/gorm"
)

// ProfileFlow handles profile reads, updates, and image uploads
type ProfileFlow interface {
	GetProfile(ctx context.Context, userID uint) (*dto.ProfileResponse, error)
	GetProfileByUsername(ctx context.Context, username string) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uint, request *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	UpdateProfilePicture(ctx context.Context, userID uint, content []byte, filename string) (*dto.UpdateProfileImageResponse, error)
	UpdateBannerImage(ctx context.Context, userID uint, content []byte, filename string) (*dto.UpdateProfileImageResponse, error)
}

// ProfileFlowImpl implements the profile business flow
type ProfileFlowImpl struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	pointsRepo  repository.PointsRepository
	pipeline    MediaPipeline
	db          *gorm.DB
}

// NewProfileFlow creates a new profile flow instance
func NewProfileFlow(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	pointsRepo repository.PointsRepository,
	pipeline MediaPipeline,
	db *gorm.DB,
) ProfileFlow {
	return &ProfileFlowImpl{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		pointsRepo:  pointsRepo,
		pipeline:    pipeline,
		db:          db,
	}
}

// GetProfile returns the profile for a user ID
func (pf *ProfileFlowImpl) GetProfile(ctx context.Context, userID uint) (*dto.ProfileResponse, error) {
	user, err := pf.userRepo.ByID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("PROFILE_LOAD_FAILED", "Failed to load user", err)
	}
	if user == nil {
		return nil, NewBusinessError("USER_NOT_FOUND", "User not found", ErrUserNotFound)
	}
	return pf.profileResponse(ctx, user)
}

// GetProfileByUsername returns the public profile for a username
func (pf *ProfileFlowImpl) GetProfileByUsername(ctx context.Context, username string) (*dto.ProfileResponse, error) {
	user, err := pf.userRepo.ByUsername(ctx, username)
	if err != nil {
		return nil, NewBusinessError("PROFILE_LOAD_FAILED", "Failed to load user", err)
	}
	if user == nil {
		return nil, NewBusinessError("USER_NOT_FOUND", "User not found", ErrUserNotFound)
	}
	return pf.profileResponse(ctx, user)
}

func (pf *ProfileFlowImpl) profileResponse(ctx context.Context, user *models.User) (*dto.ProfileResponse, error) {
	profile, err := pf.profileRepo.ByUserID(ctx, user.ID)
	if err != nil {
		return nil, NewBusinessError("PROFILE_LOAD_FAILED", "Failed to load profile", err)
	}
	if profile == nil {
		return nil, NewBusinessError("PROFILE_NOT_FOUND", "Profile not found", ErrProfileNotFound)
	}

	return &dto.ProfileResponse{
		UserID:                user.ID,
		Username:              user.Username,
		DisplayName:           profile.DisplayName,
		Headline:              profile.Headline,
		Bio:                   profile.Bio,
		About:                 profile.About,
		Location:              profile.Location,
		WebsiteURL:            profile.WebsiteURL,
		Skills:                []string(profile.Skills),
		ProfilePicture:        profile.ProfilePicture,
		BannerImage:           profile.BannerImage,
		ProfileSetupCompleted: utils.IsTrue(profile.ProfileSetupCompleted),
		LikesCount:            profile.LikesCount,
		ViewsCount:            profile.ViewsCount,
		ProjectsCount:         profile.ProjectsCount,
	}, nil
}

// UpdateProfile applies the non-nil fields of the request
func (pf *ProfileFlowImpl) UpdateProfile(ctx context.Context, userID uint, request *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	err := repository.WithTransaction(ctx, pf.db, func(txCtx context.Context) error {
		profile, err := pf.profileRepo.ByUserID(txCtx, userID)
		if err != nil {
			return err
		}
		if profile == nil {
			return ErrProfileNotFound
		}

		if request.DisplayName != nil {
			profile.DisplayName = request.DisplayName
		}
		if request.Headline != nil {
			profile.Headline = request.Headline
		}
		if request.Bio != nil {
			profile.Bio = request.Bio
		}
		if request.About != nil {
			profile.About = request.About
		}
		if request.Location != nil {
			profile.Location = request.Location
		}
		if request.WebsiteURL != nil {
			profile.WebsiteURL = request.WebsiteURL
		}
		if request.Skills != nil {
			profile.Skills = pq.StringArray(request.Skills)
		}
		profile.ProfileSetupCompleted = utils.ToPtr(true)

		return pf.profileRepo.Update(txCtx, profile)
	})
	if err != nil {
		return nil, NewBusinessError("PROFILE_UPDATE_FAILED", "Profile update failed", err)
	}

	return pf.GetProfile(ctx, userID)
}

// UpdateProfilePicture stores a new picture through the media pipeline.
// Compression runs silently with the standard preset; the first picture a
// user ever sets earns points.
func (pf *ProfileFlowImpl) UpdateProfilePicture(ctx context.Context, userID uint, content []byte, filename string) (*dto.UpdateProfileImageResponse, error) {
	stored, err := pf.pipeline.ProcessAndStore(ctx, content, filename, "", services.MediaCategoryPhoto, true, "")
	if err != nil {
		return nil, err
	}

	pointsAwarded := 0
	err = repository.WithTransaction(ctx, pf.db, func(txCtx context.Context) error {
		profile, err := pf.profileRepo.ByUserID(txCtx, userID)
		if err != nil {
			return err
		}
		if profile == nil {
			return ErrProfileNotFound
		}

		profile.ProfilePicture = &stored.URL
		if err := pf.profileRepo.Update(txCtx, profile); err != nil {
			return err
		}

		awarded, err := pf.pointsRepo.HasTransaction(txCtx, userID, models.PointsActionProfilePicture)
		if err != nil {
			return err
		}
		if !awarded {
			if err := pf.pointsRepo.AwardPoints(txCtx, userID, utils.PointsFirstProfilePicture,
				models.PointsActionProfilePicture, "First profile picture"); err != nil {
				return err
			}
			pointsAwarded = utils.PointsFirstProfilePicture
		}
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("PROFILE_PICTURE_FAILED", "Profile picture update failed", err)
	}

	return &dto.UpdateProfileImageResponse{
		Message:            "Profile picture updated",
		URL:                stored.URL,
		CompressionApplied: stored.CompressionApplied,
		PointsAwarded:      pointsAwarded,
	}, nil
}

// UpdateBannerImage stores a new banner through the media pipeline.
func (pf *ProfileFlowImpl) UpdateBannerImage(ctx context.Context, userID uint, content []byte, filename string) (*dto.UpdateProfileImageResponse, error) {
	stored, err := pf.pipeline.ProcessAndStore(ctx, content, filename, "", services.MediaCategoryPhoto, true, "")
	if err != nil {
		return nil, err
	}

	err = repository.WithTransaction(ctx, pf.db, func(txCtx context.Context) error {
		profile, err := pf.profileRepo.ByUserID(txCtx, userID)
		if err != nil {
			return err
		}
		if profile == nil {
			return ErrProfileNotFound
		}
		profile.BannerImage = &stored.URL
		return pf.profileRepo.Update(txCtx, profile)
	})
	if err != nil {
		return nil, NewBusinessError("BANNER_UPDATE_FAILED", "Banner update failed", err)
	}

	return &dto.UpdateProfileImageResponse{
		Message:            "Banner updated",
		URL:                stored.URL,
		CompressionApplied: stored.CompressionApplied,
	}, nil
}
