package repository

import (
	"context"

	"github.com/webstar-labs/webstar/models"
	"github.com/webstar-labs/webstar/utils"
	"gorm.io/gorm"
)

// ProfileRepositoryImpl implements ProfileRepository interface
type ProfileRepositoryImpl struct {
	*BaseRepository[models.Profile, models.ProfileFilter]
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &ProfileRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Profile, models.ProfileFilter](db),
	}
}

// ByUserID retrieves the profile belonging to a user.
func (r *ProfileRepositoryImpl) ByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	rows, err := r.ByFilter(ctx, models.ProfileFilter{UserID: &userID}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// IncrementProjectsCount adjusts the denormalized projects counter.
func (r *ProfileRepositoryImpl) IncrementProjectsCount(ctx context.Context, userID uint, delta int) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	err = db.Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"projects_count": gorm.Expr("projects_count + ?", delta),
			"updated_at":     utils.UTCNow(),
		}).Error

	if shouldCommit {
		if err != nil {
			db.Rollback()
			return err
		}
		return db.Commit().Error
	}
	return err
}

// applyFilter applies filter criteria to a GORM query
func (r *ProfileRepositoryImpl) applyFilter(query *gorm.DB, filter models.ProfileFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Location != nil {
		query = query.Where("location = ?", *filter.Location)
	}
	if filter.SetupComplete != nil {
		query = query.Where("profile_setup_completed = ?", *filter.SetupComplete)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves profiles based on filter criteria
func (r *ProfileRepositoryImpl) ByFilter(ctx context.Context, filter models.ProfileFilter, orderBy string, limit, offset int) ([]*models.Profile, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Profile{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Profile
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of profiles matching filter
func (r *ProfileRepositoryImpl) Count(ctx context.Context, filter models.ProfileFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Profile{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any profile matches the filter
func (r *ProfileRepositoryImpl) Exists(ctx context.Context, filter models.ProfileFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
