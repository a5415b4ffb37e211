package repository

import (
	"context"

	"github.com/webstar-labs/webstar/models"
	"github.com/webstar-labs/webstar/utils"
	"gorm.io/gorm"
)

// ProjectRepositoryImpl implements ProjectRepository interface
type ProjectRepositoryImpl struct {
	*BaseRepository[models.Project, models.ProjectFilter]
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &ProjectRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Project, models.ProjectFilter](db),
	}
}

// ByUUID retrieves a project by UUID.
func (r *ProjectRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.Project, error) {
	parsed, err := utils.ParseUUID(uuidStr)
	if err != nil {
		return nil, err
	}
	rows, err := r.ByFilter(ctx, models.ProjectFilter{UUID: &parsed}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ListByUser retrieves projects for a user, newest first.
func (r *ProjectRepositoryImpl) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Project, error) {
	return r.ByFilter(ctx, models.ProjectFilter{UserID: &userID}, "display_order ASC, id DESC", limit, offset)
}

// Delete removes a project and its media rows.
func (r *ProjectRepositoryImpl) Delete(ctx context.Context, projectID uint) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	err = db.Where("project_id = ?", projectID).Delete(&models.ProjectMedia{}).Error
	if err == nil {
		err = db.Delete(&models.Project{}, projectID).Error
	}

	if shouldCommit {
		if err != nil {
			db.Rollback()
			return err
		}
		return db.Commit().Error
	}
	return err
}

// AddMedia attaches a media row to a project.
func (r *ProjectRepositoryImpl) AddMedia(ctx context.Context, media *models.ProjectMedia) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	err = db.Create(media).Error

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
func (r *ProjectRepositoryImpl) applyFilter(query *gorm.DB, filter models.ProjectFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.IsPublished != nil {
		query = query.Where("is_published = ?", *filter.IsPublished)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves projects based on filter criteria
func (r *ProjectRepositoryImpl) ByFilter(ctx context.Context, filter models.ProjectFilter, orderBy string, limit, offset int) ([]*models.Project, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Project{}).Preload("Media")

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

	var rows []*models.Project
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of projects matching filter
func (r *ProjectRepositoryImpl) Count(ctx context.Context, filter models.ProjectFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Project{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any project matches the filter
func (r *ProjectRepositoryImpl) Exists(ctx context.Context, filter models.ProjectFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
