package repository

import (
	"context"

	"github.com/webstar-labs/webstar/models"
	"github.com/webstar-labs/webstar/utils"
	"gorm.io/gorm"
)

// PointsRepositoryImpl implements PointsRepository interface.
// Ledger rows and the denormalized balance are written inside the same
// transaction so the two can never drift.
type PointsRepositoryImpl struct {
	db *gorm.DB
}

func NewPointsRepository(db *gorm.DB) PointsRepository {
	return &PointsRepositoryImpl{db: db}
}

func (r *PointsRepositoryImpl) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// SaveTransaction appends a single ledger row.
func (r *PointsRepositoryImpl) SaveTransaction(ctx context.Context, tx *models.PointsTransaction) error {
	return r.getDB(ctx).Create(tx).Error
}

// TransactionsByUser lists ledger rows for a user, newest first.
func (r *PointsRepositoryImpl) TransactionsByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.PointsTransaction, error) {
	query := r.getDB(ctx).Model(&models.PointsTransaction{}).
		Where("user_id = ?", userID).
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.PointsTransaction
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// HasTransaction reports whether the user already has a ledger row for an action.
// Used for one-time awards such as the first profile picture.
func (r *PointsRepositoryImpl) HasTransaction(ctx context.Context, userID uint, action string) (bool, error) {
	var count int64
	err := r.getDB(ctx).Model(&models.PointsTransaction{}).
		Where("user_id = ? AND action = ?", userID, action).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// BalanceByUser retrieves the denormalized balance, nil when none exists yet.
func (r *PointsRepositoryImpl) BalanceByUser(ctx context.Context, userID uint) (*models.UserPoints, error) {
	var row models.UserPoints
	err := r.getDB(ctx).Where("user_id = ?", userID).Last(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// AwardPoints appends a ledger row and bumps the balance atomically.
func (r *PointsRepositoryImpl) AwardPoints(ctx context.Context, userID uint, points int, action, description string) error {
	run := func(txCtx context.Context) error {
		db := r.getDB(txCtx)

		entry := &models.PointsTransaction{
			UserID:      userID,
			Points:      points,
			Action:      action,
			Description: utils.ToPtr(description),
			CreatedAt:   utils.UTCNow(),
		}
		if err := db.Create(entry).Error; err != nil {
			return err
		}

		var balance models.UserPoints
		err := db.Where("user_id = ?", userID).Last(&balance).Error
		if err != nil {
			if err != gorm.ErrRecordNotFound {
				return err
			}
			balance = models.UserPoints{UserID: userID}
		}
		balance.TotalPoints += points
		balance.AvailablePoints += points
		balance.UpdatedAt = utils.UTCNow()
		return db.Save(&balance).Error
	}

	// Reuse an ambient transaction when one is already in flight.
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return run(ctx)
	}
	return WithTransaction(ctx, r.db, run)
}
