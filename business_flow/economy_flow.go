package businessflow

import (
	"context"

	"github.com/webstar-labs/webstar/app/dto"
	"github.com/webstar-labs/webstar/repository"
)

// EconomyFlow exposes the points ledger to users
type EconomyFlow interface {
	GetBalance(ctx context.Context, userID uint) (*dto.PointsBalanceResponse, error)
	GetHistory(ctx context.Context, userID uint, page, pageSize int) (*dto.PointsHistoryResponse, error)
}

// EconomyFlowImpl implements the economy business flow
type EconomyFlowImpl struct {
	pointsRepo repository.PointsRepository
}

// NewEconomyFlow creates a new economy flow instance
func NewEconomyFlow(pointsRepo repository.PointsRepository) EconomyFlow {
	return &EconomyFlowImpl{pointsRepo: pointsRepo}
}

// GetBalance returns the user's points balance, zero when no ledger rows exist
func (ef *EconomyFlowImpl) GetBalance(ctx context.Context, userID uint) (*dto.PointsBalanceResponse, error) {
	balance, err := ef.pointsRepo.BalanceByUser(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("BALANCE_LOAD_FAILED", "Failed to load points balance", err)
	}
	if balance == nil {
		return &dto.PointsBalanceResponse{}, nil
	}
	return &dto.PointsBalanceResponse{
		TotalPoints:     balance.TotalPoints,
		AvailablePoints: balance.AvailablePoints,
	}, nil
}

// GetHistory returns a page of the user's points ledger with the balance
func (ef *EconomyFlowImpl) GetHistory(ctx context.Context, userID uint, page, pageSize int) (*dto.PointsHistoryResponse, error) {
	if page < 1 {
		return nil, NewBusinessError("INVALID_PAGE", "Page must be at least 1", ErrInvalidPage)
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, NewBusinessError("INVALID_PAGE_SIZE", "Page size must be between 1 and 100", ErrInvalidPageSize)
	}

	transactions, err := ef.pointsRepo.TransactionsByUser(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("HISTORY_LOAD_FAILED", "Failed to load points history", err)
	}

	balance, err := ef.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &dto.PointsHistoryResponse{
		Transactions: make([]dto.PointsTransactionInfo, 0, len(transactions)),
		Balance:      *balance,
	}
	for _, tx := range transactions {
		info := dto.PointsTransactionInfo{
			ID:        tx.ID,
			Points:    tx.Points,
			Action:    tx.Action,
			CreatedAt: tx.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if tx.Description != nil {
			info.Description = *tx.Description
		}
		resp.Transactions = append(resp.Transactions, info)
	}
	return resp, nil
}
