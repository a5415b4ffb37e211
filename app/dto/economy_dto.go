package dto

// PointsBalanceResponse represents a user's points balance
type PointsBalanceResponse struct {
	TotalPoints     int `json:"total_points"`
	AvailablePoints int `json:"available_points"`
}

// PointsTransactionInfo represents a single ledger entry
type PointsTransactionInfo struct {
	ID          uint   `json:"id"`
	Points      int    `json:"points"`
	Action      string `json:"action"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// PointsHistoryResponse represents a page of the points ledger
type PointsHistoryResponse struct {
	Transactions []PointsTransactionInfo `json:"transactions"`
	Balance      PointsBalanceResponse   `json:"balance"`
}
