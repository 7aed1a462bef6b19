package services

import (
	"context"

	"github.com/baharkarakas/stocksim/internal/models"
	repo "github.com/baharkarakas/stocksim/internal/repository"
)

type HistoryService struct{ r repo.Transactions }

func NewHistoryService(r repo.Transactions) *HistoryService { return &HistoryService{r: r} }

func (s *HistoryService) List(ctx context.Context, userID int64) ([]models.Transaction, error) {
	return s.r.ListByUser(ctx, userID)
}
