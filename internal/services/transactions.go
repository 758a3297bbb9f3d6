package services

import (
	"context"
	"tenpo_transactions/internal/cache"
	"tenpo_transactions/internal/models"
	"tenpo_transactions/pkg/utils"
)

const TransactionsKey = "transactions"

// TransactionService serves the cached transaction list and runs the three
// writes, refetching the list after each completed write.
type TransactionService struct {
	gateway Gateway
	cache   *cache.Client[[]models.Transaction]

	create cache.Mutation[models.Transaction, Result]
	update cache.Mutation[models.Transaction, Result]
	remove cache.Mutation[int, Result]
}

func NewTransactionService(gateway Gateway, opts cache.Options) *TransactionService {
	if opts.OnBackgroundError == nil {
		opts.OnBackgroundError = func(key string, err error) {
			utils.Logger.Errorf("background refetch of %s failed: %v", key, err)
		}
	}

	s := &TransactionService{
		gateway: gateway,
		cache:   cache.NewClient[[]models.Transaction](opts),
	}

	s.create = cache.Mutation[models.Transaction, Result]{
		Fn: gateway.Create,
		OnSuccess: func(ctx context.Context, _ Result, _ models.Transaction) {
			s.invalidate(ctx)
		},
	}
	s.update = cache.Mutation[models.Transaction, Result]{
		Fn: gateway.Update,
		OnSuccess: func(ctx context.Context, _ Result, _ models.Transaction) {
			s.invalidate(ctx)
		},
	}
	s.remove = cache.Mutation[int, Result]{
		Fn: gateway.Delete,
		OnSuccess: func(ctx context.Context, _ Result, _ int) {
			s.invalidate(ctx)
		},
	}

	return s
}

func (s *TransactionService) List(ctx context.Context) ([]models.Transaction, error) {
	return s.cache.Get(ctx, TransactionsKey, s.gateway.ListAll)
}

// Cached returns the last fetched list without touching the backend.
func (s *TransactionService) Cached() ([]models.Transaction, bool) {
	return s.cache.Peek(TransactionsKey)
}

func (s *TransactionService) State() cache.State {
	return s.cache.State(TransactionsKey)
}

func (s *TransactionService) Create(ctx context.Context, tx models.Transaction) (Result, error) {
	return s.create.Do(ctx, tx)
}

func (s *TransactionService) Update(ctx context.Context, tx models.Transaction) (Result, error) {
	return s.update.Do(ctx, tx)
}

func (s *TransactionService) Delete(ctx context.Context, id int) (Result, error) {
	return s.remove.Do(ctx, id)
}

// Revalidate refetches the list when it is stale. It does nothing before the
// first read.
func (s *TransactionService) Revalidate(ctx context.Context) error {
	return s.cache.Revalidate(ctx, TransactionsKey)
}

func (s *TransactionService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, TransactionsKey); err != nil {
		utils.Logger.Errorf("failed to refetch %s after write: %v", TransactionsKey, err)
	}
}
