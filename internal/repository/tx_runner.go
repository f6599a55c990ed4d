package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studyhall-ai/studyhall/internal/service"
)

// TxRunner executes repository work inside a single pgx transaction. The
// correction flow uses it to land the verified answer and the log status
// flip together.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) WithTx(ctx context.Context, fn func(repos service.TxRepositories) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	// no-op once the commit below has landed
	defer tx.Rollback(ctx)

	if err := fn(&txRepos{tx: tx}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

type txRepos struct {
	tx pgx.Tx
}

func (r *txRepos) QALogs() service.QALogRepositoryInterface {
	return NewQALogRepositoryWithTx(r.tx)
}

func (r *txRepos) VerifiedAnswers() service.VerifiedAnswerRepositoryInterface {
	return NewVerifiedAnswerRepositoryWithTx(r.tx)
}
