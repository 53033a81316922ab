package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ruleflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// AccountRepository owns the ledger tables. Accounts and their
// transactions are written only through CommitFinalResponse.
type AccountRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAccountRepository(db *pgxpool.Pool, logger *zap.Logger) *AccountRepository {
	return &AccountRepository{
		db:     db,
		logger: logger,
	}
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	query := squirrel.Select("id", "account_number", "client_id", "balance", "correlation_id", "created_at", "updated_at").
		From("accounts").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var account models.Account
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&account.ID, &account.AccountNumber, &account.ClientID, &account.Balance,
		&account.CorrelationID, &account.CreatedAt, &account.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &account, nil
}

// GetByAccountNumbers returns the ledger rows matching any of the given
// account numbers. Used as the reconciliation snapshot.
func (r *AccountRepository) GetByAccountNumbers(ctx context.Context, accountNumbers []string) ([]*models.Account, error) {
	if len(accountNumbers) == 0 {
		return nil, nil
	}

	query := squirrel.Select("id", "account_number", "client_id", "balance", "correlation_id", "created_at", "updated_at").
		From("accounts").
		Where(squirrel.Eq{"account_number": accountNumbers}).
		OrderBy("id ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(
			&account.ID, &account.AccountNumber, &account.ClientID, &account.Balance,
			&account.CorrelationID, &account.CreatedAt, &account.UpdatedAt,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, &account)
	}

	return accounts, rows.Err()
}

func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*models.Account, error) {
	query := squirrel.Select("id", "account_number", "client_id", "balance", "correlation_id", "created_at", "updated_at").
		From("accounts").
		OrderBy("id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(
			&account.ID, &account.AccountNumber, &account.ClientID, &account.Balance,
			&account.CorrelationID, &account.CreatedAt, &account.UpdatedAt,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, &account)
	}

	return accounts, rows.Err()
}

func (r *AccountRepository) ListTransactionsByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*models.AccountTransaction, error) {
	query := squirrel.Select("id", "account_id", "transaction_amount", "fee_amount", "correlation_id", "created_at").
		From("account_transactions").
		Where(squirrel.Eq{"account_id": accountID}).
		OrderBy("id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*models.AccountTransaction
	for rows.Next() {
		var tx models.AccountTransaction
		if err := rows.Scan(
			&tx.ID, &tx.AccountID, &tx.TransactionAmount, &tx.FeeAmount, &tx.CorrelationID, &tx.CreatedAt,
		); err != nil {
			return nil, err
		}
		transactions = append(transactions, &tx)
	}

	return transactions, rows.Err()
}

// CommitFinalResponse serializes the validated response and hands it to
// the ledger_commit procedure, which upserts accounts and inserts
// transactions in a single atomic call keyed by the correlation id.
func (r *AccountRepository) CommitFinalResponse(ctx context.Context, response *models.FinalResponse, correlationID uuid.UUID) error {
	payload, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to serialize final response: %w", err)
	}

	if _, err := r.db.Exec(ctx, "SELECT ledger_commit($1::jsonb, $2::uuid)", payload, correlationID); err != nil {
		return err
	}

	r.logger.Info("Ledger commit completed",
		zap.String("correlation_id", correlationID.String()),
		zap.Int("fields", len(response.ExtractedFields)),
	)

	return nil
}
