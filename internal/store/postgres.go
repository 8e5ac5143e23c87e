package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/ledgerbot/internal/domain"
)

// querier is the query surface shared by *pgxpool.Pool and pgx.Tx, so the
// same store code runs standalone or inside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres implements Store over a pgx pool. Monetary columns are
// NUMERIC(14,2); they cross the wire as text so the decimal values keep
// their exact scale.
type Postgres struct {
	pgStore
	pool *pgxpool.Pool
}

func NewPostgres(connString string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Postgres{pgStore: pgStore{q: pool}, pool: pool}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

// Atomically runs fn inside one database transaction; any error rolls the
// whole unit back.
func (p *Postgres) Atomically(ctx context.Context, fn func(AccountStore, TransactionStore) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("tx begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	s := &pgStore{q: tx}
	if err := fn(s, s); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("tx commit failed: %w", err)
	}
	return nil
}

type pgStore struct {
	q querier
}

func (p *pgStore) Find(ctx context.Context, userID int64) (*domain.Account, error) {
	return scanAccount(p.q.QueryRow(ctx,
		"SELECT id, user_id, username, balance::text, created_at FROM accounts WHERE user_id = $1",
		userID))
}

func (p *pgStore) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	return scanAccount(p.q.QueryRow(ctx,
		"SELECT id, user_id, username, balance::text, created_at FROM accounts WHERE id = $1",
		id))
}

func (p *pgStore) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	created := *account
	err := p.q.QueryRow(ctx,
		"INSERT INTO accounts (user_id, username, balance, created_at) VALUES ($1, $2, $3::numeric, $4) RETURNING id",
		account.UserID, account.Username, account.Balance.String(), account.CreatedAt,
	).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("account insert failed: %w", err)
	}
	return &created, nil
}

func (p *pgStore) Update(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	tag, err := p.q.Exec(ctx,
		"UPDATE accounts SET username = $1, balance = $2::numeric WHERE id = $3",
		account.Username, account.Balance.String(), account.ID)
	if err != nil {
		return nil, fmt.Errorf("account update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

func (p *pgStore) Append(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	appended := *tx
	err := p.q.QueryRow(ctx,
		`INSERT INTO transactions (account_id, kind, amount, description, counterparty_id, created_at)
		 VALUES ($1, $2, $3::numeric, $4, $5, $6) RETURNING id`,
		tx.AccountID, string(tx.Kind), tx.Amount.String(), tx.Description, tx.CounterpartyID, tx.CreatedAt,
	).Scan(&appended.ID)
	if err != nil {
		return nil, fmt.Errorf("transaction insert failed: %w", err)
	}
	return &appended, nil
}

func (p *pgStore) Recent(ctx context.Context, accountID int64, limit int) ([]domain.Transaction, error) {
	rows, err := p.q.Query(ctx,
		`SELECT id, account_id, kind, amount::text, description, counterparty_id, created_at
		 FROM transactions WHERE account_id = $1 ORDER BY id DESC LIMIT $2`,
		accountID, limit)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

func (p *pgStore) All(ctx context.Context, accountID int64) ([]domain.Transaction, error) {
	rows, err := p.q.Query(ctx,
		`SELECT id, account_id, kind, amount::text, description, counterparty_id, created_at
		 FROM transactions WHERE account_id = $1 ORDER BY id DESC`,
		accountID)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	var balance string
	err := row.Scan(&account.ID, &account.UserID, &account.Username, &balance, &account.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	account.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("invalid balance for account %d: %w", account.ID, err)
	}
	return &account, nil
}

func scanTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	defer rows.Close()
	var out []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var kind, amount string
		if err := rows.Scan(&tx.ID, &tx.AccountID, &kind, &amount, &tx.Description, &tx.CounterpartyID, &tx.CreatedAt); err != nil {
			return nil, err
		}
		tx.Kind = domain.TransactionKind(kind)
		value, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("invalid amount for transaction %d: %w", tx.ID, err)
		}
		tx.Amount = value
		out = append(out, tx)
	}
	return out, rows.Err()
}
