package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const cardColumns = `seq, id, name, number, type, credit_limit, color, expiration_month, expiration_year, created_at`

const transactionColumns = `seq, id, card_id, name, amount, timestamp, photo, created_at`

type CreateCardParams struct {
	ID              string
	Name            string
	Number          string
	Type            string
	CreditLimit     float64
	Color           []byte
	ExpirationMonth int64
	ExpirationYear  int64
	CreatedAt       int64
}

const createCard = `INSERT INTO cards (id, name, number, type, credit_limit, color, expiration_month, expiration_year, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateCard(ctx context.Context, arg CreateCardParams) error {
	_, err := q.db.ExecContext(ctx, createCard,
		arg.ID,
		arg.Name,
		arg.Number,
		arg.Type,
		arg.CreditLimit,
		arg.Color,
		arg.ExpirationMonth,
		arg.ExpirationYear,
		arg.CreatedAt,
	)
	return err
}

type UpdateCardParams struct {
	ID              string
	Name            string
	Number          string
	Type            string
	CreditLimit     float64
	Color           []byte
	ExpirationMonth int64
	ExpirationYear  int64
}

const updateCard = `UPDATE cards
SET name = ?, number = ?, type = ?, credit_limit = ?, color = ?, expiration_month = ?, expiration_year = ?
WHERE id = ?`

// UpdateCard rewrites every mutable column and returns the number of rows touched.
func (q *Queries) UpdateCard(ctx context.Context, arg UpdateCardParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateCard,
		arg.Name,
		arg.Number,
		arg.Type,
		arg.CreditLimit,
		arg.Color,
		arg.ExpirationMonth,
		arg.ExpirationYear,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteCard = `DELETE FROM cards WHERE id = ?`

func (q *Queries) DeleteCard(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteCard, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteAllCards = `DELETE FROM cards`

func (q *Queries) DeleteAllCards(ctx context.Context) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAllCards)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getCard = `SELECT ` + cardColumns + ` FROM cards WHERE id = ?`

func (q *Queries) GetCard(ctx context.Context, id string) (Card, error) {
	row := q.db.QueryRowContext(ctx, getCard, id)
	var c Card
	err := row.Scan(
		&c.Seq,
		&c.ID,
		&c.Name,
		&c.Number,
		&c.Type,
		&c.CreditLimit,
		&c.Color,
		&c.ExpirationMonth,
		&c.ExpirationYear,
		&c.CreatedAt,
	)
	return c, err
}

const listCards = `SELECT ` + cardColumns + ` FROM cards ORDER BY created_at %[1]s, seq %[1]s`

func (q *Queries) ListCards(ctx context.Context, order SortOrder) ([]Card, error) {
	rows, err := q.db.QueryContext(ctx, fmt.Sprintf(listCards, orderKeyword(order)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Card
	for rows.Next() {
		var c Card
		if err := rows.Scan(
			&c.Seq,
			&c.ID,
			&c.Name,
			&c.Number,
			&c.Type,
			&c.CreditLimit,
			&c.Color,
			&c.ExpirationMonth,
			&c.ExpirationYear,
			&c.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listCardSummaries = `SELECT c.seq, c.id, c.name, c.number, c.type, c.credit_limit, c.color,
       c.expiration_month, c.expiration_year, c.created_at,
       COALESCE(SUM(t.amount), 0.0) AS balance,
       COUNT(t.id) AS transaction_count
FROM cards c
LEFT JOIN card_transactions t ON t.card_id = c.id
GROUP BY c.seq
ORDER BY c.created_at %[1]s, c.seq %[1]s`

func (q *Queries) ListCardSummaries(ctx context.Context, order SortOrder) ([]CardSummaryRow, error) {
	rows, err := q.db.QueryContext(ctx, fmt.Sprintf(listCardSummaries, orderKeyword(order)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CardSummaryRow
	for rows.Next() {
		var s CardSummaryRow
		if err := rows.Scan(
			&s.Seq,
			&s.ID,
			&s.Name,
			&s.Number,
			&s.Type,
			&s.CreditLimit,
			&s.Color,
			&s.ExpirationMonth,
			&s.ExpirationYear,
			&s.CreatedAt,
			&s.Balance,
			&s.TransactionCount,
		); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type CreateTransactionParams struct {
	ID        string
	CardID    string
	Name      string
	Amount    float64
	Timestamp int64
	Photo     []byte
	CreatedAt int64
}

const createTransaction = `INSERT INTO card_transactions (id, card_id, name, amount, timestamp, photo, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		arg.ID,
		arg.CardID,
		arg.Name,
		arg.Amount,
		arg.Timestamp,
		arg.Photo,
		arg.CreatedAt,
	)
	return err
}

type UpdateTransactionParams struct {
	ID        string
	Name      string
	Amount    float64
	Timestamp int64
	Photo     []byte
}

const updateTransaction = `UPDATE card_transactions SET name = ?, amount = ?, timestamp = ?, photo = ? WHERE id = ?`

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateTransaction,
		arg.Name,
		arg.Amount,
		arg.Timestamp,
		arg.Photo,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteTransaction = `DELETE FROM card_transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getTransaction = `SELECT ` + transactionColumns + ` FROM card_transactions WHERE id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id string) (CardTransaction, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, id)
	var t CardTransaction
	err := row.Scan(
		&t.Seq,
		&t.ID,
		&t.CardID,
		&t.Name,
		&t.Amount,
		&t.Timestamp,
		&t.Photo,
		&t.CreatedAt,
	)
	return t, err
}

const listTransactionsByCard = `SELECT ` + transactionColumns + ` FROM card_transactions
WHERE card_id = ?
ORDER BY %[1]s %[2]s, seq %[2]s`

func (q *Queries) ListTransactionsByCard(ctx context.Context, cardID string, key TransactionSortKey, order SortOrder) ([]CardTransaction, error) {
	query := fmt.Sprintf(listTransactionsByCard, string(key.Key()), orderKeyword(order))
	rows, err := q.db.QueryContext(ctx, query, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CardTransaction
	for rows.Next() {
		var t CardTransaction
		if err := rows.Scan(
			&t.Seq,
			&t.ID,
			&t.CardID,
			&t.Name,
			&t.Amount,
			&t.Timestamp,
			&t.Photo,
			&t.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// orderKeyword maps a resolved SortOrder onto SQL. Only the two literals
// below ever reach a query string.
func orderKeyword(order SortOrder) string {
	if order == Ascending {
		return "ASC"
	}
	return "DESC"
}
