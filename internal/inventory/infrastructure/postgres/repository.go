package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bitewise/foodflow/internal/inventory/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

// Migrate creates the ledger tables. The check constraint is a backstop for
// the counter invariant; the service's per-item lock is the primary guard.
func (r *Repository) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS food (
			food_id     BIGSERIAL PRIMARY KEY,
			name        TEXT NOT NULL,
			price       BIGINT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			stock       INT NOT NULL,
			reserved    INT NOT NULL DEFAULT 0,
			CHECK (reserved >= 0 AND reserved <= stock)
		)`,
		`CREATE TABLE IF NOT EXISTS reservation (
			reservation_id TEXT PRIMARY KEY,
			order_id       TEXT NOT NULL,
			food_id        BIGINT NOT NULL REFERENCES food(food_id),
			quantity       INT NOT NULL,
			status         TEXT NOT NULL,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (order_id, food_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate inventory: %w", err)
		}
	}
	return nil
}

func (r *Repository) ListFood(ctx context.Context) ([]domain.Food, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT food_id, name, price, description, stock, reserved FROM food ORDER BY food_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var foods []domain.Food
	for rows.Next() {
		var f domain.Food
		if err := rows.Scan(&f.ID, &f.Name, &f.Price, &f.Description, &f.Stock, &f.Reserved); err != nil {
			return nil, err
		}
		foods = append(foods, f)
	}
	return foods, rows.Err()
}

func (r *Repository) GetFood(ctx context.Context, foodID int64) (domain.Food, error) {
	var f domain.Food
	err := r.pool.QueryRow(ctx,
		`SELECT food_id, name, price, description, stock, reserved FROM food WHERE food_id = $1`,
		foodID).Scan(&f.ID, &f.Name, &f.Price, &f.Description, &f.Stock, &f.Reserved)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Food{}, domain.ErrFoodNotFound
	}
	if err != nil {
		return domain.Food{}, fmt.Errorf("get food: %w", err)
	}
	return f, nil
}

func (r *Repository) FindReservation(ctx context.Context, orderID string, foodID int64) (*domain.Reservation, error) {
	var res domain.Reservation
	err := r.pool.QueryRow(ctx,
		`SELECT reservation_id, order_id, food_id, quantity, status
		 FROM reservation WHERE order_id = $1 AND food_id = $2`,
		orderID, foodID).Scan(&res.ID, &res.OrderID, &res.FoodID, &res.Quantity, &res.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	return &res, nil
}

func (r *Repository) ListReservationsByOrder(ctx context.Context, orderID string) ([]domain.Reservation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT reservation_id, order_id, food_id, quantity, status
		 FROM reservation WHERE order_id = $1 ORDER BY food_id`,
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(&res.ID, &res.OrderID, &res.FoodID, &res.Quantity, &res.Status); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *Repository) CreateReservation(ctx context.Context, res domain.Reservation) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockFood(ctx, tx, res.FoodID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO reservation (reservation_id, order_id, food_id, quantity, status)
			 VALUES ($1, $2, $3, $4, $5)`,
			res.ID, res.OrderID, res.FoodID, res.Quantity, res.Status)
		if err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		_, err = tx.Exec(ctx,
			`UPDATE food SET reserved = reserved + $1 WHERE food_id = $2`,
			res.Quantity, res.FoodID)
		if err != nil {
			return fmt.Errorf("increment reserved: %w", err)
		}
		return nil
	})
}

func (r *Repository) ConfirmReservation(ctx context.Context, res domain.Reservation) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockFood(ctx, tx, res.FoodID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`UPDATE food SET stock = stock - $1, reserved = reserved - $1 WHERE food_id = $2`,
			res.Quantity, res.FoodID)
		if err != nil {
			return fmt.Errorf("commit sale: %w", err)
		}
		return setReservationStatus(ctx, tx, res.ID, domain.ReservationConfirmed)
	})
}

func (r *Repository) CancelReservation(ctx context.Context, res domain.Reservation) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockFood(ctx, tx, res.FoodID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`UPDATE food SET reserved = reserved - $1 WHERE food_id = $2`,
			res.Quantity, res.FoodID)
		if err != nil {
			return fmt.Errorf("release hold: %w", err)
		}
		return setReservationStatus(ctx, tx, res.ID, domain.ReservationCancelled)
	})
}

// UpsertFood seeds or updates a catalog row. Catalog management proper lives
// outside this service; this exists for bootstrap and tests.
func (r *Repository) UpsertFood(ctx context.Context, f domain.Food) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO food (name, price, description, stock, reserved)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING food_id`,
		f.Name, f.Price, f.Description, f.Stock, f.Reserved).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert food: %w", err)
	}
	return id, nil
}

func (r *Repository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// lockFood takes the row lock inside the surrounding transaction, a DB-level
// backstop under the service's keyed lock.
func lockFood(ctx context.Context, tx pgx.Tx, foodID int64) error {
	var id int64
	err := tx.QueryRow(ctx, `SELECT food_id FROM food WHERE food_id = $1 FOR UPDATE`, foodID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrFoodNotFound
	}
	return err
}

func setReservationStatus(ctx context.Context, tx pgx.Tx, reservationID string, status domain.ReservationStatus) error {
	ct, err := tx.Exec(ctx,
		`UPDATE reservation SET status = $1, updated_at = now() WHERE reservation_id = $2`,
		status, reservationID)
	if err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}
