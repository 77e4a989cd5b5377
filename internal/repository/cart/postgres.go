package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresSnapshotter struct {
	pool *pgxpool.Pool
}

// NewPostgres keeps one cart_snapshots row per subject. Save replaces every
// row in a single transaction, so readers never see a partial snapshot.
func NewPostgres(pool *pgxpool.Pool) Snapshotter {
	return &postgresSnapshotter{pool: pool}
}

func (r *postgresSnapshotter) Name() string { return "postgres" }

func (r *postgresSnapshotter) Load(ctx context.Context) (domain.Snapshot, error) {
	const q = `
SELECT subject_id, cart
FROM cart_snapshots
ORDER BY position ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snap := domain.Snapshot{}
	for rows.Next() {
		var (
			subjectID string
			raw       []byte
		)
		if err := rows.Scan(&subjectID, &raw); err != nil {
			return nil, err
		}
		var cart domain.Cart
		if err := json.Unmarshal(raw, &cart); err != nil {
			return nil, fmt.Errorf("decode cart %q: %w", subjectID, err)
		}
		if cart.Items == nil {
			cart.Items = []domain.CartItem{}
		}
		snap = append(snap, domain.SnapshotEntry{SubjectID: subjectID, Cart: cart})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (r *postgresSnapshotter) Save(ctx context.Context, snapshot domain.Snapshot) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM cart_snapshots`); err != nil {
		return err
	}

	rows := make([][]interface{}, 0, len(snapshot))
	for i, entry := range snapshot {
		cart := entry.Cart
		if cart.Items == nil {
			cart.Items = []domain.CartItem{}
		}
		raw, err := json.Marshal(cart)
		if err != nil {
			return fmt.Errorf("encode cart %q: %w", entry.SubjectID, err)
		}
		rows = append(rows, []interface{}{i, entry.SubjectID, raw})
	}
	if len(rows) > 0 {
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"cart_snapshots"},
			[]string{"position", "subject_id", "cart"},
			pgx.CopyFromRows(rows),
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *postgresSnapshotter) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
