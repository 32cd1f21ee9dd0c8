package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotInChat     = errors.New("not in an active chat")
	ErrAlreadyPaired = errors.New("participant already has an active chat")
)

type ChatRepo struct {
	pool *pgxpool.Pool
}

func NewChatRepo(pool *pgxpool.Pool) *ChatRepo {
	return &ChatRepo{pool: pool}
}

// Pair creates an active chat between two users in a single transaction:
// both pending likes for the pair are consumed, one chat row is inserted and
// both partner pointers are set. Either all of it lands or none. A pointer is
// only set when it is currently null, so pairing against a user who already
// has an active chat rolls back with ErrAlreadyPaired instead of clobbering
// the existing chat.
func (r *ChatRepo) Pair(ctx context.Context, userID, targetID int64) error {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return fmt.Errorf("invalid pair payload")
	}

	return WithTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(txCtx, `
DELETE FROM pending_likes
WHERE (liker_id = $1 AND liked_id = $2) OR (liker_id = $2 AND liked_id = $1)
`, userID, targetID); err != nil {
			return fmt.Errorf("consume pending likes: %w", err)
		}

		if _, err := tx.Exec(txCtx, `
INSERT INTO active_chats (user1_id, user2_id, created_at, is_active)
VALUES ($1, $2, NOW(), TRUE)
`, userID, targetID); err != nil {
			return fmt.Errorf("insert active chat: %w", err)
		}

		tag, err := tx.Exec(txCtx, `
UPDATE users SET current_partner_id = $2 WHERE user_id = $1 AND current_partner_id IS NULL
`, userID, targetID)
		if err != nil {
			return fmt.Errorf("set partner pointer: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrAlreadyPaired
		}

		tag, err = tx.Exec(txCtx, `
UPDATE users SET current_partner_id = $2 WHERE user_id = $1 AND current_partner_id IS NULL
`, targetID, userID)
		if err != nil {
			return fmt.Errorf("set partner pointer: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrAlreadyPaired
		}

		return nil
	})
}

// End tears down the user's active chat in a single transaction and returns
// the former partner. ErrNotInChat when the user has no partner; nothing is
// written in that case.
func (r *ChatRepo) End(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}

	var partnerID int64
	err := WithTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		var partner *int64
		err := tx.QueryRow(txCtx, `
SELECT current_partner_id
FROM users
WHERE user_id = $1
FOR UPDATE
`, userID).Scan(&partner)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotInChat
			}
			return fmt.Errorf("resolve partner: %w", err)
		}
		if partner == nil || *partner <= 0 {
			return ErrNotInChat
		}
		partnerID = *partner

		if _, err := tx.Exec(txCtx, `
UPDATE active_chats SET is_active = FALSE
WHERE is_active
  AND ((user1_id = $1 AND user2_id = $2) OR (user1_id = $2 AND user2_id = $1))
`, userID, partnerID); err != nil {
			return fmt.Errorf("deactivate chat: %w", err)
		}

		if _, err := tx.Exec(txCtx, `
UPDATE users SET current_partner_id = NULL WHERE user_id IN ($1, $2)
`, userID, partnerID); err != nil {
			return fmt.Errorf("clear partner pointers: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return partnerID, nil
}

func (r *ChatRepo) Partner(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var partner *int64
	err := r.pool.QueryRow(ctx, `
SELECT current_partner_id
FROM users
WHERE user_id = $1
`, userID).Scan(&partner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotInChat
		}
		return 0, fmt.Errorf("get partner: %w", err)
	}
	if partner == nil || *partner <= 0 {
		return 0, ErrNotInChat
	}

	return *partner, nil
}
