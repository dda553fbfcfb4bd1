package postgres

import (
	"context"
	"fmt"

	"yatube/app/models"
	"yatube/app/repositories"

	"github.com/jackc/pgx/v5/pgxpool"
)

type FollowRepository struct {
	pool *pgxpool.Pool
}

// Create inserts the edge and leans on the unique_follower constraint: a
// unique violation means the edge is already there.
func (r *FollowRepository) Create(ctx context.Context, follow *models.Follow) (bool, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO follows (user_id, author_id, created_at) VALUES ($1, $2, $3)`,
		follow.UserID, follow.AuthorID, follow.CreatedAt,
	)
	switch pgErrorCode(err) {
	case "":
	case uniqueViolation:
		return false, nil
	case foreignKeyViolation:
		return false, repositories.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("insert follow: %w", err)
	}
	return true, nil
}

func (r *FollowRepository) Delete(ctx context.Context, userID, authorID int) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM follows WHERE user_id = $1 AND author_id = $2`, userID, authorID)
	if err != nil {
		return false, fmt.Errorf("delete follow: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *FollowRepository) Exists(ctx context.Context, userID, authorID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM follows WHERE user_id = $1 AND author_id = $2)`, userID, authorID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return exists, nil
}

func (r *FollowRepository) ListAuthors(ctx context.Context, userID int) ([]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT author_id FROM follows WHERE user_id = $1 ORDER BY author_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list follows: %w", err)
	}
	defer rows.Close()

	authors := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan follow: %w", err)
		}
		authors = append(authors, id)
	}
	return authors, rows.Err()
}
