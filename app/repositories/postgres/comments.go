package postgres

import (
	"context"
	"fmt"

	"yatube/app/models"
	"yatube/app/repositories"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CommentRepository struct {
	pool *pgxpool.Pool
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO comments (post_id, author_id, text, created) VALUES ($1, $2, $3, $4) RETURNING id`,
		comment.PostID, comment.AuthorID, comment.Text, comment.Created,
	).Scan(&comment.ID)
	if pgErrorCode(err) == foreignKeyViolation {
		return repositories.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id int) (*models.Comment, error) {
	var c models.Comment
	err := r.pool.QueryRow(ctx,
		`SELECT id, post_id, author_id, text, created FROM comments WHERE id = $1`, id,
	).Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Text, &c.Created)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID int) ([]*models.Comment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, post_id, author_id, text, created FROM comments WHERE post_id = $1 ORDER BY created, id`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Text, &c.Created); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

func (r *CommentRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return requireRow(tag)
}
