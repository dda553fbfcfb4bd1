package postgres

import (
	"context"
	"fmt"

	"yatube/app/models"
	"yatube/app/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postColumns = `id, text, pub_date, author_id, group_id, image`

type PostRepository struct {
	pool *pgxpool.Pool
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO posts (text, pub_date, author_id, group_id, image) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		post.Text, post.PubDate, post.AuthorID, post.GroupID, post.Image,
	).Scan(&post.ID)
	if pgErrorCode(err) == foreignKeyViolation {
		return repositories.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	post, err := scanPost(row)
	if err != nil {
		return nil, notFound(err)
	}
	return post, nil
}

// Update overwrites text, group and image. Author and pub_date never change.
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE posts SET text = $2, group_id = $3, image = $4 WHERE id = $1 RETURNING author_id, pub_date`,
		post.ID, post.Text, post.GroupID, post.Image,
	).Scan(&post.AuthorID, &post.PubDate)
	if pgErrorCode(err) == foreignKeyViolation {
		return repositories.ErrNotFound
	}
	if err != nil {
		return notFound(err)
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id int) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM comments WHERE post_id = $1`, id); err != nil {
			return fmt.Errorf("delete post comments: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		return requireRow(tag)
	})
}

func (r *PostRepository) List(ctx context.Context, filter repositories.PostFilter, limit, offset int) ([]*models.Post, error) {
	posts := []*models.Post{}
	where, args, empty := whereClause(filter)
	if empty {
		return posts, nil
	}
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM posts %s ORDER BY pub_date DESC, id ASC LIMIT $%d OFFSET $%d`,
		postColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) Count(ctx context.Context, filter repositories.PostFilter) (int, error) {
	where, args, empty := whereClause(filter)
	if empty {
		return 0, nil
	}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts `+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return total, nil
}

// whereClause renders filter as SQL. empty reports a filter that can match
// nothing, which callers short-circuit.
func whereClause(filter repositories.PostFilter) (string, []any, bool) {
	switch {
	case filter.AuthorIDs != nil:
		if len(filter.AuthorIDs) == 0 {
			return "", nil, true
		}
		ids := make([]int64, len(filter.AuthorIDs))
		for i, id := range filter.AuthorIDs {
			ids[i] = int64(id)
		}
		return `WHERE author_id = ANY($1)`, []any{ids}, false
	case filter.GroupID > 0:
		return `WHERE group_id = $1`, []any{filter.GroupID}, false
	case filter.AuthorID > 0:
		return `WHERE author_id = $1`, []any{filter.AuthorID}, false
	default:
		return "", nil, false
	}
}

func scanPost(row pgx.Row) (*models.Post, error) {
	var p models.Post
	if err := row.Scan(&p.ID, &p.Text, &p.PubDate, &p.AuthorID, &p.GroupID, &p.Image); err != nil {
		return nil, err
	}
	return &p, nil
}
