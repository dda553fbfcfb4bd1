package postgres

import (
	"context"
	"fmt"

	"yatube/app/models"
	"yatube/app/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GroupRepository struct {
	pool *pgxpool.Pool
}

func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO post_groups (title, slug, description) VALUES ($1, $2, $3) RETURNING id`,
		group.Title, group.Slug, group.Description,
	).Scan(&group.ID)
	if pgErrorCode(err) == uniqueViolation {
		return repositories.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert group: %w", err)
	}
	return nil
}

func (r *GroupRepository) GetByID(ctx context.Context, id int) (*models.Group, error) {
	return r.getOne(ctx, `SELECT id, title, slug, description FROM post_groups WHERE id = $1`, id)
}

func (r *GroupRepository) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	return r.getOne(ctx, `SELECT id, title, slug, description FROM post_groups WHERE slug = $1`, slug)
}

func (r *GroupRepository) getOne(ctx context.Context, query string, arg any) (*models.Group, error) {
	var g models.Group
	if err := r.pool.QueryRow(ctx, query, arg).Scan(&g.ID, &g.Title, &g.Slug, &g.Description); err != nil {
		return nil, notFound(err)
	}
	return &g, nil
}

func (r *GroupRepository) List(ctx context.Context) ([]*models.Group, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, title, slug, description FROM post_groups ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	groups := []*models.Group{}
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Title, &g.Slug, &g.Description); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, &g)
	}
	return groups, rows.Err()
}

// Delete clears group_id on the group's posts, then drops the group.
func (r *GroupRepository) Delete(ctx context.Context, id int) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE posts SET group_id = NULL WHERE group_id = $1`, id); err != nil {
			return fmt.Errorf("detach group posts: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM post_groups WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete group: %w", err)
		}
		return requireRow(tag)
	})
}
