package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"postapp/app/models"

	"github.com/jmoiron/sqlx"
)

// SQLTagRepository implements TagRepository on Postgres or SQLite.
type SQLTagRepository struct {
	db *sqlx.DB
}

func NewSQLTagRepository(db *sqlx.DB) *SQLTagRepository {
	return &SQLTagRepository{db: db}
}

func (r *SQLTagRepository) Create(tag *models.Tag) error {
	_, err := r.db.Exec(r.db.Rebind(`
		INSERT INTO tags (name, slug) VALUES (?, ?)
		ON CONFLICT (slug) DO NOTHING
	`), tag.Name, tag.Slug)
	if err != nil {
		return fmt.Errorf("insert tag: %w", err)
	}
	return r.db.Get(tag, r.db.Rebind(`SELECT id, name, slug FROM tags WHERE slug = ?`), tag.Slug)
}

func (r *SQLTagRepository) GetBySlug(slug string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.Get(&tag, r.db.Rebind(`SELECT id, name, slug FROM tags WHERE slug = ?`), slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *SQLTagRepository) List() ([]*models.Tag, error) {
	tags := []*models.Tag{}
	if err := r.db.Select(&tags, `SELECT id, name, slug FROM tags ORDER BY name`); err != nil {
		return nil, err
	}
	return tags, nil
}
