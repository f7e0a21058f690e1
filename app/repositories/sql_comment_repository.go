package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"postapp/app/models"

	"github.com/jmoiron/sqlx"
)

const commentColumns = `id, post_id, name, email, body, active, created, updated`

// SQLCommentRepository implements CommentRepository on Postgres or SQLite.
type SQLCommentRepository struct {
	db *sqlx.DB
}

func NewSQLCommentRepository(db *sqlx.DB) *SQLCommentRepository {
	return &SQLCommentRepository{db: db}
}

func (r *SQLCommentRepository) Create(comment *models.Comment) error {
	err := r.db.QueryRowx(r.db.Rebind(`
		INSERT INTO comments (post_id, name, email, body, active, created, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), comment.PostID, comment.Name, comment.Email, comment.Body, comment.Active, comment.Created.UTC(), comment.Updated.UTC()).
		Scan(&comment.ID)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *SQLCommentRepository) GetByID(id int) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.Get(&comment, r.db.Rebind(`SELECT `+commentColumns+` FROM comments WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *SQLCommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	err := r.db.Select(&comments, r.db.Rebind(`
		SELECT `+commentColumns+` FROM comments
		WHERE post_id = ?
		ORDER BY created, id
	`), postID)
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *SQLCommentRepository) ListActiveByPost(postID int) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	err := r.db.Select(&comments, r.db.Rebind(`
		SELECT `+commentColumns+` FROM comments
		WHERE post_id = ? AND active = ?
		ORDER BY created, id
	`), postID, true)
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *SQLCommentRepository) Update(comment *models.Comment) error {
	res, err := r.db.Exec(r.db.Rebind(`
		UPDATE comments
		SET name = ?, email = ?, body = ?, active = ?, updated = ?
		WHERE id = ?
	`), comment.Name, comment.Email, comment.Body, comment.Active, comment.Updated.UTC(), comment.ID)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLCommentRepository) Delete(id int) error {
	res, err := r.db.Exec(r.db.Rebind(`DELETE FROM comments WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
