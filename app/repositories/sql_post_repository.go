package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"postapp/app/models"

	"github.com/jmoiron/sqlx"
)

const postColumns = `p.id, p.title, p.slug, p.body, p.publish, p.created, p.updated, p.status`

// SQLPostRepository implements PostRepository on Postgres or SQLite.
type SQLPostRepository struct {
	db *sqlx.DB
}

func NewSQLPostRepository(db *sqlx.DB) *SQLPostRepository {
	return &SQLPostRepository{db: db}
}

func (r *SQLPostRepository) Create(post *models.Post) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowx(tx.Rebind(`
		INSERT INTO posts (title, slug, body, publish, created, updated, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), post.Title, post.Slug, post.Body, post.Publish.UTC(), post.Created.UTC(), post.Updated.UTC(), string(post.Status)).
		Scan(&post.ID)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	if err := setPostTags(tx, post.ID, post.Tags); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLPostRepository) GetByID(id int) (*models.Post, error) {
	return r.getOne(`SELECT `+postColumns+` FROM posts p WHERE p.id = ?`, id)
}

func (r *SQLPostRepository) GetPublishedByID(id int) (*models.Post, error) {
	return r.getOne(`SELECT `+postColumns+` FROM posts p WHERE p.id = ? AND p.status = ?`, id, string(models.StatusPublished))
}

// GetPublishedByDate matches the UTC calendar day of the publish timestamp.
func (r *SQLPostRepository) GetPublishedByDate(year, month, day int, slug string) (*models.Post, error) {
	start := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalises out-of-range values, so reject them explicitly.
	if start.Year() != year || int(start.Month()) != month || start.Day() != day {
		return nil, ErrNotFound
	}
	return r.getOne(`
		SELECT `+postColumns+` FROM posts p
		WHERE p.slug = ? AND p.status = ? AND p.publish >= ? AND p.publish < ?
		ORDER BY p.publish DESC, p.id DESC
		LIMIT 1
	`, slug, string(models.StatusPublished), start, start.AddDate(0, 0, 1))
}

func (r *SQLPostRepository) List(limit, offset int) ([]*models.Post, error) {
	if limit < 0 {
		limit = math.MaxInt32
	}
	return r.selectPosts(`
		SELECT `+postColumns+` FROM posts p
		ORDER BY p.publish DESC, p.id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
}

func (r *SQLPostRepository) ListPublished(tagSlug string, limit, offset int) ([]*models.Post, error) {
	where, args := publishedWhere(tagSlug)
	args = append(args, limit, offset)
	return r.selectPosts(`
		SELECT `+postColumns+` FROM posts p
		WHERE `+where+`
		ORDER BY p.publish DESC, p.id DESC
		LIMIT ? OFFSET ?
	`, args...)
}

func (r *SQLPostRepository) CountPublished(tagSlug string) (int, error) {
	where, args := publishedWhere(tagSlug)
	var n int
	if err := r.db.Get(&n, r.db.Rebind(`SELECT COUNT(*) FROM posts p WHERE `+where), args...); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

func publishedWhere(tagSlug string) (string, []any) {
	if tagSlug == "" {
		return `p.status = ?`, []any{string(models.StatusPublished)}
	}
	return `p.status = ? AND EXISTS (
			SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
			WHERE pt.post_id = p.id AND t.slug = ?
		)`, []any{string(models.StatusPublished), tagSlug}
}

// SimilarPublished counts the tags each published post shares with post and
// returns the best matches.
func (r *SQLPostRepository) SimilarPublished(post *models.Post, limit int) ([]*models.Post, error) {
	if len(post.Tags) == 0 {
		return []*models.Post{}, nil
	}
	query, args, err := sqlx.In(`
		SELECT `+postColumns+`, COUNT(pt.tag_id) AS same_tags
		FROM posts p
		JOIN post_tags pt ON pt.post_id = p.id
		JOIN tags t ON t.id = pt.tag_id
		WHERE t.slug IN (?) AND p.status = ? AND p.id <> ?
		GROUP BY `+postColumns+`
		ORDER BY same_tags DESC, p.publish DESC, p.id DESC
		LIMIT ?
	`, post.Tags, string(models.StatusPublished), post.ID, limit)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		models.Post
		SameTags int `db:"same_tags"`
	}
	if err := r.db.Select(&rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("similar posts: %w", err)
	}

	posts := make([]*models.Post, 0, len(rows))
	for i := range rows {
		posts = append(posts, &rows[i].Post)
	}
	if err := r.attachTags(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *SQLPostRepository) Update(post *models.Post) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(tx.Rebind(`
		UPDATE posts
		SET title = ?, slug = ?, body = ?, publish = ?, updated = ?, status = ?
		WHERE id = ?
	`), post.Title, post.Slug, post.Body, post.Publish.UTC(), post.Updated.UTC(), string(post.Status), post.ID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(tx.Rebind(`DELETE FROM post_tags WHERE post_id = ?`), post.ID); err != nil {
		return err
	}
	if err := setPostTags(tx, post.ID, post.Tags); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLPostRepository) Delete(id int) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM comments WHERE post_id = ?`,
		`DELETE FROM post_tags WHERE post_id = ?`,
	} {
		if _, err := tx.Exec(tx.Rebind(q), id); err != nil {
			return err
		}
	}

	res, err := tx.Exec(tx.Rebind(`DELETE FROM posts WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (r *SQLPostRepository) getOne(query string, args ...any) (*models.Post, error) {
	var post models.Post
	err := r.db.Get(&post, r.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.attachTags([]*models.Post{&post}); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *SQLPostRepository) selectPosts(query string, args ...any) ([]*models.Post, error) {
	posts := []*models.Post{}
	if err := r.db.Select(&posts, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	if err := r.attachTags(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// attachTags loads the tag slugs of posts in a single query.
func (r *SQLPostRepository) attachTags(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	byID := make(map[int]*models.Post, len(posts))
	ids := make([]int, 0, len(posts))
	for _, p := range posts {
		p.Tags = []string{}
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	query, args, err := sqlx.In(`
		SELECT pt.post_id, t.slug
		FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id IN (?)
		ORDER BY t.slug
	`, ids)
	if err != nil {
		return err
	}

	var rows []struct {
		PostID int    `db:"post_id"`
		Slug   string `db:"slug"`
	}
	if err := r.db.Select(&rows, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("load post tags: %w", err)
	}
	for _, row := range rows {
		if p, ok := byID[row.PostID]; ok {
			p.Tags = append(p.Tags, row.Slug)
		}
	}
	return nil
}

// setPostTags links postID to the given tag slugs, creating missing tags.
func setPostTags(tx *sqlx.Tx, postID int, slugs []string) error {
	for _, slug := range slugs {
		if _, err := tx.Exec(tx.Rebind(`
			INSERT INTO tags (name, slug) VALUES (?, ?)
			ON CONFLICT (slug) DO NOTHING
		`), slug, slug); err != nil {
			return fmt.Errorf("ensure tag %q: %w", slug, err)
		}
		var tagID int
		if err := tx.Get(&tagID, tx.Rebind(`SELECT id FROM tags WHERE slug = ?`), slug); err != nil {
			return fmt.Errorf("load tag %q: %w", slug, err)
		}
		if _, err := tx.Exec(tx.Rebind(`
			INSERT INTO post_tags (post_id, tag_id) VALUES (?, ?)
			ON CONFLICT DO NOTHING
		`), postID, tagID); err != nil {
			return fmt.Errorf("tag post %d with %q: %w", postID, slug, err)
		}
	}
	return nil
}
