package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/fireworld/fireworld/internal/app/domain/activity"
	"github.com/fireworld/fireworld/internal/app/domain/message"
	"github.com/fireworld/fireworld/internal/app/domain/post"
	"github.com/fireworld/fireworld/internal/app/domain/user"
	"github.com/fireworld/fireworld/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.PostStore = (*Store)(nil)
var _ storage.ActivityStore = (*Store)(nil)
var _ storage.MessageStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, password_hash, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, u.ID, u.Name, u.PasswordHash, u.ImageURL, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, storage.ErrNameTaken
		}
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, name, password_hash, image_url, created_at
		FROM users
		WHERE id = $1
	`, id))
}

func (s *Store) GetUserByName(ctx context.Context, name string) (user.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, name, password_hash, image_url, created_at
		FROM users
		WHERE lower(name) = lower($1)
	`, name))
}

func (s *Store) ListUsers(ctx context.Context, exceptID string) ([]user.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, password_hash, image_url, created_at
		FROM users
		WHERE id <> $1
		ORDER BY name
	`, exceptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Name, &u.PasswordHash, &u.ImageURL, &u.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (s *Store) scanUser(row *sql.Row) (user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.Name, &u.PasswordHash, &u.ImageURL, &u.CreatedAt); err != nil {
		return user.User{}, err
	}
	return u, nil
}

// --- PostStore --------------------------------------------------------------

func (s *Store) CreatePost(ctx context.Context, p post.Post) (post.Post, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (id, owner_id, text, created_at)
		VALUES ($1, $2, $3, $4)
	`, p.ID, p.OwnerID, p.Text, p.CreatedAt)
	if err != nil {
		return post.Post{}, err
	}
	return p, nil
}

func (s *Store) GetPost(ctx context.Context, id string) (post.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT p.id, p.owner_id, p.text, p.created_at, u.name, u.image_url
		FROM posts p
		JOIN users u ON u.id = p.owner_id
		WHERE p.id = $1
	`, id)

	var p post.Post
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Text, &p.CreatedAt, &p.AuthorName, &p.AuthorImageURL); err != nil {
		return post.Post{}, err
	}

	acts, err := s.activitiesForPosts(ctx, []string{p.ID})
	if err != nil {
		return post.Post{}, err
	}
	p.Activities = acts[p.ID]
	return p, nil
}

func (s *Store) ListPosts(ctx context.Context, ownerID string, offset, limit int) ([]post.Post, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.owner_id, p.text, p.created_at, u.name, u.image_url
		FROM posts p
		JOIN users u ON u.id = p.owner_id
		WHERE $1 = '' OR p.owner_id = $1
		ORDER BY p.created_at DESC, p.id DESC
		OFFSET $2 LIMIT NULLIF($3, 0)
	`, ownerID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		result []post.Post
		ids    []string
	)
	for rows.Next() {
		var p post.Post
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Text, &p.CreatedAt, &p.AuthorName, &p.AuthorImageURL); err != nil {
			return nil, err
		}
		result = append(result, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		acts, err := s.activitiesForPosts(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range result {
			result[i].Activities = acts[result[i].ID]
		}
	}
	return result, nil
}

func (s *Store) DeletePost(ctx context.Context, id, ownerID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM posts WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- ActivityStore ----------------------------------------------------------

func (s *Store) CreateActivity(ctx context.Context, act activity.Activity) (activity.Activity, error) {
	if act.ID == "" {
		act.ID = uuid.NewString()
	}
	act.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (id, type, post_id, user_id, message, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
	`, act.ID, act.Kind, act.PostID, act.UserID, act.Message, act.CreatedAt)
	if err != nil {
		return activity.Activity{}, err
	}

	if err := s.fillAuthor(ctx, act.UserID, &act.AuthorName, &act.AuthorImageURL); err != nil {
		return activity.Activity{}, err
	}
	return act, nil
}

// ToggleLike removes an existing like for (postID, userID) or inserts one,
// inside a single transaction. The partial unique index on likes makes the
// insert race-safe: a concurrent toggle hits the conflict branch instead of
// creating a duplicate.
func (s *Store) ToggleLike(ctx context.Context, postID, userID string) (activity.Activity, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return activity.Activity{}, false, err
	}
	defer tx.Rollback()

	var act activity.Activity
	act.Kind = activity.KindLike
	act.PostID = postID
	act.UserID = userID

	err = tx.QueryRowContext(ctx, `
		DELETE FROM activities
		WHERE post_id = $1 AND user_id = $2 AND type = 'like'
		RETURNING id, created_at
	`, postID, userID).Scan(&act.ID, &act.CreatedAt)
	if err == nil {
		return act, true, tx.Commit()
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return activity.Activity{}, false, err
	}

	act.ID = uuid.NewString()
	act.CreatedAt = time.Now().UTC()
	result, err := tx.ExecContext(ctx, `
		INSERT INTO activities (id, type, post_id, user_id, message, created_at)
		VALUES ($1, 'like', $2, $3, NULL, $4)
		ON CONFLICT (post_id, user_id) WHERE type = 'like' DO NOTHING
	`, act.ID, postID, userID, act.CreatedAt)
	if err != nil {
		return activity.Activity{}, false, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		// A concurrent toggle inserted the like first; report the stored row.
		err = tx.QueryRowContext(ctx, `
			SELECT id, created_at FROM activities
			WHERE post_id = $1 AND user_id = $2 AND type = 'like'
		`, postID, userID).Scan(&act.ID, &act.CreatedAt)
		if err != nil {
			return activity.Activity{}, false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return activity.Activity{}, false, err
	}

	if err := s.fillAuthor(ctx, userID, &act.AuthorName, &act.AuthorImageURL); err != nil {
		return activity.Activity{}, false, err
	}
	return act, false, nil
}

func (s *Store) ListPostActivities(ctx context.Context, postID string) ([]activity.Activity, error) {
	acts, err := s.activitiesForPosts(ctx, []string{postID})
	if err != nil {
		return nil, err
	}
	return acts[postID], nil
}

func (s *Store) DeleteActivity(ctx context.Context, id, userID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM activities WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) activitiesForPosts(ctx context.Context, postIDs []string) (map[string][]activity.Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.type, a.post_id, a.user_id, COALESCE(a.message, ''), a.created_at, u.name, u.image_url
		FROM activities a
		JOIN users u ON u.id = a.user_id
		WHERE a.post_id = ANY($1)
		ORDER BY a.created_at DESC, a.id DESC
	`, pq.Array(postIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]activity.Activity)
	for rows.Next() {
		var act activity.Activity
		if err := rows.Scan(&act.ID, &act.Kind, &act.PostID, &act.UserID, &act.Message, &act.CreatedAt, &act.AuthorName, &act.AuthorImageURL); err != nil {
			return nil, err
		}
		result[act.PostID] = append(result[act.PostID], act)
	}
	return result, rows.Err()
}

// --- MessageStore -----------------------------------------------------------

func (s *Store) CreateMessage(ctx context.Context, m message.Message) (message.Message, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, sender_id, recipient_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, m.ID, m.SenderID, m.RecipientID, m.Body, m.CreatedAt)
	if err != nil {
		return message.Message{}, err
	}

	if err := s.fillAuthor(ctx, m.SenderID, &m.SenderName, &m.SenderImageURL); err != nil {
		return message.Message{}, err
	}
	return m, nil
}

func (s *Store) ListConversation(ctx context.Context, userA, userB string) ([]message.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.sender_id, m.recipient_id, m.body, m.created_at, u.name, u.image_url
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE (m.sender_id = $1 AND m.recipient_id = $2)
		   OR (m.sender_id = $2 AND m.recipient_id = $1)
		ORDER BY m.created_at, m.id
	`, userA, userB)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []message.Message
	for rows.Next() {
		var m message.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Body, &m.CreatedAt, &m.SenderName, &m.SenderImageURL); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func (s *Store) fillAuthor(ctx context.Context, userID string, name, imageURL *string) error {
	return s.db.QueryRowContext(ctx, `
		SELECT name, image_url FROM users WHERE id = $1
	`, userID).Scan(name, imageURL)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
