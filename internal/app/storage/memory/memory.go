package memory

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fireworld/fireworld/internal/app/domain/activity"
	"github.com/fireworld/fireworld/internal/app/domain/message"
	"github.com/fireworld/fireworld/internal/app/domain/post"
	"github.com/fireworld/fireworld/internal/app/domain/user"
	"github.com/fireworld/fireworld/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local
// development. Misses return sql.ErrNoRows to match the postgres store.
type Store struct {
	mu          sync.RWMutex
	users       map[string]user.User
	usersByName map[string]string
	posts       map[string]post.Post
	activities  map[string]activity.Activity
	messages    []message.Message
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.PostStore = (*Store)(nil)
var _ storage.ActivityStore = (*Store)(nil)
var _ storage.MessageStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		users:       make(map[string]user.User),
		usersByName: make(map[string]string),
		posts:       make(map[string]post.Post),
		activities:  make(map[string]activity.Activity),
	}
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(u.Name)
	if _, exists := s.usersByName[key]; exists {
		return user.User{}, storage.ErrNameTaken
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()

	s.users[u.ID] = u
	s.usersByName[key] = u.ID
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *Store) GetUserByName(_ context.Context, name string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByName[strings.ToLower(name)]
	if !ok {
		return user.User{}, sql.ErrNoRows
	}
	return s.users[id], nil
}

func (s *Store) ListUsers(_ context.Context, exceptID string) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		if u.ID == exceptID {
			continue
		}
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// PostStore implementation ----------------------------------------------------

func (s *Store) CreatePost(_ context.Context, p post.Post) (post.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[p.OwnerID]; !ok {
		return post.Post{}, sql.ErrNoRows
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()
	p.Activities = nil

	s.posts[p.ID] = p
	return p, nil
}

func (s *Store) GetPost(_ context.Context, id string) (post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return post.Post{}, sql.ErrNoRows
	}
	return s.enrichPostLocked(p), nil
}

func (s *Store) ListPosts(_ context.Context, ownerID string, offset, limit int) ([]post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []post.Post
	for _, p := range s.posts {
		if ownerID != "" && p.OwnerID != ownerID {
			continue
		}
		result = append(result, s.enrichPostLocked(p))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if offset > len(result) {
		offset = len(result)
	}
	result = result[offset:]
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) DeletePost(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok || p.OwnerID != ownerID {
		return sql.ErrNoRows
	}
	delete(s.posts, id)
	for actID, act := range s.activities {
		if act.PostID == id {
			delete(s.activities, actID)
		}
	}
	return nil
}

func (s *Store) enrichPostLocked(p post.Post) post.Post {
	if owner, ok := s.users[p.OwnerID]; ok {
		p.AuthorName = owner.Name
		p.AuthorImageURL = owner.ImageURL
	}
	p.Activities = s.postActivitiesLocked(p.ID)
	return p
}

// ActivityStore implementation ------------------------------------------------

func (s *Store) CreateActivity(_ context.Context, act activity.Activity) (activity.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertActivityLocked(act)
}

func (s *Store) ToggleLike(_ context.Context, postID, userID string) (activity.Activity, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, act := range s.activities {
		if act.Kind == activity.KindLike && act.PostID == postID && act.UserID == userID {
			delete(s.activities, id)
			return act, true, nil
		}
	}

	created, err := s.insertActivityLocked(activity.Activity{
		Kind:   activity.KindLike,
		PostID: postID,
		UserID: userID,
	})
	return created, false, err
}

func (s *Store) ListPostActivities(_ context.Context, postID string) ([]activity.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.postActivitiesLocked(postID), nil
}

func (s *Store) DeleteActivity(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	act, ok := s.activities[id]
	if !ok || act.UserID != userID {
		return sql.ErrNoRows
	}
	delete(s.activities, id)
	return nil
}

func (s *Store) insertActivityLocked(act activity.Activity) (activity.Activity, error) {
	if _, ok := s.posts[act.PostID]; !ok {
		return activity.Activity{}, sql.ErrNoRows
	}
	if _, ok := s.users[act.UserID]; !ok {
		return activity.Activity{}, sql.ErrNoRows
	}
	if act.ID == "" {
		act.ID = uuid.NewString()
	}
	act.CreatedAt = time.Now().UTC()
	if author, ok := s.users[act.UserID]; ok {
		act.AuthorName = author.Name
		act.AuthorImageURL = author.ImageURL
	}
	s.activities[act.ID] = act
	return act, nil
}

func (s *Store) postActivitiesLocked(postID string) []activity.Activity {
	var result []activity.Activity
	for _, act := range s.activities {
		if act.PostID != postID {
			continue
		}
		if author, ok := s.users[act.UserID]; ok {
			act.AuthorName = author.Name
			act.AuthorImageURL = author.ImageURL
		}
		result = append(result, act)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result
}

// MessageStore implementation -------------------------------------------------

func (s *Store) CreateMessage(_ context.Context, m message.Message) (message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = time.Now().UTC()
	if sender, ok := s.users[m.SenderID]; ok {
		m.SenderName = sender.Name
		m.SenderImageURL = sender.ImageURL
	}
	s.messages = append(s.messages, m)
	return m, nil
}

func (s *Store) ListConversation(_ context.Context, userA, userB string) ([]message.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pair := message.PairKey(userA, userB)
	var result []message.Message
	for _, m := range s.messages {
		if message.PairKey(m.SenderID, m.RecipientID) != pair {
			continue
		}
		if sender, ok := s.users[m.SenderID]; ok {
			m.SenderName = sender.Name
			m.SenderImageURL = sender.ImageURL
		}
		result = append(result, m)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}
