// Package memory implements the store on process-lifetime state. It is the
// default backend: a restart loses all data.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/inkwell-api/inkwell/internal/model"
	"github.com/inkwell-api/inkwell/internal/store"
)

type Store struct {
	mu     sync.RWMutex
	posts  []model.Post
	users  map[string]model.User
	tokens map[string]model.Token
	nextID int64
}

func New() *Store {
	return &Store{
		users:  make(map[string]model.User),
		tokens: make(map[string]model.Token),
		nextID: 1,
	}
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) CreatePost(ctx context.Context, post *model.Post) (int64, error) {
	if strings.TrimSpace(post.Title) == "" || strings.TrimSpace(post.Content) == "" {
		return 0, fmt.Errorf("%w: title and content are required", store.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	post.ID = s.nextID
	s.nextID++
	s.posts = append(s.posts, clonePost(*post))
	return post.ID, nil
}

func (s *Store) GetPost(ctx context.Context, id int64) (model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Post{}, store.ErrNotFound
	}
	return clonePost(s.posts[i]), nil
}

func (s *Store) ListPosts(ctx context.Context) ([]model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]model.Post, len(s.posts))
	for i, p := range s.posts {
		posts[i] = clonePost(p)
	}
	return posts, nil
}

func (s *Store) UpdatePost(ctx context.Context, id int64, upd store.PostUpdate) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Post{}, store.ErrNotFound
	}
	p := &s.posts[i]
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Content != nil {
		p.Content = *upd.Content
	}
	if upd.Tags != nil {
		p.Tags = append([]string(nil), (*upd.Tags)...)
	}
	return clonePost(*p), nil
}

func (s *Store) DeletePost(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return store.ErrNotFound
	}
	s.posts = append(s.posts[:i], s.posts[i+1:]...)
	return nil
}

func (s *Store) AddComment(ctx context.Context, postID int64, comment *model.Comment) (int64, error) {
	if strings.TrimSpace(comment.Content) == "" {
		return 0, fmt.Errorf("%w: content is required", store.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(postID)
	if i < 0 {
		return 0, store.ErrNotFound
	}
	p := &s.posts[i]

	// Comments are append-only, so the highest id is the last one.
	var next int64 = 1
	if n := len(p.Comments); n > 0 {
		next = p.Comments[n-1].ID + 1
	}
	comment.ID = next
	comment.PostID = postID
	p.Comments = append(p.Comments, *comment)
	return next, nil
}

func (s *Store) ListComments(ctx context.Context, postID int64) ([]model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(postID)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	return append([]model.Comment{}, s.posts[i].Comments...), nil
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Username]; ok {
		return store.ErrDuplicateUser
	}
	s.users[user.Username] = *user
	return nil
}

func (s *Store) GetUser(ctx context.Context, username string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return model.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) CreateToken(ctx context.Context, token model.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token.Token] = token
	return nil
}

func (s *Store) GetToken(ctx context.Context, token string) (model.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tokens[token]
	if !ok {
		return model.Token{}, store.ErrNotFound
	}
	return t, nil
}

func (s *Store) GetSiteStats(ctx context.Context) (model.SiteStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := model.SiteStats{
		Users: int64(len(s.users)),
		Posts: int64(len(s.posts)),
	}
	for _, p := range s.posts {
		stats.Comments += int64(len(p.Comments))
	}
	return stats, nil
}

// indexOf must be called with the lock held.
func (s *Store) indexOf(id int64) int {
	for i := range s.posts {
		if s.posts[i].ID == id {
			return i
		}
	}
	return -1
}

func clonePost(p model.Post) model.Post {
	if p.Tags != nil {
		p.Tags = append([]string{}, p.Tags...)
	}
	if p.Comments != nil {
		p.Comments = append([]model.Comment{}, p.Comments...)
	}
	return p
}
