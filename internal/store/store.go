package store

import (
	"context"
	"errors"

	"github.com/inkwell-api/inkwell/internal/model"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrDuplicateUser = errors.New("duplicate user")
)

// PostUpdate carries the fields of a partial update. Nil means "leave
// unchanged". Author and id cannot be updated.
type PostUpdate struct {
	Title   *string
	Content *string
	Tags    *[]string
}

type Store interface {
	PostStore
	UserStore
	AuthStore
	GetSiteStats(ctx context.Context) (model.SiteStats, error)
	Close() error
}

type PostStore interface {
	// CreatePost validates that title and content are non-empty, assigns a
	// fresh id and sets it on the post before returning it.
	CreatePost(ctx context.Context, post *model.Post) (int64, error)
	GetPost(ctx context.Context, id int64) (model.Post, error)
	// ListPosts returns every post in insertion order. Sorting and windowing
	// are the caller's concern.
	ListPosts(ctx context.Context) ([]model.Post, error)
	UpdatePost(ctx context.Context, id int64, upd PostUpdate) (model.Post, error)
	// DeletePost removes the post and all of its comments.
	DeletePost(ctx context.Context, id int64) error
	// AddComment assigns the next comment id within the post (1 for the
	// first comment) and sets it on the comment.
	AddComment(ctx context.Context, postID int64, comment *model.Comment) (int64, error)
	ListComments(ctx context.Context, postID int64) ([]model.Comment, error)
}

// UserStore is a fixed registry: users are created by seeding at process
// start, never through the request path.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, username string) (model.User, error)
}

type AuthStore interface {
	CreateToken(ctx context.Context, token model.Token) error
	GetToken(ctx context.Context, token string) (model.Token, error)
}
