package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/inkwell-api/inkwell/internal/model"
	"github.com/inkwell-api/inkwell/internal/store"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrBadCredentials = errors.New("invalid username or password")
	ErrTokenExpired   = errors.New("token expired")
)

type Service struct {
	store    store.Store
	tokenTTL time.Duration
}

// Identity is the authenticated principal behind a validated bearer token.
type Identity struct {
	Username string
	Role     string
}

func NewService(store store.Store, tokenTTL time.Duration) *Service {
	return &Service{
		store:    store,
		tokenTTL: tokenTTL,
	}
}

// Login checks the password against the stored bcrypt hash and issues an
// opaque bearer token bound to the username.
func (s *Service) Login(ctx context.Context, username, password string) (model.Token, error) {
	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Token{}, ErrBadCredentials
		}
		return model.Token{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.Token{}, ErrBadCredentials
	}

	tokenValue, err := randomToken(32)
	if err != nil {
		return model.Token{}, err
	}
	token := model.Token{
		Token:     tokenValue,
		Username:  user.Username,
		ExpiresAt: time.Now().Add(s.tokenTTL),
	}
	if err := s.store.CreateToken(ctx, token); err != nil {
		return model.Token{}, err
	}
	return token, nil
}

// Authenticate resolves a bearer token to a live identity.
func (s *Service) Authenticate(ctx context.Context, bearer string) (Identity, error) {
	token, err := s.store.GetToken(ctx, bearer)
	if err != nil {
		return Identity{}, err
	}
	if time.Now().After(token.ExpiresAt) {
		return Identity{}, ErrTokenExpired
	}
	user, err := s.store.GetUser(ctx, token.Username)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Username: user.Username, Role: user.Role}, nil
}

// CanMutate reports whether the identity may update or delete the post:
// the post's author always can, admins can mutate any post.
func CanMutate(id Identity, post model.Post) bool {
	if id.Role == model.RoleAdmin {
		return true
	}
	return id.Username == post.Author
}

// HashPassword derives the bcrypt hash stored in the user registry.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func randomToken(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
