// Seeds a SQLite store with demo users, posts and comments.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/inkwell-api/inkwell/internal/auth"
	"github.com/inkwell-api/inkwell/internal/model"
	"github.com/inkwell-api/inkwell/internal/store"
	"github.com/inkwell-api/inkwell/internal/store/sqlite"
)

var users = []struct {
	username string
	password string
	role     string
}{
	{"admin", "dev-admin-password", model.RoleAdmin},
	{"mara", "maras-password", model.RoleStandard},
	{"theo", "theos-password", model.RoleStandard},
	{"june", "junes-password", model.RoleStandard},
}

var posts = []struct {
	author  string
	title   string
	content string
	tags    []string
}{
	{"mara", "First post", "Hello, this is my first post on Inkwell. Expect occasional notes on coffee, code and everything in between.", []string{"meta"}},
	{"theo", "On slow mornings", "There is a particular quality to a morning with nothing scheduled. The coffee tastes better and the code reads cleaner.", []string{"essays", "coffee"}},
	{"june", "Three books I keep re-reading", "The Left Hand of Darkness, The Remains of the Day, and Invisible Cities. Each one gives up something new on every pass.", []string{"books"}},
	{"mara", "Notes from a week of debugging", "Five days chasing a bug that turned out to be a stale cache. Lessons learned: reproduce first, theorize second.", []string{"engineering"}},
	{"theo", "A field guide to city coffee", "Ranking every espresso within walking distance of the office. Spoiler: the tiny cart by the park wins.", []string{"coffee", "reviews"}},
	{"june", "Why I still write by hand", "Paper slows me down in the best way. The backspace key makes it too easy to abandon a thought halfway.", []string{"essays", "writing"}},
	{"mara", "Switching to mechanical keyboards", "Two weeks in and my wrists already thank me. My open-plan neighbors do not.", []string{"gear"}},
	{"admin", "Welcome to Inkwell", "House rules: be kind, stay on topic, and tag your posts so others can find them.", []string{"meta", "announcements"}},
}

var comments = []string{
	"Lovely piece, thanks for writing it.",
	"I had the exact opposite experience, oddly enough.",
	"Bookmarking this for the weekend.",
	"The bit about the cache made me laugh out loud.",
	"Which notebook do you use?",
	"Strong agree. The park cart is criminally underrated.",
	"Would love a follow-up on this.",
	"This convinced me to give it a try.",
}

func main() {
	dbPath := flag.String("db", "inkwell.db", "SQLite database path")
	flag.Parse()

	log.Printf("Seeding %s...", *dbPath)

	st, err := sqlite.Open(*dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	for _, u := range users {
		hash, err := auth.HashPassword(u.password)
		if err != nil {
			log.Fatalf("hash password for %s: %v", u.username, err)
		}
		err = st.CreateUser(ctx, &model.User{
			Username:     u.username,
			PasswordHash: hash,
			Role:         u.role,
		})
		if errors.Is(err, store.ErrDuplicateUser) {
			log.Printf("- User %s already exists", u.username)
			continue
		}
		if err != nil {
			log.Fatalf("create user %s: %v", u.username, err)
		}
		log.Printf("✓ Created user: %s (%s)", u.username, u.role)
	}

	var postIDs []int64
	for _, p := range posts {
		post := &model.Post{
			Title:   p.title,
			Content: p.content,
			Author:  p.author,
			Tags:    p.tags,
		}
		id, err := st.CreatePost(ctx, post)
		if err != nil {
			log.Printf("✗ Failed to create post: %v", err)
			continue
		}
		postIDs = append(postIDs, id)
		log.Printf("✓ Post #%d: %s (by %s)", id, p.title, p.author)
	}

	// 1-3 comments per post from random users
	totalComments := 0
	for _, postID := range postIDs {
		numComments := rand.Intn(3) + 1
		for i := 0; i < numComments; i++ {
			u := users[rand.Intn(len(users))]
			text := comments[rand.Intn(len(comments))]

			id, err := st.AddComment(ctx, postID, &model.Comment{
				Author:  u.username,
				Content: text,
			})
			if err != nil {
				log.Printf("✗ Failed to comment: %v", err)
				continue
			}
			totalComments++
			log.Printf("✓ Comment #%d on post #%d (by %s)", id, postID, u.username)
		}
	}

	fmt.Println("\n=== Seed Complete ===")
	fmt.Printf("Users:    %d\n", len(users))
	fmt.Printf("Posts:    %d\n", len(postIDs))
	fmt.Printf("Comments: %d\n", totalComments)
	fmt.Printf("\nRun the server with: INKWELL_DB=%s inkwell server\n", *dbPath)
}
