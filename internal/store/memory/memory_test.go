package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/inkwell-api/inkwell/internal/model"
	"github.com/inkwell-api/inkwell/internal/store"
)

func TestCreatePostAssignsSequentialIDs(t *testing.T) {
	st := New()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		id, err := st.CreatePost(ctx, &model.Post{Title: "Post", Content: "Body", Author: "mara"})
		if err != nil {
			t.Fatalf("create post: %v", err)
		}
		if id != int64(i) {
			t.Fatalf("expected id %d, got %d", i, id)
		}
	}
}

func TestCreatePostValidation(t *testing.T) {
	st := New()
	ctx := context.Background()

	cases := []model.Post{
		{Title: "", Content: "Body"},
		{Title: "Title", Content: ""},
		{Title: "   ", Content: "Body"},
	}
	for _, p := range cases {
		if _, err := st.CreatePost(ctx, &p); !errors.Is(err, store.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", p, err)
		}
	}
}

func TestDeletedIDNotReused(t *testing.T) {
	st := New()
	ctx := context.Background()

	id1, _ := st.CreatePost(ctx, &model.Post{Title: "One", Content: "Body", Author: "mara"})
	if err := st.DeletePost(ctx, id1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	id2, err := st.CreatePost(ctx, &model.Post{Title: "Two", Content: "Body", Author: "mara"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id2 != id1+1 {
		t.Fatalf("deleted id must not be reused: got %d after deleting %d", id2, id1)
	}
}

func TestGetPostNotFound(t *testing.T) {
	st := New()
	if _, err := st.GetPost(context.Background(), 99); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListPostsInsertionOrder(t *testing.T) {
	st := New()
	ctx := context.Background()

	titles := []string{"zebra", "apple", "mango"}
	for _, title := range titles {
		if _, err := st.CreatePost(ctx, &model.Post{Title: title, Content: "Body", Author: "mara"}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	posts, err := st.ListPosts(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(posts))
	}
	for i, p := range posts {
		if p.Title != titles[i] {
			t.Fatalf("expected insertion order %v, got %+v", titles, posts)
		}
	}
}

func TestUpdatePostPartial(t *testing.T) {
	st := New()
	ctx := context.Background()

	id, _ := st.CreatePost(ctx, &model.Post{Title: "Old title", Content: "Old content", Author: "mara", Tags: []string{"a"}})

	newTitle := "New title"
	updated, err := st.UpdatePost(ctx, id, store.PostUpdate{Title: &newTitle})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "New title" {
		t.Fatalf("title not updated: %+v", updated)
	}
	if updated.Content != "Old content" {
		t.Fatalf("content must be unchanged: %+v", updated)
	}
	if updated.Author != "mara" {
		t.Fatalf("author must be unchanged: %+v", updated)
	}
	if len(updated.Tags) != 1 || updated.Tags[0] != "a" {
		t.Fatalf("tags must be unchanged: %+v", updated)
	}
}

func TestUpdatePostNotFound(t *testing.T) {
	st := New()
	title := "x"
	if _, err := st.UpdatePost(context.Background(), 42, store.PostUpdate{Title: &title}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeletePostCascadesComments(t *testing.T) {
	st := New()
	ctx := context.Background()

	id, _ := st.CreatePost(ctx, &model.Post{Title: "Post", Content: "Body", Author: "mara"})
	if _, err := st.AddComment(ctx, id, &model.Comment{Author: "theo", Content: "Nice"}); err != nil {
		t.Fatalf("comment: %v", err)
	}

	if err := st.DeletePost(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.ListComments(ctx, id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for comments of deleted post, got %v", err)
	}
}

func TestCommentIDsScopedToPost(t *testing.T) {
	st := New()
	ctx := context.Background()

	p1, _ := st.CreatePost(ctx, &model.Post{Title: "One", Content: "Body", Author: "mara"})
	p2, _ := st.CreatePost(ctx, &model.Post{Title: "Two", Content: "Body", Author: "mara"})

	id, err := st.AddComment(ctx, p1, &model.Comment{Author: "theo", Content: "a"})
	if err != nil || id != 1 {
		t.Fatalf("expected comment id 1 on post 1, got %d (%v)", id, err)
	}
	id, err = st.AddComment(ctx, p1, &model.Comment{Author: "theo", Content: "b"})
	if err != nil || id != 2 {
		t.Fatalf("expected comment id 2 on post 1, got %d (%v)", id, err)
	}
	id, err = st.AddComment(ctx, p2, &model.Comment{Author: "theo", Content: "c"})
	if err != nil || id != 1 {
		t.Fatalf("expected comment id 1 on post 2, got %d (%v)", id, err)
	}
}

func TestAddCommentValidation(t *testing.T) {
	st := New()
	ctx := context.Background()

	id, _ := st.CreatePost(ctx, &model.Post{Title: "Post", Content: "Body", Author: "mara"})
	if _, err := st.AddComment(ctx, id, &model.Comment{Author: "theo", Content: "  "}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := st.AddComment(ctx, 99, &model.Comment{Author: "theo", Content: "hi"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListCommentsEmptyNotNil(t *testing.T) {
	st := New()
	ctx := context.Background()

	id, _ := st.CreatePost(ctx, &model.Post{Title: "Post", Content: "Body", Author: "mara"})
	comments, err := st.ListComments(ctx, id)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if comments == nil {
		t.Fatal("expected empty slice, got nil")
	}
}

func TestDuplicateUser(t *testing.T) {
	st := New()
	ctx := context.Background()

	u := model.User{Username: "mara", PasswordHash: "x", Role: model.RoleStandard}
	if err := st.CreateUser(ctx, &u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := st.CreateUser(ctx, &u); !errors.Is(err, store.ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser, got %v", err)
	}
}

func TestSiteStats(t *testing.T) {
	st := New()
	ctx := context.Background()

	_ = st.CreateUser(ctx, &model.User{Username: "mara", PasswordHash: "x", Role: model.RoleStandard})
	id, _ := st.CreatePost(ctx, &model.Post{Title: "Post", Content: "Body", Author: "mara"})
	_, _ = st.AddComment(ctx, id, &model.Comment{Author: "mara", Content: "hi"})
	_, _ = st.AddComment(ctx, id, &model.Comment{Author: "mara", Content: "again"})

	stats, err := st.GetSiteStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Users != 1 || stats.Posts != 1 || stats.Comments != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestReturnedPostIsACopy(t *testing.T) {
	st := New()
	ctx := context.Background()

	id, _ := st.CreatePost(ctx, &model.Post{Title: "Post", Content: "Body", Author: "mara", Tags: []string{"a"}})
	got, _ := st.GetPost(ctx, id)
	got.Tags[0] = "mutated"

	again, _ := st.GetPost(ctx, id)
	if again.Tags[0] != "a" {
		t.Fatalf("store state leaked through returned slice: %+v", again)
	}
}
