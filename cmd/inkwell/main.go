package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/inkwell-api/inkwell/internal/auth"
	"github.com/inkwell-api/inkwell/internal/client"
	"github.com/inkwell-api/inkwell/internal/config"
	httpapp "github.com/inkwell-api/inkwell/internal/http"
	"github.com/inkwell-api/inkwell/internal/model"
	"github.com/inkwell-api/inkwell/internal/rate"
	"github.com/inkwell-api/inkwell/internal/store"
	"github.com/inkwell-api/inkwell/internal/store/memory"
	"github.com/inkwell-api/inkwell/internal/store/sqlite"
)

// CLIConfig holds the CLI client configuration persisted to disk.
type CLIConfig struct {
	BaseURL  string `json:"base_url"`
	Username string `json:"username"`
	Token    string `json:"token"`
	TokenExp string `json:"token_expires"`
}

func main() {
	if len(os.Args) < 2 {
		runServer()
		return
	}

	cmd := os.Args[1]

	if cmd == "-h" || cmd == "--help" || cmd == "help" {
		printUsage()
		return
	}

	if cmd == "-v" || cmd == "--version" || cmd == "version" {
		fmt.Println("inkwell v0.1.0")
		return
	}

	if strings.HasPrefix(cmd, "-") {
		runServer()
		return
	}

	args := os.Args[2:]

	switch cmd {
	case "server", "serve":
		runServer()
	case "login", "auth":
		cmdLogin(args)
	case "post", "write":
		cmdPost(args)
	case "comment":
		cmdComment(args)
	case "update", "edit":
		cmdUpdate(args)
	case "delete", "rm":
		cmdDelete(args)
	case "read", "list":
		cmdRead(args)
	case "search":
		cmdSearch(args)
	case "status", "whoami":
		cmdStatus(args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`inkwell - Blog post API

Usage: inkwell <command> [options]

Quick Start:
  inkwell login --user admin                        # Authenticate
  inkwell post --title "Hello" --content "First post"

Client Commands:
  login               Authenticate and store a bearer token
  post                Publish a new post
  comment             Comment on a post
  update              Update one of your posts
  delete              Delete one of your posts
  read                Read posts from the server
  search              Search posts by text or tag
  status              Show current config and token status

Server:
  server              Start the Inkwell server (default if no command)

Examples:
  inkwell login --user admin --url http://localhost:8080
  inkwell post --title "On Writing" --content "..." --tags essays,craft
  inkwell comment --post 3 --text "Lovely piece."
  inkwell read --sort title --direction asc --page 2
  inkwell read --post 3                             # View post with comments
  inkwell search --q coffee --tag reviews

Environment Variables (server):
  INKWELL_ADDR              Listen address (default: :8080)
  INKWELL_DB                SQLite path (default: in-memory store)
  INKWELL_ADMIN_USER        Admin username (default: admin)
  INKWELL_ADMIN_PASSWORD    Admin password
  INKWELL_TOKEN_TTL         Token lifetime (default: 1h)`)
}

// ============================================================================
// SERVER
// ============================================================================

func runServer() {
	cfg := config.Load()

	var st store.Store
	if cfg.DBPath != "" {
		s, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			log.Fatalf("failed to open db: %v", err)
		}
		st = s
	} else {
		st = memory.New()
	}
	defer st.Close()

	if err := seedAdmin(st, cfg); err != nil {
		log.Fatalf("failed to seed admin user: %v", err)
	}

	limiter := rate.NewMemory()
	authSvc := auth.NewService(st, cfg.TokenTTL)

	server := httpapp.NewServer(st, authSvc, limiter, cfg)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("inkwell listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
}

// seedAdmin ensures the configured admin account exists so the API is usable
// on a fresh store.
func seedAdmin(st store.Store, cfg config.Config) error {
	ctx := context.Background()
	if _, err := st.GetUser(ctx, cfg.AdminUser); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	return st.CreateUser(ctx, &model.User{
		Username:     cfg.AdminUser,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	})
}

// ============================================================================
// CLIENT COMMANDS
// ============================================================================

func cmdLogin(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	user := fs.String("user", "", "Username (required)")
	password := fs.String("password", "", "Password (read from INKWELL_PASSWORD if unset)")
	url := fs.String("url", "http://localhost:8080", "Inkwell server URL")
	fs.Parse(args)

	if *user == "" {
		fmt.Fprintln(os.Stderr, "Error: --user is required")
		fmt.Fprintln(os.Stderr, "Usage: inkwell login --user <name> [--password <pw>] [--url <server-url>]")
		os.Exit(1)
	}

	pw := *password
	if pw == "" {
		pw = os.Getenv("INKWELL_PASSWORD")
	}
	if pw == "" {
		fmt.Fprintln(os.Stderr, "Error: provide --password or set INKWELL_PASSWORD")
		os.Exit(1)
	}

	c := client.New(strings.TrimSuffix(*url, "/"))
	if err := c.Login(*user, pw); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := CLIConfig{
		BaseURL:  c.BaseURL,
		Username: *user,
		Token:    c.Token,
		TokenExp: c.TokenExp.Format(time.RFC3339),
	}
	if err := saveCLIConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Authenticated as '%s'\n", *user)
	fmt.Printf("  Expires: %s\n", cfg.TokenExp)
}

func cmdPost(args []string) {
	fs := flag.NewFlagSet("post", flag.ExitOnError)
	title := fs.String("title", "", "Post title (required)")
	content := fs.String("content", "", "Post content (required)")
	tags := fs.String("tags", "", "Comma-separated tags")
	fs.Parse(args)

	if *title == "" || *content == "" {
		fmt.Fprintln(os.Stderr, "Error: --title and --content are required")
		os.Exit(1)
	}

	c, err := loadAuthenticatedClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	post, err := c.CreatePost(*title, *content, splitTags(*tags))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Posted: %s\n", *title)
	fmt.Printf("  ID: %d\n", post.ID)
}

func cmdComment(args []string) {
	fs := flag.NewFlagSet("comment", flag.ExitOnError)
	postID := fs.Int64("post", 0, "Post ID (required)")
	text := fs.String("text", "", "Comment text (required)")
	fs.Parse(args)

	if *postID == 0 || *text == "" {
		fmt.Fprintln(os.Stderr, "Error: --post and --text are required")
		os.Exit(1)
	}

	c, err := loadAuthenticatedClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	comment, err := c.AddComment(*postID, *text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Commented on post %d\n", *postID)
	fmt.Printf("  ID: %d\n", comment.ID)
}

func cmdUpdate(args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	postID := fs.Int64("post", 0, "Post ID (required)")
	title := fs.String("title", "", "New title")
	content := fs.String("content", "", "New content")
	tags := fs.String("tags", "", "Comma-separated tags (replaces existing)")
	fs.Parse(args)

	if *postID == 0 {
		fmt.Fprintln(os.Stderr, "Error: --post is required")
		os.Exit(1)
	}
	if *title == "" && *content == "" && *tags == "" {
		fmt.Fprintln(os.Stderr, "Error: provide at least one of --title, --content or --tags")
		os.Exit(1)
	}

	c, err := loadAuthenticatedClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var titlePtr, contentPtr *string
	if *title != "" {
		titlePtr = title
	}
	if *content != "" {
		contentPtr = content
	}
	var tagList []string
	if *tags != "" {
		tagList = splitTags(*tags)
	}

	post, err := c.UpdatePost(*postID, titlePtr, contentPtr, tagList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Updated post %d: %s\n", post.ID, post.Title)
}

func cmdDelete(args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	postID := fs.Int64("post", 0, "Post ID to delete")
	fs.Parse(args)

	if *postID == 0 {
		fmt.Fprintln(os.Stderr, "Error: --post is required")
		fmt.Fprintln(os.Stderr, "Usage: inkwell delete --post <id>")
		os.Exit(1)
	}

	c, err := loadAuthenticatedClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := c.DeletePost(*postID); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Deleted post %d\n", *postID)
}

func cmdRead(args []string) {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	sort := fs.String("sort", "", "Sort field: title, content")
	direction := fs.String("direction", "", "Sort direction: asc, desc")
	page := fs.Int("page", 1, "Page number")
	perPage := fs.Int("per-page", 10, "Posts per page")
	postID := fs.Int64("post", 0, "Get specific post with comments")
	fs.Parse(args)

	c := client.New(baseURLOrDefault())

	if *postID != 0 {
		post, err := c.GetPost(*postID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("\n%s\n", post.Title)
		fmt.Printf("  By %s", post.Author)
		if len(post.Tags) > 0 {
			fmt.Printf(" | Tags: %s", strings.Join(post.Tags, ", "))
		}
		fmt.Printf("\n\n  %s\n", post.Content)

		if len(post.Comments) > 0 {
			fmt.Printf("\n  --- Comments (%d) ---\n", len(post.Comments))
			for _, comment := range post.Comments {
				fmt.Printf("  [%d] %s: %s\n", comment.ID, comment.Author, comment.Content)
			}
		}
		return
	}

	result, err := c.GetPosts(*sort, *direction, *page, *perPage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n📝 Inkwell (page %d of %d posts)\n\n", result.Page, result.Total)
	for i, p := range result.Posts {
		fmt.Printf("%d. %s\n", (result.Page-1)*result.PerPage+i+1, p.Title)
		line := fmt.Sprintf("   by %s | #%d", p.Author, p.ID)
		if len(p.Tags) > 0 {
			line += " | " + strings.Join(p.Tags, ", ")
		}
		fmt.Printf("%s\n\n", line)
	}
}

func cmdSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	q := fs.String("q", "", "Substring of title or content")
	tag := fs.String("tag", "", "Exact tag")
	fs.Parse(args)

	if *q == "" && *tag == "" {
		fmt.Fprintln(os.Stderr, "Error: provide --q and/or --tag")
		os.Exit(1)
	}

	c := client.New(baseURLOrDefault())
	posts, err := c.SearchPosts(*q, *tag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(posts) == 0 {
		fmt.Println("No matching posts")
		return
	}

	fmt.Printf("\n🔍 %d matching posts\n\n", len(posts))
	for _, p := range posts {
		fmt.Printf("  #%d %s (by %s)\n", p.ID, p.Title, p.Author)
	}
}

func cmdStatus(args []string) {
	cfg, err := loadCLIConfig()
	if err != nil {
		fmt.Println("Status: Not logged in")
		fmt.Println("\nRun: inkwell login --user <name>")
		return
	}

	fmt.Printf("User:   %s\n", cfg.Username)
	fmt.Printf("Server: %s\n", cfg.BaseURL)

	if cfg.Token == "" {
		fmt.Println("Token:  Not authenticated")
		fmt.Println("\nRun: inkwell login")
	} else {
		exp, _ := time.Parse(time.RFC3339, cfg.TokenExp)
		if time.Now().After(exp) {
			fmt.Println("Token:  Expired")
			fmt.Println("\nRun: inkwell login")
		} else {
			fmt.Printf("Token:  Valid until %s\n", cfg.TokenExp)
		}
	}
}

// ============================================================================
// HELPERS
// ============================================================================

func cliConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".inkwell", "config.json")
}

func loadCLIConfig() (CLIConfig, error) {
	data, err := os.ReadFile(cliConfigPath())
	if err != nil {
		return CLIConfig{}, errors.New("not logged in")
	}
	var cfg CLIConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, err
	}
	return cfg, nil
}

func saveCLIConfig(cfg CLIConfig) error {
	path := cliConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, _ := json.MarshalIndent(cfg, "", "  ")
	return os.WriteFile(path, data, 0600)
}

func baseURLOrDefault() string {
	cfg, _ := loadCLIConfig()
	if cfg.BaseURL != "" {
		return cfg.BaseURL
	}
	return "http://localhost:8080"
}

func loadAuthenticatedClient() (*client.Client, error) {
	cfg, err := loadCLIConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Token == "" {
		return nil, errors.New("not authenticated - run 'inkwell login'")
	}
	if cfg.TokenExp != "" {
		exp, _ := time.Parse(time.RFC3339, cfg.TokenExp)
		if time.Now().After(exp) {
			return nil, errors.New("token expired - run 'inkwell login'")
		}
	}

	c := client.New(cfg.BaseURL)
	c.Token = cfg.Token
	c.TokenExp, _ = time.Parse(time.RFC3339, cfg.TokenExp)
	return c, nil
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
