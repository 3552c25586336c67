// Package httpapp provides the HTTP server for Inkwell.
//
//	@title						Inkwell API
//	@version					1.0
//	@description				A blog-post content API: posts with tags and comments,
//	@description				full-text search, sorting, pagination and token-based
//	@description				authentication.
//	@description
//	@description				## Authentication
//	@description
//	@description				Read endpoints are public. Creating, updating and deleting
//	@description				content requires a bearer token from the login endpoint:
//	@description				```bash
//	@description				curl -X POST /api/login -d '{"username":"admin","password":"..."}'
//	@description				# Returns: {"access_token": "TOKEN", "expires_at": "..."}
//	@description				```
//	@description				Include the token in write requests:
//	@description				```bash
//	@description				curl -X POST /api/posts -H "Authorization: Bearer TOKEN" -d '{...}'
//	@description				```
//	@description				Tokens expire after one hour. Posts may only be updated or
//	@description				deleted by their author, or by a user with the admin role.
//
//	@contact.name				Inkwell
//	@license.name				MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token from the login endpoint
//
//	@tag.name					Posts
//	@tag.description			Create and browse posts. Listing supports sorting by title or content and page windowing; search matches a substring of title/content or an exact tag.
//
//	@tag.name					Comments
//	@tag.description			Flat, append-only discussion on posts. Comment ids are scoped to their post.
//
//	@tag.name					Authentication
//	@tag.description			Username/password login returning a time-limited bearer token.
//
//	@tag.name					Stats
//	@tag.description			Site-wide counters.
package httpapp
