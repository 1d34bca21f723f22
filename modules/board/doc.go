// Package board serves the posts and comments API mounted at /api/posts.
// Reading is public; writing needs a signed-in user, and deleting a post or
// a comment is reserved to its author.
package board
