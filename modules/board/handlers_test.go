package board_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/noticeboard/modules/board"
	"github.com/dmitrymomot/noticeboard/pkg/auth"
)

// asUser stands in for the session middleware: the X-Test-User header picks
// the signed-in user.
func asUser(users map[string]*auth.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, ok := users[r.Header.Get("X-Test-User")]; ok {
				r = r.WithContext(auth.WithUser(r.Context(), u))
			}
			next.ServeHTTP(w, r)
		})
	}
}

type boardAPI struct {
	handler http.Handler
}

func newAPI(t *testing.T) *boardAPI {
	t.Helper()
	alice := &auth.User{ID: uuid.New(), Name: "Alice"}
	bob := &auth.User{ID: uuid.New(), Name: "Bob"}
	svc := board.NewService(&memoryPosts{}, authorMap{alice.ID: alice, bob.ID: bob})

	r := chi.NewRouter()
	r.Use(asUser(map[string]*auth.User{"alice": alice, "bob": bob}))
	r.Mount("/api/posts", board.NewAPI(svc, nil, nil).Handle())
	return &boardAPI{handler: r}
}

func (b *boardAPI) do(t *testing.T, method, path, user, body string) (*httptest.ResponseRecorder, any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)

	var out any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func errorOf(v any) string {
	m, _ := v.(map[string]any)
	s, _ := m["error"].(string)
	return s
}

func TestAPI_Posts(t *testing.T) {
	t.Parallel()
	api := newAPI(t)

	rec, out := api.do(t, http.MethodPost, "/api/posts", "", `{"title":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized. Please log in.", errorOf(out))

	rec, out = api.do(t, http.MethodPost, "/api/posts", "alice", `{"content":"no title"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "title required", errorOf(out))

	rec, out = api.do(t, http.MethodPost, "/api/posts", "alice", `{"title":"Hello","content":"World"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	post := out.(map[string]any)
	id := post["id"].(string)
	assert.Equal(t, "Alice", post["author"].(map[string]any)["name"])

	rec, out = api.do(t, http.MethodGet, "/api/posts", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, out, 1)

	rec, out = api.do(t, http.MethodDelete, "/api/posts/"+id, "bob", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Not authorized", errorOf(out))

	rec, out = api.do(t, http.MethodDelete, "/api/posts/"+uuid.NewString(), "alice", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Post not found", errorOf(out))

	rec, _ = api.do(t, http.MethodDelete, "/api/posts/not-a-uuid", "alice", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, out = api.do(t, http.MethodDelete, "/api/posts/"+id, "alice", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"message": "Post deleted"}, out)
}

func TestAPI_Comments(t *testing.T) {
	t.Parallel()
	api := newAPI(t)

	_, out := api.do(t, http.MethodPost, "/api/posts", "alice", `{"title":"Thread"}`)
	id := out.(map[string]any)["id"].(string)
	base := "/api/posts/" + id + "/comments"

	rec, _ := api.do(t, http.MethodPost, base, "", `{"content":"hi"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, out = api.do(t, http.MethodPost, base, "bob", `{"content":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "content required", errorOf(out))

	rec, out = api.do(t, http.MethodPost, base, "bob", `{"content":"first!"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	comments := out.([]any)
	require.Len(t, comments, 1)
	commentID := comments[0].(map[string]any)["id"].(string)

	rec, out = api.do(t, http.MethodGet, base, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, out, 1)

	rec, _ = api.do(t, http.MethodGet, "/api/posts/"+uuid.NewString()+"/comments", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = api.do(t, http.MethodDelete, base+"/"+commentID, "alice", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, out = api.do(t, http.MethodDelete, base+"/"+commentID, "bob", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"message": "Comment deleted"}, out)
}
