package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-social-client/internal/credential/credentialtest"
	"github.com/pribylovaa/go-social-client/internal/gateway"
	"github.com/pribylovaa/go-social-client/internal/models"
	"github.com/pribylovaa/go-social-client/internal/session"
	"github.com/pribylovaa/go-social-client/internal/storage/memory"
	"github.com/pribylovaa/go-social-client/internal/transport"
)

type noRenew struct{}

func (noRenew) Renew(context.Context, string) (models.CredentialPair, error) {
	return models.CredentialPair{}, errors.New("renewal not expected")
}

// newClient поднимает backend с handler и api.Client поверх настоящего gateway.
func newClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer "))
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	st, err := session.NewStore(context.Background(), memory.New(), nil)
	require.NoError(t, err)
	require.NoError(t, st.Save(context.Background(), models.CredentialPair{
		Access:  credentialtest.ExpiringIn(t, time.Hour),
		Refresh: "r",
	}))

	gw, err := gateway.New(gateway.Options{Store: st, Renewer: noRenew{}, BaseURL: srv.URL})
	require.NoError(t, err)

	return New(gw)
}

func reply(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestPosts_PageQuery(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/blog/", r.URL.Path)
		require.Equal(t, "2", r.URL.Query().Get("page"))
		require.Equal(t, "10", r.URL.Query().Get("pages"))

		_, _ = io.WriteString(w, `{"count":11,"next":null,"previous":"http://x/blog/?page=1","results":[
			{"id":5,"user":"ana","avatar":"/a.png","content":"hola","image":null,"liked":[1,2],"shared":[],
			 "created_at":"2024-03-01T10:00:00.123456Z","likes_count":2,"shareds_count":0,"iliked":true,"ishared":false,"parent":[7]}]}`)
	})

	page, err := c.Posts(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, 11, page.Count)
	require.Nil(t, page.Next)
	require.Len(t, page.Results, 1)

	p := page.Results[0]
	require.Equal(t, int64(5), p.ID)
	require.True(t, p.ILiked)
	require.Equal(t, []int64{1, 2}, p.Liked)
	require.Nil(t, p.Image)
	require.Equal(t, 2024, p.CreatedAt.Year())
}

func TestCreatePost_Multipart(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/blog/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "hola", r.FormValue("content"))

		f, hdr, err := r.FormFile("image")
		require.NoError(t, err)
		defer f.Close()
		require.Equal(t, "cat.png", hdr.Filename)
		raw, _ := io.ReadAll(f)
		require.Equal(t, "PNG", string(raw))

		w.WriteHeader(http.StatusCreated)
	})

	err := c.CreatePost(context.Background(), models.PostDraft{
		Content:   "hola",
		Image:     strings.NewReader("PNG"),
		ImageName: "cat.png",
	})
	require.NoError(t, err)
}

func TestEditPost_WithoutImage(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/blog/9/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "edited", r.FormValue("content"))
		_, _, err := r.FormFile("image")
		require.ErrorIs(t, err, http.ErrMissingFile)
	})

	require.NoError(t, c.EditPost(context.Background(), 9, models.PostDraft{Content: "edited"}))
}

func TestEndpoints_MethodAndPath(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name   string
		method string
		path   string
		body   any
		call   func(c *Client) error
	}{
		{"post", http.MethodGet, "/blog/4/", map[string]any{"id": 4}, func(c *Client) error { _, err := c.Post(context.Background(), 4); return err }},
		{"delete_post", http.MethodDelete, "/blog/4/", nil, func(c *Client) error { return c.DeletePost(context.Background(), 4) }},
		{"like", http.MethodPost, "/blog/like/4/", map[string]string{"status": "ok"}, func(c *Client) error { return c.Like(context.Background(), 4) }},
		{"share", http.MethodPost, "/blog/shared/4/", map[string]string{"status": "ok"}, func(c *Client) error { return c.Share(context.Background(), 4) }},
		{"user_posts", http.MethodGet, "/blog/my/ana/", []any{}, func(c *Client) error { _, err := c.UserPosts(context.Background(), "ana"); return err }},
		{"user_likes", http.MethodGet, "/blog/likes/ana/", []any{}, func(c *Client) error { _, err := c.UserLikes(context.Background(), "ana"); return err }},
		{"user_shared", http.MethodGet, "/blog/shared/ana/", []any{}, func(c *Client) error { _, err := c.UserShared(context.Background(), "ana"); return err }},
		{"comments", http.MethodGet, "/blog/comments/4/", []any{}, func(c *Client) error { _, err := c.Comments(context.Background(), 4); return err }},
		{"add_comment", http.MethodPost, "/blog/comments/4/", map[string]any{}, func(c *Client) error { return c.AddComment(context.Background(), 4, "hi") }},
		{"edit_comment", http.MethodPut, "/blog/comment/8/", map[string]any{}, func(c *Client) error { return c.EditComment(context.Background(), 8, "hi") }},
		{"delete_comment", http.MethodDelete, "/blog/comment/8/", nil, func(c *Client) error { return c.DeleteComment(context.Background(), 8) }},
		{"noti", http.MethodGet, "/noti/", []any{}, func(c *Client) error { _, err := c.Notifications(context.Background()); return err }},
		{"noti_unread", http.MethodGet, "/noti/no/", []any{}, func(c *Client) error { _, err := c.UnreadNotifications(context.Background()); return err }},
		{"noti_read", http.MethodPut, "/noti/leer/", nil, func(c *Client) error { return c.MarkNotificationsRead(context.Background()) }},
		{"profile", http.MethodGet, "/users/ana/", map[string]any{"username": "ana"}, func(c *Client) error { _, err := c.Profile(context.Background(), "ana"); return err }},
		{"update_profile", http.MethodPut, "/users/ana/", map[string]any{}, func(c *Client) error {
			return c.UpdateProfile(context.Background(), "ana", models.ProfileUpdate{Bio: "hi"})
		}},
		{"follow", http.MethodPost, "/users/follow/bob/", map[string]string{"detail": "ok"}, func(c *Client) error { return c.Follow(context.Background(), "bob") }},
		{"reco", http.MethodGet, "/users/reco/", []any{}, func(c *Client) error { _, err := c.Recommendations(context.Background()); return err }},
		{"chat", http.MethodGet, "/chat/canal/bob/", []any{}, func(c *Client) error { _, err := c.ChatHistory(context.Background(), "bob"); return err }},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, tc.method, r.Method)
				require.Equal(t, tc.path, r.URL.Path)
				if tc.body == nil {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				reply(w, tc.body)
			})

			require.NoError(t, tc.call(c))
		})
	}
}

func TestSearchUsers_UnwrapsEnvelope(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/u/search/", r.URL.Path)
		require.Equal(t, "an a", r.URL.Query().Get("query"))
		reply(w, map[string]any{"users": []map[string]any{{"name": "Ana", "username": "ana", "avatar": "/a.png", "i_follow": true}}})
	})

	users, err := c.SearchUsers(context.Background(), "an a")
	require.NoError(t, err)
	require.Equal(t, []models.UserCard{{Name: "Ana", Username: "ana", Avatar: "/a.png", IFollow: true}}, users)
}

func TestUpdateProfile_OmitsEmpty(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, map[string]any{"bio": "hola"}, in)
	})

	require.NoError(t, c.UpdateProfile(context.Background(), "ana", models.ProfileUpdate{Bio: "hola"}))
}

func TestAPI_StatusErrorPassthrough(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.Profile(context.Background(), "ghost")
	require.Equal(t, http.StatusNotFound, transport.StatusCode(err))
}

func TestAPI_Unauthenticated(t *testing.T) {
	t.Parallel()

	st, err := session.NewStore(context.Background(), memory.New(), nil)
	require.NoError(t, err)
	gw, err := gateway.New(gateway.Options{Store: st, Renewer: noRenew{}, BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, err = New(gw).Notifications(context.Background())
	require.ErrorIs(t, err, gateway.ErrUnauthenticated)
}
