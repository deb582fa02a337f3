package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pribylovaa/go-social-client/internal/models"
)

const feedPageSize = 10

// Posts — страница ленты (нумерация с 1).
func (c *Client) Posts(ctx context.Context, page int) (*models.PostPage, error) {
	const op = "api.Posts"

	if page < 1 {
		page = 1
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pages", strconv.Itoa(feedPageSize))

	var out models.PostPage
	if err := c.d.Do(ctx, http.MethodGet, "blog/?"+q.Encode(), nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

func (c *Client) Post(ctx context.Context, id int64) (*models.Post, error) {
	const op = "api.Post"

	var out models.Post
	if err := c.d.Do(ctx, http.MethodGet, fmt.Sprintf("blog/%d/", id), nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// CreatePost публикует запись; тело уходит multipart-формой (content, image).
func (c *Client) CreatePost(ctx context.Context, draft models.PostDraft) error {
	const op = "api.CreatePost"

	if err := c.sendForm(ctx, http.MethodPost, "blog/", draft); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) EditPost(ctx context.Context, id int64, draft models.PostDraft) error {
	const op = "api.EditPost"

	if err := c.sendForm(ctx, http.MethodPut, fmt.Sprintf("blog/%d/", id), draft); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) DeletePost(ctx context.Context, id int64) error {
	const op = "api.DeletePost"

	if err := c.d.Do(ctx, http.MethodDelete, fmt.Sprintf("blog/%d/", id), nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Like переключает отметку «нравится» текущего пользователя.
func (c *Client) Like(ctx context.Context, id int64) error {
	const op = "api.Like"

	if err := c.d.Do(ctx, http.MethodPost, fmt.Sprintf("blog/like/%d/", id), nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Share переключает репост текущего пользователя.
func (c *Client) Share(ctx context.Context, id int64) error {
	const op = "api.Share"

	if err := c.d.Do(ctx, http.MethodPost, fmt.Sprintf("blog/shared/%d/", id), nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) UserPosts(ctx context.Context, username string) ([]models.Post, error) {
	return c.postList(ctx, "api.UserPosts", "blog/my/"+url.PathEscape(username)+"/")
}

func (c *Client) UserLikes(ctx context.Context, username string) ([]models.Post, error) {
	return c.postList(ctx, "api.UserLikes", "blog/likes/"+url.PathEscape(username)+"/")
}

func (c *Client) UserShared(ctx context.Context, username string) ([]models.Post, error) {
	return c.postList(ctx, "api.UserShared", "blog/shared/"+url.PathEscape(username)+"/")
}

func (c *Client) Comments(ctx context.Context, postID int64) ([]models.Comment, error) {
	const op = "api.Comments"

	var out []models.Comment
	if err := c.d.Do(ctx, http.MethodGet, fmt.Sprintf("blog/comments/%d/", postID), nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (c *Client) AddComment(ctx context.Context, postID int64, body string) error {
	const op = "api.AddComment"

	in := map[string]any{"id": postID, "body": body}
	if err := c.d.Do(ctx, http.MethodPost, fmt.Sprintf("blog/comments/%d/", postID), in, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) EditComment(ctx context.Context, id int64, body string) error {
	const op = "api.EditComment"

	in := map[string]any{"id": id, "body": body}
	if err := c.d.Do(ctx, http.MethodPut, fmt.Sprintf("blog/comment/%d/", id), in, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) DeleteComment(ctx context.Context, id int64) error {
	const op = "api.DeleteComment"

	if err := c.d.Do(ctx, http.MethodDelete, fmt.Sprintf("blog/comment/%d/", id), nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) postList(ctx context.Context, op, path string) ([]models.Post, error) {
	var out []models.Post
	if err := c.d.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (c *Client) sendForm(ctx context.Context, method, path string, draft models.PostDraft) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("content", draft.Content); err != nil {
		return err
	}

	if draft.Image != nil {
		name := draft.ImageName
		if name == "" {
			name = "image"
		}

		fw, err := mw.CreateFormFile("image", name)
		if err != nil {
			return err
		}
		if _, err := io.Copy(fw, draft.Image); err != nil {
			return err
		}
	}

	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.d.Send(req, nil)
}
