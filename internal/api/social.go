package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pribylovaa/go-social-client/internal/models"
)

func (c *Client) Notifications(ctx context.Context) ([]models.Notification, error) {
	return c.notifications(ctx, "api.Notifications", "noti/")
}

func (c *Client) UnreadNotifications(ctx context.Context) ([]models.Notification, error) {
	return c.notifications(ctx, "api.UnreadNotifications", "noti/no/")
}

// MarkNotificationsRead помечает все уведомления прочитанными.
func (c *Client) MarkNotificationsRead(ctx context.Context) error {
	const op = "api.MarkNotificationsRead"

	if err := c.d.Do(ctx, http.MethodPut, "noti/leer/", nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) Profile(ctx context.Context, username string) (*models.Profile, error) {
	const op = "api.Profile"

	var out models.Profile
	if err := c.d.Do(ctx, http.MethodGet, "users/"+url.PathEscape(username)+"/", nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, username string, upd models.ProfileUpdate) error {
	const op = "api.UpdateProfile"

	if err := c.d.Do(ctx, http.MethodPut, "users/"+url.PathEscape(username)+"/", upd, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Follow переключает подписку на пользователя.
func (c *Client) Follow(ctx context.Context, username string) error {
	const op = "api.Follow"

	if err := c.d.Do(ctx, http.MethodPost, "users/follow/"+url.PathEscape(username)+"/", nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) Recommendations(ctx context.Context) ([]models.UserCard, error) {
	const op = "api.Recommendations"

	var out []models.UserCard
	if err := c.d.Do(ctx, http.MethodGet, "users/reco/", nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (c *Client) SearchUsers(ctx context.Context, query string) ([]models.UserCard, error) {
	const op = "api.SearchUsers"

	q := url.Values{}
	q.Set("query", query)

	var out struct {
		Users []models.UserCard `json:"users"`
	}
	if err := c.d.Do(ctx, http.MethodGet, "users/u/search/?"+q.Encode(), nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out.Users, nil
}

// ChatHistory — сообщения канала между текущим пользователем и username.
func (c *Client) ChatHistory(ctx context.Context, username string) ([]models.ChatMessage, error) {
	const op = "api.ChatHistory"

	var out []models.ChatMessage
	if err := c.d.Do(ctx, http.MethodGet, "chat/canal/"+url.PathEscape(username)+"/", nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (c *Client) notifications(ctx context.Context, op, path string) ([]models.Notification, error) {
	var out []models.Notification
	if err := c.d.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}
