package models

import (
	"encoding/json"
	"io"
	"time"
)

// Post — публикация ленты.
type Post struct {
	ID           int64     `json:"id"`
	User         string    `json:"user"`
	Avatar       string    `json:"avatar"`
	Content      string    `json:"content"`
	Image        *string   `json:"image"`
	Liked        []int64   `json:"liked"`
	Shared       []int64   `json:"shared"`
	CreatedAt    time.Time `json:"created_at"`
	LikesCount   int       `json:"likes_count"`
	SharedsCount int       `json:"shareds_count"`
	ILiked       bool      `json:"iliked"`
	IShared      bool      `json:"ishared"`
	Parent       []int64   `json:"parent"`
}

// PostPage — страница ленты в формате постраничной выдачи backend.
type PostPage struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Post  `json:"results"`
}

// PostDraft — содержимое новой или редактируемой публикации.
// Image необязателен; отправляется multipart-файлом с именем ImageName.
type PostDraft struct {
	Content   string
	Image     io.Reader
	ImageName string
}

type Comment struct {
	ID        int64     `json:"id"`
	User      string    `json:"user"`
	Avatar    string    `json:"avatar"`
	Body      string    `json:"body"`
	Post      int64     `json:"post"`
	CreatedAt time.Time `json:"created_at"`
}

type Notification struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	ToUser    string    `json:"to_user"`
	FromUser  string    `json:"from_user"`
	Avatar    string    `json:"avatar"`
	Post      *Post     `json:"post"`
	Comment   *int64    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	IsRead    bool      `json:"is_read"`
}

// Profile — профиль пользователя. FollowedUsernames backend отдаёт в
// произвольной форме, поэтому он не разбирается.
type Profile struct {
	ID                int64           `json:"id"`
	Username          string          `json:"username"`
	Email             string          `json:"email"`
	Name              string          `json:"name"`
	Bio               string          `json:"bio"`
	Avatar            string          `json:"avatar"`
	CoverImage        string          `json:"cover_image"`
	DateJoined        time.Time       `json:"date_joined"`
	IFollow           bool            `json:"i_follow"`
	Followers         int             `json:"followers"`
	Following         int             `json:"following"`
	FollowedUsernames json.RawMessage `json:"followed_usernames,omitempty"`
}

// ProfileUpdate — изменяемые поля профиля; пустые поля не отправляются.
type ProfileUpdate struct {
	Name string `json:"name,omitempty"`
	Bio  string `json:"bio,omitempty"`
}

// UserCard — пользователь в поиске и рекомендациях.
type UserCard struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	IFollow  bool   `json:"i_follow"`
}

type ChatMessage struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Message  string `json:"message"`
	Canal    string `json:"canal"`
}
