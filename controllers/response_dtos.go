package controllers

import "time"

type UserDTO struct {
	Email    string `json:"email"`
	Token    string `json:"token,omitempty"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Image    string `json:"image"`
}

type ProfileDTO struct {
	Username       string `json:"username"`
	Bio            string `json:"bio"`
	Image          string `json:"image"`
	Following      bool   `json:"following"`
	FollowersCount int    `json:"followers_count"`
	FollowingCount int    `json:"following_count"`
}

type ArticleDTO struct {
	Slug           string     `json:"slug"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Body           string     `json:"body"`
	TagList        []string   `json:"tagList"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	Favorited      bool       `json:"favorited"`
	FavoritesCount int64      `json:"favoritesCount"`
	Author         ProfileDTO `json:"author"`
}

type CommentDTO struct {
	ID        string     `json:"id"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Author    ProfileDTO `json:"author"`
}

type InviteDTO struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}
