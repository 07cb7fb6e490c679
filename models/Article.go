package models

import (
	"errors"
	"html"
	"strings"
	"time"

	slugger "github.com/gosimple/slug"
	"github.com/twinj/uuid"
	"gorm.io/gorm"
)

type Article struct {
	ID             uint      `gorm:"primary_key;autoIncrement" json:"id"`
	PublicID       string    `gorm:"type:uuid;uniqueIndex;column:public_id" json:"public_id"`
	Slug           string    `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Title          string    `gorm:"size:255;not null" json:"title"`
	Description    string    `gorm:"size:1024" json:"description"`
	Body           string    `gorm:"text;not null;" json:"body"`
	Author         User      `gorm:"foreignKey:AuthorID" json:"author"`
	AuthorID       uint      `gorm:"not null;index" json:"author_id"`
	Tags           []Tag     `gorm:"many2many:article_tags;" json:"tags"`
	Comments       []Comment `gorm:"foreignKey:ArticleID" json:"comments"`
	FavoritesCount int64     `gorm:"not null;default:0" json:"favorites_count"`
	CreatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (a *Article) BeforeCreate(tx *gorm.DB) (err error) {
	if strings.TrimSpace(a.PublicID) == "" {
		a.PublicID = uuid.NewV4().String()
	}
	return nil
}

func (a *Article) Prepare() {
	a.Title = html.EscapeString(strings.TrimSpace(a.Title))
	a.Description = html.EscapeString(strings.TrimSpace(a.Description))
	a.Body = html.EscapeString(strings.TrimSpace(a.Body))
	a.Author = User{}
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
}

func (a *Article) Validate() map[string]string {
	var errorMessages = make(map[string]string)

	if a.Title == "" {
		errorMessages["Required_title"] = "Title is required"
	}
	if a.Body == "" {
		errorMessages["Required_body"] = "Body is required"
	}
	if a.AuthorID == 0 {
		errorMessages["Required_author"] = "Author is required"
	}
	return errorMessages
}

// MakeSlug derives the article slug from the title. When the natural slug is
// already taken a short suffix from a fresh uuid keeps it unique instead of
// failing the insert.
func (a *Article) MakeSlug(db *gorm.DB) error {
	base := slugger.Make(a.Title)
	if base == "" {
		return errors.New("cannot derive slug from title")
	}

	var count int64
	query := db.Model(&Article{}).Where("slug = ?", base)
	if a.ID != 0 {
		query = query.Where("id <> ?", a.ID)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		a.Slug = base
		return nil
	}

	suffix := strings.Split(uuid.NewV4().String(), "-")[0]
	a.Slug = base + "-" + suffix
	return nil
}

func (a *Article) SaveArticle(db *gorm.DB) (*Article, error) {
	if err := a.MakeSlug(db); err != nil {
		return nil, err
	}
	if err := db.Create(a).Error; err != nil {
		return nil, err
	}

	// Load the author association after creating the article.
	if err := db.Model(a).Association("Author").Find(&a.Author); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Article) FindArticleBySlug(db *gorm.DB, slug string) (*Article, error) {
	err := db.Preload("Author").Preload("Tags").
		Where("slug = ?", strings.TrimSpace(slug)).Take(a).Error
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ArticleFilters narrows FindAllArticles. Zero values mean "no filter".
type ArticleFilters struct {
	Tag         string
	Author      string
	FavoritedBy string
	Limit       int
	Offset      int
}

func (a *Article) FindAllArticles(db *gorm.DB, filters ArticleFilters) ([]Article, int64, error) {
	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := db.Model(&Article{})
	if filters.Tag != "" {
		query = query.
			Joins("JOIN article_tags ON article_tags.article_id = articles.id").
			Joins("JOIN tags ON tags.id = article_tags.tag_id").
			Where("tags.name = ?", filters.Tag)
	}
	if filters.Author != "" {
		query = query.
			Joins("JOIN users AS authors ON authors.id = articles.author_id").
			Where("authors.username = ?", strings.ToLower(filters.Author))
	}
	if filters.FavoritedBy != "" {
		query = query.
			Joins("JOIN favorites ON favorites.article_id = articles.id").
			Joins("JOIN users AS favoriters ON favoriters.id = favorites.user_id").
			Where("favoriters.username = ?", strings.ToLower(filters.FavoritedBy))
	}

	// Count on a fresh session so its select clause cannot leak into the page
	// query below.
	var total int64
	if err := query.Session(&gorm.Session{}).
		Distinct("articles.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var articles []Article
	err := query.Distinct("articles.*").Preload("Author").Preload("Tags").
		Order("articles.created_at DESC").
		Limit(limit).Offset(filters.Offset).
		Find(&articles).Error
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

// FindFeedArticles returns articles written by the given authors, newest
// first. An empty author set short-circuits to an empty feed.
func (a *Article) FindFeedArticles(db *gorm.DB, authorIDs []uint, limit, offset int) ([]Article, int64, error) {
	if len(authorIDs) == 0 {
		return []Article{}, 0, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := db.Model(&Article{}).Where("author_id IN ?", authorIDs).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var articles []Article
	err := db.Preload("Author").Preload("Tags").
		Where("author_id IN ?", authorIDs).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&articles).Error
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

func (a *Article) UpdateArticle(db *gorm.DB) (*Article, error) {
	err := db.Model(&Article{}).Where("id = ?", a.ID).Updates(map[string]interface{}{
		"slug":        a.Slug,
		"title":       a.Title,
		"description": a.Description,
		"body":        a.Body,
		"updated_at":  time.Now(),
	}).Error
	if err != nil {
		return nil, err
	}

	err = db.Preload("Author").Preload("Tags").Where("id = ?", a.ID).Take(a).Error
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Article) DeleteArticle(db *gorm.DB) (int64, error) {
	// Drop dependents first: comments, favorite edges, tag links.
	if err := db.Where("article_id = ?", a.ID).Delete(&Comment{}).Error; err != nil {
		return 0, err
	}
	if err := db.Where("article_id = ?", a.ID).Delete(&Favorite{}).Error; err != nil {
		return 0, err
	}
	if err := db.Exec("DELETE FROM article_tags WHERE article_id = ?", a.ID).Error; err != nil {
		return 0, err
	}

	result := db.Delete(&Article{}, "id = ?", a.ID)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DeleteUserArticles removes every article a user authored, including
// dependent rows. Called when an account is deleted.
func (a *Article) DeleteUserArticles(db *gorm.DB, uid uint) (int64, error) {
	var articles []Article
	if err := db.Select("id").Where("author_id = ?", uid).Find(&articles).Error; err != nil {
		return 0, err
	}
	var deleted int64
	for i := range articles {
		n, err := articles[i].DeleteArticle(db)
		if err != nil {
			return deleted, err
		}
		deleted += n
	}
	return deleted, nil
}
