package controllers

import (
	"Conduit/models"

	"gorm.io/gorm"
)

func userToDTO(user *models.User, token string) UserDTO {
	return UserDTO{
		Email:    user.Email,
		Token:    token,
		Username: user.Username,
		Bio:      user.Bio,
		Image:    user.Image,
	}
}

// profileToDTO builds the viewer-relative profile view. The Following flag is
// resolved here, exactly once; an absent viewer always reads false.
func profileToDTO(db *gorm.DB, user *models.User, viewerID uint, hasViewer bool) (ProfileDTO, error) {
	dto := ProfileDTO{
		Username:       user.Username,
		Bio:            user.Bio,
		Image:          user.Image,
		FollowersCount: int(user.FollowersCount),
		FollowingCount: int(user.FollowingCount),
	}
	if hasViewer {
		follow := models.Follow{}
		following, err := follow.IsFollowing(db, viewerID, user.ID)
		if err != nil {
			return ProfileDTO{}, err
		}
		dto.Following = following
	}
	return dto, nil
}

func tagNames(tags []models.Tag) []string {
	names := make([]string, len(tags))
	for i := range tags {
		names[i] = tags[i].Name
	}
	return names
}

// articleToDTO maps a single article with its viewer-relative flags.
// FavoritesCount comes from the maintained column on the article row, never
// from recounting a loaded collection.
func articleToDTO(db *gorm.DB, article *models.Article, viewerID uint, hasViewer bool) (ArticleDTO, error) {
	author, err := profileToDTO(db, &article.Author, viewerID, hasViewer)
	if err != nil {
		return ArticleDTO{}, err
	}

	dto := ArticleDTO{
		Slug:           article.Slug,
		Title:          article.Title,
		Description:    article.Description,
		Body:           article.Body,
		TagList:        tagNames(article.Tags),
		CreatedAt:      article.CreatedAt,
		UpdatedAt:      article.UpdatedAt,
		FavoritesCount: article.FavoritesCount,
		Author:         author,
	}
	if hasViewer {
		favorite := models.Favorite{}
		favorited, err := favorite.IsFavorited(db, viewerID, article.ID)
		if err != nil {
			return ArticleDTO{}, err
		}
		dto.Favorited = favorited
	}
	return dto, nil
}

// articlesToDTOs maps a page of articles, resolving the viewer's favorite and
// following sets with two IN-queries instead of one pair per row.
func articlesToDTOs(db *gorm.DB, articles []models.Article, viewerID uint, hasViewer bool) ([]ArticleDTO, error) {
	if len(articles) == 0 {
		return []ArticleDTO{}, nil
	}

	favoritedMap, followingMap, err := loadViewerRelationships(db, viewerID, hasViewer, articles)
	if err != nil {
		return nil, err
	}

	dtos := make([]ArticleDTO, len(articles))
	for i := range articles {
		article := &articles[i]
		dtos[i] = ArticleDTO{
			Slug:           article.Slug,
			Title:          article.Title,
			Description:    article.Description,
			Body:           article.Body,
			TagList:        tagNames(article.Tags),
			CreatedAt:      article.CreatedAt,
			UpdatedAt:      article.UpdatedAt,
			Favorited:      favoritedMap[article.ID],
			FavoritesCount: article.FavoritesCount,
			Author: ProfileDTO{
				Username:       article.Author.Username,
				Bio:            article.Author.Bio,
				Image:          article.Author.Image,
				Following:      followingMap[article.AuthorID],
				FollowersCount: int(article.Author.FollowersCount),
				FollowingCount: int(article.Author.FollowingCount),
			},
		}
	}
	return dtos, nil
}

// loadViewerRelationships resolves which of the listed articles the viewer
// has favorited and which of their authors the viewer follows. Anonymous
// viewers get empty maps, so every flag reads false.
func loadViewerRelationships(db *gorm.DB, viewerID uint, hasViewer bool, articles []models.Article) (map[uint]bool, map[uint]bool, error) {
	favoritedMap := make(map[uint]bool)
	followingMap := make(map[uint]bool)
	if !hasViewer || len(articles) == 0 {
		return favoritedMap, followingMap, nil
	}

	articleIDs := make([]uint, len(articles))
	authorIDs := make([]uint, len(articles))
	for i := range articles {
		articleIDs[i] = articles[i].ID
		authorIDs[i] = articles[i].AuthorID
	}

	var favoritedIDs []uint
	if err := db.Model(&models.Favorite{}).
		Select("article_id").
		Where("user_id = ? AND article_id IN ?", viewerID, articleIDs).
		Scan(&favoritedIDs).Error; err != nil {
		return nil, nil, err
	}
	for _, id := range favoritedIDs {
		favoritedMap[id] = true
	}

	var followedIDs []uint
	if err := db.Model(&models.Follow{}).
		Select("followed_id").
		Where("follower_id = ? AND followed_id IN ?", viewerID, authorIDs).
		Scan(&followedIDs).Error; err != nil {
		return nil, nil, err
	}
	for _, id := range followedIDs {
		followingMap[id] = true
	}

	return favoritedMap, followingMap, nil
}

// commentToDTO delegates author mapping to profileToDTO with the same viewer.
func commentToDTO(db *gorm.DB, comment *models.Comment, viewerID uint, hasViewer bool) (CommentDTO, error) {
	author, err := profileToDTO(db, &comment.Author, viewerID, hasViewer)
	if err != nil {
		return CommentDTO{}, err
	}
	return CommentDTO{
		ID:        comment.PublicID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
		Author:    author,
	}, nil
}

func commentsToDTOs(db *gorm.DB, comments []models.Comment, viewerID uint, hasViewer bool) ([]CommentDTO, error) {
	dtos := make([]CommentDTO, 0, len(comments))
	for i := range comments {
		dto, err := commentToDTO(db, &comments[i], viewerID, hasViewer)
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}
