package models

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Favorite struct {
	ID        uint      `gorm:"primary_key;autoIncrement" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_favorites_unique" json:"user_id"`
	ArticleID uint      `gorm:"not null;index;uniqueIndex:idx_favorites_unique" json:"article_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// SaveFavorite inserts the edge if absent and bumps the article's
// favorites_count in the same transaction, so the counter can never drift
// from edge cardinality. Favoriting twice is a no-op.
func (f *Favorite) SaveFavorite(db *gorm.DB) (bool, error) {
	created := false
	err := db.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(f)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		created = true
		return tx.Model(&Article{}).
			Where("id = ?", f.ArticleID).
			UpdateColumn("favorites_count", gorm.Expr("favorites_count + 1")).Error
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// DeleteFavorite removes the edge if present, decrementing the counter only
// when a row actually went away. Removing a non-existent edge is tolerated.
func (f *Favorite) DeleteFavorite(db *gorm.DB) (int64, error) {
	var removed int64
	err := db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND article_id = ?", f.UserID, f.ArticleID).
			Delete(&Favorite{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected
		if removed == 0 {
			return nil
		}
		return tx.Model(&Article{}).
			Where("id = ? AND favorites_count > 0", f.ArticleID).
			UpdateColumn("favorites_count", gorm.Expr("favorites_count - 1")).Error
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// IsFavorited reports whether the user has favorited the article.
func (f *Favorite) IsFavorited(db *gorm.DB, userID, articleID uint) (bool, error) {
	var count int64
	err := db.Model(&Favorite{}).
		Where("user_id = ? AND article_id = ?", userID, articleID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountForArticle recounts the edges for an article straight from the table.
// Only used by tests and consistency checks; handlers read the maintained
// articles.favorites_count column.
func (f *Favorite) CountForArticle(db *gorm.DB, articleID uint) (int64, error) {
	var count int64
	err := db.Model(&Favorite{}).Where("article_id = ?", articleID).Count(&count).Error
	return count, err
}

// DeleteUserFavorites removes every favorite edge a user holds, fixing the
// counters of the affected articles. Called when an account is deleted.
func (f *Favorite) DeleteUserFavorites(db *gorm.DB, uid uint) (int64, error) {
	if err := db.Exec(
		"UPDATE articles SET favorites_count = favorites_count - 1 WHERE favorites_count > 0 AND id IN (SELECT article_id FROM favorites WHERE user_id = ?)",
		uid,
	).Error; err != nil {
		return 0, err
	}
	result := db.Where("user_id = ?", uid).Delete(&Favorite{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
