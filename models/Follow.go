package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrSelfFollow = errors.New("cannot follow yourself")

type Follow struct {
	ID         uint      `gorm:"primary_key;autoIncrement" json:"id"`
	FollowerID uint      `gorm:"not null;index;uniqueIndex:idx_follows_unique;index:idx_follows_follower_created,priority:1" json:"follower_id"`
	FollowedID uint      `gorm:"not null;index;uniqueIndex:idx_follows_unique;index:idx_follows_followed_created,priority:1" json:"followed_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index:idx_follows_followed_created,priority:2;index:idx_follows_follower_created,priority:2" json:"created_at"`
}

// SaveFollow inserts the edge if absent. The returned flag reports whether a
// row was actually created, so follower counters only move on real inserts.
// A second identical follow is a no-op, not an error.
func (f *Follow) SaveFollow(db *gorm.DB) (bool, error) {
	if f.FollowerID == f.FollowedID {
		return false, ErrSelfFollow
	}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(f)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteFollow removes the edge if present and reports how many rows went
// away. Zero rows means the pair was never following to begin with.
func (f *Follow) DeleteFollow(db *gorm.DB) (int64, error) {
	result := db.Where("follower_id = ? AND followed_id = ?", f.FollowerID, f.FollowedID).
		Delete(&Follow{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// IsFollowing reports whether a directed edge follower -> followed exists.
func (f *Follow) IsFollowing(db *gorm.DB, followerID, followedID uint) (bool, error) {
	var count int64
	err := db.Model(&Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FollowedIDs returns the set of user ids the given user follows, used to
// build the personal article feed.
func (f *Follow) FollowedIDs(db *gorm.DB, followerID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&Follow{}).
		Where("follower_id = ?", followerID).
		Pluck("followed_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteUserFollowEdges removes every edge touching a user, fixing up the
// counters of the users on the other end first. Called when an account is
// deleted.
func DeleteUserFollowEdges(tx *gorm.DB, userID uint) error {
	if err := tx.Exec(
		"UPDATE users SET followers_count = followers_count - 1 WHERE followers_count > 0 AND id IN (SELECT followed_id FROM follows WHERE follower_id = ?)",
		userID,
	).Error; err != nil {
		return err
	}
	if err := tx.Exec(
		"UPDATE users SET following_count = following_count - 1 WHERE following_count > 0 AND id IN (SELECT follower_id FROM follows WHERE followed_id = ?)",
		userID,
	).Error; err != nil {
		return err
	}
	if err := tx.Where("follower_id = ? OR followed_id = ?", userID, userID).
		Delete(&Follow{}).Error; err != nil {
		return err
	}
	return nil
}
