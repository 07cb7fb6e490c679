package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResetPassword struct {
	ID        uint      `gorm:"primary_key;autoIncrement" json:"id"`
	Email     string    `gorm:"size:100;not null;index" json:"email"`
	Token     string    `gorm:"size:255;not null;uniqueIndex" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

const resetTokenTTL = 2 * time.Hour

func (rp *ResetPassword) Prepare() {
	rp.Token = uuid.New().String()
	rp.ExpiresAt = time.Now().Add(resetTokenTTL)
	rp.CreatedAt = time.Now()
}

func (rp *ResetPassword) SaveDetails(db *gorm.DB) (*ResetPassword, error) {
	// A fresh request invalidates older tokens for the same address.
	if err := db.Where("email = ?", rp.Email).Delete(&ResetPassword{}).Error; err != nil {
		return nil, err
	}
	if err := db.Create(&rp).Error; err != nil {
		return nil, err
	}
	return rp, nil
}

func (rp *ResetPassword) FindByToken(db *gorm.DB, token string) (*ResetPassword, error) {
	var details ResetPassword
	err := db.Where("token = ?", token).Take(&details).Error
	if err != nil {
		return nil, err
	}
	return &details, nil
}

func (rp *ResetPassword) DeleteDetails(db *gorm.DB) (int64, error) {
	result := db.Where("id = ?", rp.ID).Delete(&ResetPassword{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (rp *ResetPassword) Expired() bool {
	return time.Now().After(rp.ExpiresAt)
}
