package models

import (
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Invite struct {
	ID         uint       `gorm:"primary_key;autoIncrement" json:"id"`
	Email      string     `gorm:"size:100;not null;index" json:"email"`
	Token      string     `gorm:"size:255;not null;uniqueIndex" json:"token"`
	InviterID  uint       `gorm:"not null;index" json:"inviter_id"`
	Inviter    User       `gorm:"foreignKey:InviterID" json:"inviter"`
	AcceptedAt *time.Time `json:"accepted_at"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt  time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

const inviteTTL = 7 * 24 * time.Hour

func (i *Invite) Prepare() {
	i.Email = strings.ToLower(strings.TrimSpace(i.Email))
	i.Token = uuid.New().String()
	i.ExpiresAt = time.Now().Add(inviteTTL)
	i.CreatedAt = time.Now()
}

func (i *Invite) Validate() map[string]string {
	var errorMessages = make(map[string]string)

	if i.Email == "" {
		errorMessages["Required_email"] = "Required Email"
	}
	if i.Email != "" {
		if err := checkmail.ValidateFormat(i.Email); err != nil {
			errorMessages["Invalid_email"] = "Invalid Email"
		}
	}
	if i.InviterID == 0 {
		errorMessages["Required_inviter"] = "Inviter is required"
	}
	return errorMessages
}

func (i *Invite) SaveInvite(db *gorm.DB) (*Invite, error) {
	// Re-inviting the same address replaces the pending invite.
	if err := db.Where("email = ? AND accepted_at IS NULL", i.Email).Delete(&Invite{}).Error; err != nil {
		return nil, err
	}
	if err := db.Create(&i).Error; err != nil {
		return nil, err
	}
	return i, nil
}

func (i *Invite) FindByToken(db *gorm.DB, token string) (*Invite, error) {
	var invite Invite
	err := db.Where("token = ?", token).Take(&invite).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (i *Invite) MarkAccepted(db *gorm.DB) error {
	now := time.Now()
	i.AcceptedAt = &now
	return db.Model(&Invite{}).Where("id = ?", i.ID).
		Update("accepted_at", now).Error
}

func (i *Invite) Expired() bool {
	return time.Now().After(i.ExpiresAt)
}

func (i *Invite) Accepted() bool {
	return i.AcceptedAt != nil
}
