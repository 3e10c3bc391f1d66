package domain

import (
	"strings"

	"github.com/google/uuid"
)

// XPPerLevel is the amount of experience separating two consecutive levels.
const XPPerLevel = 100

// DefaultAvatarID is the avatar assigned to a freshly created profile.
const DefaultAvatarID = 1

// UserProfile is the per-device progress record: experience, streak,
// subscription tier and daily quota counters. UserID is opaque; new profiles
// get a UUID but any non-empty identifier is accepted.
//
// Day fields hold day-strings (see clock.Day) rather than timestamps so that
// quota resets and streak continuity compare calendar days, not instants.
type UserProfile struct {
	UserID   string `json:"userId"`
	AvatarID int    `json:"avatarId"`
	XP       int    `json:"xp"`
	Level    int    `json:"level"`

	IsPro bool `json:"isPro"`

	DailySolves   int    `json:"dailySolves"`
	DailyQuizzes  int    `json:"dailyQuizzes"`
	LastResetDate string `json:"lastResetDate"`

	Streak         int    `json:"streak"`
	LastActiveDate string `json:"lastActiveDate"`
}

// NewUserProfile creates a profile with a fresh user ID, level 1 and quota
// counters anchored to today. LastActiveDate is left empty so the first
// streak update starts the streak at 1.
func NewUserProfile(today string) UserProfile {
	return UserProfile{
		UserID:        uuid.NewString(),
		AvatarID:      DefaultAvatarID,
		XP:            0,
		Level:         LevelForXP(0),
		LastResetDate: today,
	}
}

// LevelForXP derives the level for a given amount of experience.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// XPIntoLevel is the experience earned since the current level was reached.
func (p UserProfile) XPIntoLevel() int {
	return p.XP % XPPerLevel
}

// XPToNextLevel is the experience still needed to reach the next level.
func (p UserProfile) XPToNextLevel() int {
	return XPPerLevel - p.XPIntoLevel()
}

// Validate checks the profile invariants.
func (p UserProfile) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return NewValidationError("userId", "cannot be empty", nil)
	}
	if p.XP < 0 {
		return NewValidationError("xp", "must be non-negative", nil)
	}
	if p.Level != LevelForXP(p.XP) {
		return NewValidationError("level", "does not match xp", nil)
	}
	if p.DailySolves < 0 || p.DailyQuizzes < 0 {
		return NewValidationError("daily counters", "must be non-negative", nil)
	}
	if p.Streak < 0 {
		return NewValidationError("streak", "must be non-negative", nil)
	}
	return nil
}
