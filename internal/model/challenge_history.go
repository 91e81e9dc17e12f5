package model

import "time"

// ChallengeTestHistory is an append-only leaderboard record. Exactly one
// row is written per participant when a challenge finishes; rows are never
// updated or deleted afterwards. StudentID is a raw id on purpose so the
// leaderboard survives account deletion. CreatedAt/UpdatedAt carry the
// challenge's own timestamps, not the time of the sweep that finished it.
type ChallengeTestHistory struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	StudentID uint      `json:"student_id" gorm:"not null;index"`
	Score     int       `json:"score" gorm:"not null"`
	FullName  string    `json:"full_name" gorm:"not null"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
