package domain

import (
	"strings"
	"time"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// WeightEntry is the weight reported for one month.
type WeightEntry struct {
	Month string  `bson:"month" json:"month"` // e.g. "2026-03"
	Value float64 `bson:"value" json:"value"`
}

// User represents a runner or an admin.
type User struct {
	ID            string        `bson:"_id" json:"id"`
	Name          string        `bson:"name" json:"name"`
	NameKey       string        `bson:"nameKey" json:"-"` // lower-cased name, unique
	PasswordHash  string        `bson:"passwordHash" json:"-"`
	Role          Role          `bson:"role" json:"role"`
	WeightHistory []WeightEntry `bson:"weightHistory" json:"weightHistory"`
	ActivePlanID  *string       `bson:"activePlanId,omitempty" json:"activePlanId,omitempty"`
	MonthlyKmGoal float64       `bson:"monthlyKmGoal" json:"monthlyKmGoal"`
	CreatedAt     time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NameKey normalizes a user name for case-insensitive uniqueness.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// UpsertWeight records value for month, replacing any entry already stored
// for that month. The replaced entry moves to the end of the history.
func (u *User) UpsertWeight(month string, value float64) {
	history := make([]WeightEntry, 0, len(u.WeightHistory)+1)
	for _, e := range u.WeightHistory {
		if e.Month != month {
			history = append(history, e)
		}
	}
	u.WeightHistory = append(history, WeightEntry{Month: month, Value: value})
}

// RemoveWeight drops the entry for month. It reports whether one existed.
func (u *User) RemoveWeight(month string) bool {
	history := make([]WeightEntry, 0, len(u.WeightHistory))
	for _, e := range u.WeightHistory {
		if e.Month != month {
			history = append(history, e)
		}
	}
	removed := len(history) != len(u.WeightHistory)
	u.WeightHistory = history
	return removed
}
