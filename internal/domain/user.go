package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type Role string

const (
	RoleCitizen     Role = "CITIZEN"
	RoleExecutive   Role = "EXECUTIVE"
	RoleLegislative Role = "LEGISLATIVE"
	RoleAdmin       Role = "ADMIN"
)

func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleCitizen:
		return RoleCitizen, true
	case RoleExecutive:
		return RoleExecutive, true
	case RoleLegislative:
		return RoleLegislative, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

type ActivityType string

const (
	ActivityIssueCreated     ActivityType = "ISSUE_CREATED"
	ActivityMissionCompleted ActivityType = "MISSION_COMPLETED"
	ActivityLevelUp          ActivityType = "LEVEL_UP"
	ActivityRewardRedeemed   ActivityType = "REWARD_REDEEMED"
	ActivityPollVoted        ActivityType = "POLL_VOTED"
	ActivityBillVoted        ActivityType = "BILL_VOTED"
)

type Activity struct {
	ID           string       `json:"id"`
	Type         ActivityType `json:"type"`
	Title        string       `json:"title"`
	Date         time.Time    `json:"date"`
	PointsEarned int          `json:"pointsEarned"`
}

type User struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Avatar         string     `json:"avatar,omitempty"`
	Role           Role       `json:"role"`
	Points         int        `json:"points"`
	Level          int        `json:"level"`
	Badges         []string   `json:"badges"`
	RecentActivity []Activity `json:"recentActivity"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Award credits the activity's points, prepends it to the log and applies
// any level ups. newID supplies ids for the level-up entries.
func (u *User) Award(a Activity, newID func() string) int {
	u.Points += a.PointsEarned
	u.RecentActivity = append([]Activity{a}, u.RecentActivity...)

	if u.Level < 1 {
		u.Level = 1
	}
	levels := 0
	for u.Points >= u.Level*PointsPerLevel {
		u.Level++
		levels++
		u.RecentActivity = append([]Activity{{
			ID:    newID(),
			Type:  ActivityLevelUp,
			Title: fmt.Sprintf("Nível %d alcançado", u.Level),
			Date:  a.Date,
		}}, u.RecentActivity...)
	}
	return levels
}

func (u User) Clone() User {
	c := u
	c.Badges = slices.Clone(u.Badges)
	c.RecentActivity = slices.Clone(u.RecentActivity)
	if c.Badges == nil {
		c.Badges = []string{}
	}
	if c.RecentActivity == nil {
		c.RecentActivity = []Activity{}
	}
	return c
}
