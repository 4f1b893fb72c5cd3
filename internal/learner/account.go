// Package learner owns learner accounts and the progression ledger: XP,
// levels, day streaks, and lives.
package learner

import (
	"time"

	"github.com/biocactus/biocactus/internal/catalog"
)

// XP rules. XP only ever increases; level is derived as XP/100.
const (
	XPPerCorrectAnswer   = 10
	XPPerLessonCompleted = 20
	XPPerTopicCompleted  = 100
)

// Account is one learner's durable state. It is mutated only through Ledger
// operations and the login/onboarding paths.
type Account struct {
	ID                  string          `json:"id"`
	Email               string          `json:"email,omitempty"`
	DisplayName         string          `json:"displayName,omitempty"`
	PhotoURL            string          `json:"photoURL,omitempty"`
	XP                  int             `json:"xp"`
	Level               int             `json:"level"`
	Streak              int             `json:"streak"`
	LastActivityDate    *time.Time      `json:"lastActivityDate,omitempty"`
	Lives               int             `json:"lives"`
	PreferredLanguage   string          `json:"preferredLanguage,omitempty"`
	Experience          string          `json:"experience,omitempty"`
	InterestTopic       string          `json:"interestTopic,omitempty"`
	CustomCurriculum    []catalog.Topic `json:"customCurriculum,omitempty"`
	OnboardingCompleted bool            `json:"onboardingCompleted"`
	CreatedAt           time.Time       `json:"createdAt"`
	LastLogin           time.Time       `json:"lastLogin"`
}

// LevelForXP derives the level from total XP.
func LevelForXP(xp int) int {
	return xp / 100
}

// Prefs carries the learner context passed to the content generator.
type Prefs struct {
	Experience string
	Interest   string
}

// Prefs extracts generator preferences from the account.
func (a *Account) Prefs() Prefs {
	experience := a.Experience
	if experience == "" {
		experience = "beginner"
	}
	return Prefs{Experience: experience, Interest: a.InterestTopic}
}
