package models

import "time"

const (
	VerdictPending = "pending"
	VerdictPass    = "pass"
	VerdictFail    = "fail"
)

type Chore struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36" firestore:"id"`
	ParentID     string    `json:"parentId" gorm:"size:128;index;not null" firestore:"parentId"`
	ChildID      string    `json:"childId" gorm:"size:128;index;not null" firestore:"childId"`
	Title        string    `json:"title" gorm:"not null" firestore:"title"`
	MinutesAward int       `json:"minutesAward" firestore:"minutesAward"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt"`
}

// Submission отчет ребенка о выполненной задаче; вердикт ставит внешний проверяющий
type Submission struct {
	ID              string     `json:"id" gorm:"primaryKey;size:36" firestore:"id"`
	ChoreID         string     `json:"choreId" gorm:"size:36;index" firestore:"choreId"`
	ChildID         string     `json:"childId" gorm:"size:128;index" firestore:"childId"`
	ParentID        string     `json:"parentId" gorm:"size:128" firestore:"parentId"`
	MinutesAward    int        `json:"minutesAward" firestore:"minutesAward"`
	Verdict         string     `json:"verdict" gorm:"size:16" firestore:"verdict"`
	RewardApplied   bool       `json:"rewardApplied" firestore:"rewardApplied"`
	RewardAppliedAt *time.Time `json:"rewardAppliedAt" firestore:"rewardAppliedAt"`
	CreatedAt       time.Time  `json:"createdAt" firestore:"createdAt"`
}
