package dto

type GoalOutput struct {
	ID                string   `json:"id"`
	Date              string   `json:"date"`
	Task              string   `json:"task"`
	Completed         bool     `json:"completed"`
	Subject           *string  `json:"subject"`
	TotalProblems     *int     `json:"total_problems"`
	CompletedProblems *int     `json:"completed_problems"`
	Tags              []string `json:"tags"`
	Details           *string  `json:"details"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
}

type AddGoalInput struct {
	Date              string
	Task              string
	Subject           *string
	TotalProblems     *int
	CompletedProblems *int
	Tags              []string
	Details           *string
}

type UpdateGoalInput struct {
	ID    string
	Field string
	Value string
}

type DailySummaryInput struct {
	Date    string
	Summary *string
}

type DailySummaryOutput struct {
	Date    string  `json:"date"`
	Summary *string `json:"summary"`
}

type DayPlanOutput struct {
	Date    string       `json:"date"`
	Summary *string      `json:"summary"`
	Goals   []GoalOutput `json:"goals"`
}

// DailyGoalInput is one entry of a batch day update. CreatedAt uses the
// record-store timestamp layout; empty means now.
type DailyGoalInput struct {
	ID                string
	Task              string
	Completed         bool
	Subject           *string
	TotalProblems     *int
	CompletedProblems *int
	Tags              []string
	Details           *string
	CreatedAt         string
}

type DailyGoalsInput struct {
	Date  string
	Goals []DailyGoalInput
}

type DailyGoalsOutput struct {
	Date  string       `json:"date"`
	Goals []GoalOutput `json:"goals"`
}
