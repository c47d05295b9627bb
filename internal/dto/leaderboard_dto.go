package dto

// SchoolRankEntry is one row of the school leaderboard.
type SchoolRankEntry struct {
	Rank     int    `json:"rank"`
	SchoolID uint   `json:"school_id"`
	Name     string `json:"name"`
	Points   int    `json:"points"`
	Location string `json:"location"`
}

// StudentRankEntry is one row of the individual student ranking.
type StudentRankEntry struct {
	Rank       int    `json:"rank"`
	UserID     uint   `json:"user_id"`
	Name       string `json:"name"`
	Points     int    `json:"points"`
	SchoolName string `json:"school_name"`
	ClassName  string `json:"class_name"`
}

// LeaderboardQuery selects the leaderboard scope and filters.
type LeaderboardQuery struct {
	Scope     string `query:"scope" validate:"omitempty,oneof=school student"`
	SchoolID  *uint  `query:"school_id"`
	ClassName string `query:"class_name"`
	Limit     int    `query:"limit" validate:"omitempty,gte=0,lte=500"`
}
