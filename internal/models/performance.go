package models

type PerformanceSummary struct {
	TotalQuizzes     int                  `json:"total_quizzes"`
	AveragePercent   int                  `json:"average_percentage"`
	BestPercent      int                  `json:"best_percentage"`
	TotalTimeSeconds int                  `json:"total_time"`
	Subjects         []SubjectPerformance `json:"subjects"`
	Recent           []QuizAttempt        `json:"recent"`
}

type SubjectPerformance struct {
	Subject        string `json:"subject"`
	Attempts       int    `json:"attempts"`
	AveragePercent int    `json:"average_percentage"`
	BestPercent    int    `json:"best_percentage"`
}
