package service

import "exercise-tracker/internal/domain"

// LogReport is the serialised form of an exercise log, shared by the HTTP
// API and log exports.
type LogReport struct {
	ID       string           `json:"id"`
	Username string           `json:"username"`
	Count    int              `json:"count"`
	Log      []LogReportEntry `json:"log"`
}

type LogReportEntry struct {
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Date        string `json:"date"`
}

func NewLogReport(log domain.ExerciseLog) LogReport {
	report := LogReport{
		ID:       log.User.ID,
		Username: log.User.Username,
		Count:    len(log.Exercises),
		Log:      make([]LogReportEntry, len(log.Exercises)),
	}
	for i, ex := range log.Exercises {
		report.Log[i] = LogReportEntry{
			Description: ex.Description,
			Duration:    ex.Duration,
			Date:        domain.FormatDate(ex.Date),
		}
	}
	return report
}
