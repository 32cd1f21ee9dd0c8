package dto

type StatsResponse struct {
	TotalUsers   int64 `json:"total_users"`
	ActiveChats  int64 `json:"active_chats"`
	TotalReports int64 `json:"total_reports"`
}
