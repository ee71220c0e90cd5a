package activity

// RecentActivityRequest is the request for reading the activity log.
type RecentActivityRequest struct {
	Limit int `json:"limit,omitempty"`
}

// RecentActivityResponse carries entries newest first.
type RecentActivityResponse struct {
	Entries []Entry `json:"entries"`
}
