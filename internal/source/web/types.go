package web

// UnreadCountResponse is the response from GET {unreadUrl}.
type UnreadCountResponse struct {
	Count int `json:"count"`
}
