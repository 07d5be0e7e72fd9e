package tables

// tableResponse represents a game table
type tableResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OwnerID     string `json:"owner_id"`
	CustomCSS   string `json:"custom_css,omitempty"` // Per-table stylesheet applied by the web client
}

// actionResponse mirrors the receive_action payload, plus the sequence for
// clients that paginate.
type actionResponse struct {
	AuthorID       string         `json:"author_id"`
	AuthorNickname string         `json:"author_nickname"`
	ActionType     string         `json:"action_type"`
	Details        map[string]any `json:"details"`
	Timestamp      string         `json:"timestamp"` // HH:MM:SS, matching the live channel
	Sequence       int64          `json:"sequence"`
}

// historyResponse carries the table display data too, so the web client can
// paint the room (including its custom stylesheet) from one request.
type historyResponse struct {
	Table   tableResponse    `json:"table"`
	Actions []actionResponse `json:"actions"`
}

// memberResponse represents one user's membership of a table
type memberResponse struct {
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}
