package domain

// Profile holds the identity-directory attributes the chat core reads.
// The user service owns the full record; this core only needs display data.
type Profile struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
}
