package models

// Auth API types
type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	BackupEmail string `json:"backup_email,omitempty"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

type RequestCodeRequest struct {
	Username string `json:"username"`
}

type RequestCodeResponse struct {
	Message   string `json:"message"`
	ExpiresIn int    `json:"expires_in"`
}

type VerifyCodeRequest struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

type VerifyCodeResponse struct {
	Token     string  `json:"token"`
	ExpiresAt string  `json:"expires_at"`
	Session   Session `json:"session"`
}

// Game API types
type GuessRequest struct {
	Guess string `json:"guess"`
}

type GuessResponse struct {
	Solved bool `json:"solved"`
}

// LevelResponse is a Level with the solution characters stripped. Only the
// solution length crosses the wire.
type LevelResponse struct {
	ID           string           `json:"id"`
	Tier         string           `json:"tier"`
	Length       int              `json:"length"`
	Tries        int64            `json:"tries"`
	Participants map[string]int64 `json:"participants"`
	Solver       *string          `json:"solver,omitempty"`
	Delay        *string          `json:"delay,omitempty"`
}

// LeaderboardEntry is one row of the leaderboard, already ranked.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Won      int64  `json:"won"`
	Tries    int64  `json:"tries"`
	Online   bool   `json:"online"`
	LastSeen string `json:"last_seen,omitempty"`
}

// Error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
