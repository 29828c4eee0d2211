package request

// CreateGuestRequest is the request body for creating a guest player
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in.
// Username also accepts an email address.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SubmitResultRequest is the request body for recording a finished game
type SubmitResultRequest struct {
	Score   *int `json:"score"`
	MaxTile int  `json:"maxTile"`
	Moves   int  `json:"moves"`
	Won     bool `json:"won"`
}
