package gamedto

// Event is an outbound notification produced by a core operation.
// Each kind corresponds to one concrete struct below; the transport
// switches on Kind() and must handle every case.
type Event interface {
	Kind() string
}

// Outbound pairs an event with the user ids that should hear it.
// The transport resolves each user id to its current connection.
type Outbound struct {
	To    []string
	Event Event
}

type WaitingForMatch struct {
	TimeControl string `json:"time_control"`
}

func (WaitingForMatch) Kind() string { return "waiting_for_match" }

type GameCreated struct {
	GameID      string `json:"game_id"`
	Position    string `json:"position"`
	TimeControl string `json:"time_control"`
}

func (GameCreated) Kind() string { return "game_created" }

type GameStarted struct {
	GameID      string `json:"game_id"`
	Position    string `json:"position"`
	WhiteID     string `json:"white_id"`
	BlackID     string `json:"black_id"`
	WhiteMs     int64  `json:"white_ms"`
	BlackMs     int64  `json:"black_ms"`
	WhiteRating int    `json:"white_rating"`
	BlackRating int    `json:"black_rating"`
	TimeControl string `json:"time_control"`
}

func (GameStarted) Kind() string { return "game_started" }

type MoveMade struct {
	GameID   string `json:"game_id"`
	Move     string `json:"move"`
	SAN      string `json:"san"`
	Position string `json:"position"`
	WhiteMs  int64  `json:"white_ms"`
	BlackMs  int64  `json:"black_ms"`
}

func (MoveMade) Kind() string { return "move_made" }

type GameOver struct {
	GameID      string `json:"game_id"`
	WinnerID    string `json:"winner_id,omitempty"`
	Result      string `json:"result"`
	Reason      string `json:"reason"`
	Position    string `json:"position"`
	WhiteRating int    `json:"white_rating"`
	BlackRating int    `json:"black_rating"`
	WhiteDelta  int    `json:"white_delta"`
	BlackDelta  int    `json:"black_delta"`
}

func (GameOver) Kind() string { return "game_over" }

type DrawOffered struct {
	GameID   string `json:"game_id"`
	ByUserID string `json:"by_user_id"`
}

func (DrawOffered) Kind() string { return "draw_offered" }

type DrawDeclined struct {
	GameID string `json:"game_id"`
}

func (DrawDeclined) Kind() string { return "draw_declined" }
