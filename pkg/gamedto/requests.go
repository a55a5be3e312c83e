package gamedto

// Request is one inbound websocket frame. Op selects the operation;
// unused fields are left empty by the client.
type Request struct {
	Op          string `json:"op"`
	UserID      string `json:"user_id,omitempty"`
	GameID      string `json:"game_id,omitempty"`
	TimeControl string `json:"time_control,omitempty"`
	Move        string `json:"move,omitempty"`
	Tolerance   int    `json:"tolerance,omitempty"`
	Accept      bool   `json:"accept,omitempty"`
}

const (
	OpHello       = "hello"
	OpFindMatch   = "find_match"
	OpCreateGame  = "create_game"
	OpJoinGame    = "join_game"
	OpMove        = "move"
	OpResign      = "resign"
	OpAbort       = "abort"
	OpOfferDraw   = "offer_draw"
	OpRespondDraw = "respond_draw"
)
