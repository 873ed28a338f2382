package protocol

// Reason codes sent back to clients. Clients translate them for display.
const (
	ReasonLoginOK      = "server.loginOk"
	ReasonLoginAlready = "server.loginAlready"
	ReasonLoginFail    = "server.loginFail"
	ReasonInvalidToken = "server.invalidToken"

	ReasonRegisterOK   = "server.registerOk"
	ReasonRegisterFail = "server.registerFail"

	ReasonInternalError = "server.internalError"

	ReasonRoomNotAllowed = "server.roomNotAllowed"
	ReasonRoomJoinOK     = "server.roomJoinOk"
	ReasonRoomJoinFail   = "server.roomJoinFail"
	ReasonRoomCreateOK   = "server.roomCreateOk"
	ReasonRoomLeaveError = "server.roomLeaveError"

	ReasonMessageNotInRoom = "server.messageNotInRoom"
	ReasonMessageNoRoom    = "server.messageNoRoom"

	ReasonGameJoinOK   = "server.gameJoinOk"
	ReasonGameJoinFail = "server.gameJoinFail"
	ReasonGameNotFound = "server.gameNotFound"
	ReasonInvalidMove  = "server.invalidMove"

	ReasonViewProfileFail = "server.userViewProfileFail"

	ReasonEditProfileOK     = "server.userEditProfileOK"
	ReasonEditProfileNoPW   = "server.userEditProfileNoPW"
	ReasonEditProfileOnlyPW = "server.userEditProfileOnlyPW"
	ReasonEditProfileFail   = "server.userEditProfileFail"
)

// Response is a server message. The action name is written into the encoded
// object by Encode.
type Response interface {
	Action() string
}

type LoginResponse struct {
	LoginStatus  bool   `json:"loginStatus"`
	Response     string `json:"response"`
	UserID       string `json:"userid,omitempty"`
	DisplayName  string `json:"displayname,omitempty"`
	SessionToken string `json:"sessiontoken,omitempty"`
}

func (LoginResponse) Action() string { return "LoginResponse" }

type RegisterResponse struct {
	RegisterStatus bool   `json:"registerStatus"`
	Response       string `json:"response"`
}

func (RegisterResponse) Action() string { return "RegisterResponse" }

type ChatRoomsListResponse struct {
	ChatRooms []string `json:"chatRoom"`
}

func (ChatRoomsListResponse) Action() string { return "ChatRoomsListResponse" }

type ChatLogEntry struct {
	DisplayName string `json:"displayname"`
	ChatMessage string `json:"chatmessage"`
	Timestamp   int64  `json:"timestamp"`
}

type ChatJoinResponse struct {
	Status       bool           `json:"status"`
	Response     string         `json:"response"`
	ChatRoomName string         `json:"chatroomname"`
	UsersInRoom  []string       `json:"usersinroom"`
	ChatLog      []ChatLogEntry `json:"chatlog"`
}

func (ChatJoinResponse) Action() string { return "ChatJoinResponse" }

type ChatJoinNewUserResponse struct {
	DisplayName  string `json:"displayname"`
	ChatRoomName string `json:"chatroomname"`
}

func (ChatJoinNewUserResponse) Action() string { return "ChatJoinNewUserResponse" }

type UserLeftChatRoomResponse struct {
	DisplayName  string `json:"displayname"`
	ChatRoomName string `json:"chatroomname"`
}

func (UserLeftChatRoomResponse) Action() string { return "UserLeftChatRoomResponse" }

type SentMessageResponse struct {
	DisplayName  string `json:"displayname"`
	ChatRoomName string `json:"chatroomname"`
	ChatMessage  string `json:"chatmessage"`
	Timestamp    int64  `json:"timestamp"`
}

func (SentMessageResponse) Action() string { return "SentMessageResponse" }

type UsersListResponse struct {
	DisplayNames []string `json:"displaynames"`
}

func (UsersListResponse) Action() string { return "UsersListResponse" }

type CreateGameResponse struct {
	GameID     string `json:"gameid"`
	JoinStatus bool   `json:"joinstatus"`
	Response   string `json:"response"`
}

func (CreateGameResponse) Action() string { return "CreateGameResponse" }

type SendGameInvitationsResponse struct {
	HostDisplayName string `json:"hostdisplayname"`
	GameID          string `json:"gameid"`
}

func (SendGameInvitationsResponse) Action() string { return "SendGameInvitationsResponse" }

type UserJoinedGameResponse struct {
	PlayersInLobby []string `json:"playersinlobby"`
	UserID         string   `json:"userid"`
	GameID         string   `json:"gameid"`
}

func (UserJoinedGameResponse) Action() string { return "UserJoinedGameResponse" }

type UserDeclinedGameInvitationResponse struct {
	UserID string `json:"userid"`
	GameID string `json:"gameid"`
}

func (UserDeclinedGameInvitationResponse) Action() string {
	return "UserDeclinedGameInvitationResponse"
}

type GameHasStartedResponse struct {
	GameID string `json:"gameid"`
}

func (GameHasStartedResponse) Action() string { return "GameHasStartedResponse" }

type UserLeftGameResponse struct {
	DisplayName string `json:"displayname"`
	GameID      string `json:"gameid"`
}

func (UserLeftGameResponse) Action() string { return "UserLeftGameResponse" }

type DiceThrowResponse struct {
	GameID     string `json:"gameid"`
	PlayerID   int    `json:"playerid"`
	DiceRolled int    `json:"dicerolled"`
}

func (DiceThrowResponse) Action() string { return "DiceThrowResponse" }

type PieceMovedResponse struct {
	GameID     string `json:"gameid"`
	PlayerID   int    `json:"playerid"`
	PieceMoved int    `json:"piecemoved"`
	MovedFrom  int    `json:"movedfrom"`
	MovedTo    int    `json:"movedto"`
}

func (PieceMovedResponse) Action() string { return "PieceMovedResponse" }

type PlayerWonGameResponse struct {
	GameID      string `json:"gameid"`
	PlayerWonID int    `json:"playerwonid"`
}

func (PlayerWonGameResponse) Action() string { return "PlayerWonGameResponse" }

type UserWantToViewProfileResponse struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	GamesPlayed int    `json:"gamesPlayed"`
	GamesWon    int    `json:"gamesWon"`
	ImageString string `json:"imageString"`
	Message     string `json:"message,omitempty"`
}

func (UserWantToViewProfileResponse) Action() string { return "UserWantToViewProfileResponse" }

type UserWantToEditProfileResponse struct {
	Response    string `json:"response"`
	Changed     bool   `json:"changed"`
	DisplayName string `json:"displayname"`
}

func (UserWantToEditProfileResponse) Action() string { return "UserWantToEditProfileResponse" }

type LeaderboardEntry struct {
	DisplayName string `json:"displayname"`
	Count       int    `json:"count"`
}

type LeaderboardResponse struct {
	TopTenPlays []LeaderboardEntry `json:"toptenplays"`
	TopTenWins  []LeaderboardEntry `json:"toptenwins"`
}

func (LeaderboardResponse) Action() string { return "LeaderboardResponse" }

type ErrorMessageResponse struct {
	Message string `json:"message"`
}

func (ErrorMessageResponse) Action() string { return "ErrorMessageResponse" }

type Ping struct{}

func (Ping) Action() string { return "Ping" }
