package protocol

import "context"

const (
	ActionLoginManual          = "UserDoesLoginManual"
	ActionLoginAuto            = "UserDoesLoginAuto"
	ActionRegister             = "UserDoesRegister"
	ActionListChatRooms        = "UserListChatrooms"
	ActionJoinChat             = "UserJoinChat"
	ActionLeaveChatRoom        = "UserLeftChatRoom"
	ActionSendMessage          = "UserSentMessage"
	ActionSearchUsers          = "UserWantsUsersList"
	ActionCreateGame           = "UserWantsToCreateGame"
	ActionGameInvitationAnswer = "UserDoesGameInvitationAnswer"
	ActionLeaveGame            = "UserLeftGame"
	ActionRandomGameSearch     = "UserDoesRandomGameSearch"
	ActionDiceThrow            = "UserDoesDiceThrow"
	ActionPieceMove            = "UserDoesPieceMove"
	ActionViewProfile          = "UserWantToViewProfile"
	ActionEditProfile          = "UserWantToEditProfile"
	ActionLeaderboard          = "UserWantsLeaderboard"
)

// Request is a decoded client message. The set of requests is closed: every
// request routes itself to exactly one Handler method.
type Request interface {
	Action() string
	dispatch(ctx context.Context, sessionID string, h Handler)
}

// Handler receives every request kind. Implementations get a compile error
// when a new request is added without a matching method.
type Handler interface {
	HandleLoginManual(ctx context.Context, sessionID string, r LoginManual)
	HandleLoginAuto(ctx context.Context, sessionID string, r LoginAuto)
	HandleRegister(ctx context.Context, sessionID string, r Register)
	HandleListChatRooms(ctx context.Context, sessionID string, r ListChatRooms)
	HandleJoinChat(ctx context.Context, sessionID string, r JoinChat)
	HandleLeaveChatRoom(ctx context.Context, sessionID string, r LeaveChatRoom)
	HandleSendMessage(ctx context.Context, sessionID string, r SendMessage)
	HandleSearchUsers(ctx context.Context, sessionID string, r SearchUsers)
	HandleCreateGame(ctx context.Context, sessionID string, r CreateGame)
	HandleGameInvitationAnswer(ctx context.Context, sessionID string, r GameInvitationAnswer)
	HandleLeaveGame(ctx context.Context, sessionID string, r LeaveGame)
	HandleRandomGameSearch(ctx context.Context, sessionID string, r RandomGameSearch)
	HandleDiceThrow(ctx context.Context, sessionID string, r DiceThrow)
	HandlePieceMove(ctx context.Context, sessionID string, r PieceMove)
	HandleViewProfile(ctx context.Context, sessionID string, r ViewProfile)
	HandleEditProfile(ctx context.Context, sessionID string, r EditProfile)
	HandleLeaderboard(ctx context.Context, sessionID string, r Leaderboard)
}

// Dispatch routes the request to the matching Handler method.
func Dispatch(ctx context.Context, sessionID string, r Request, h Handler) {
	r.dispatch(ctx, sessionID, h)
}

// Anonymous reports whether a connection that has not logged in may send r.
func Anonymous(r Request) bool {
	switch r.(type) {
	case LoginManual, LoginAuto, Register:
		return true
	default:
		return false
	}
}

// Claimant is implemented by requests that name the user acting. The claim
// must match the user bound to the sending session.
type Claimant interface {
	ClaimedUserID() string
}

type LoginManual struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (LoginManual) Action() string { return ActionLoginManual }

func (r LoginManual) dispatch(ctx context.Context, sessionID string, h Handler) {
	h.HandleLoginManual(ctx, sessionID, r)
}

type LoginAuto struct {
	SessionToken string `json:"sessiontoken"`
}

func (LoginAuto) Action() string { return ActionLoginAuto }

func (r LoginAuto) dispatch(ctx context.Context, sessionID string, h Handler) {
	h.HandleLoginAuto(ctx, sessionID, r)
}

type Register struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (Register) Action() string { return ActionRegister }

func (r Register) dispatch(ctx context.Context, sessionID string, h Handler) {
	h.HandleRegister(ctx, sessionID, r)
}

type ListChatRooms struct {
	UserID string `json:"userid"`
}

func (ListChatRooms) Action() string          { return ActionListChatRooms }
func (r ListChatRooms) ClaimedUserID() string { return r.UserID }

func (r ListChatRooms) dispatch(ctx context.Context, sessionID string, h Handler) {
	h.HandleListChatRooms(ctx, sessionID, r)
}

type JoinChat struct {
	UserID       string `json:"userid"`
	ChatRoomName string `json:"chatroomname"`
}

func (JoinChat) Action() string          { return ActionJoinChat }
func (r JoinChat) ClaimedUserID() string { return r.UserID }

func (r JoinChat) dispatch(ctx context.Context, sessionID string, h Handler) {
	h.HandleJoinChat(ctx, sessionID, r)
}

type LeaveChatRoom struct {
	UserID       string `json:"userid"`
	ChatRoomName string `json:"chatroomname"`
}

func (LeaveChatRoom) Action() string          { return ActionLeaveChatRoom }
func (r LeaveChatRoom) ClaimedUserID() string { return r.UserID }

func (r LeaveChatRoom) dispatch(ctx context.Context, sessionID string, h Handler) {
	h.HandleLeaveChatRoom(ctx, sessionID, r)
}

type SendMessage struct {
	UserID       string `json:"userid"`
	ChatRoomName string `json:"chatroomname"`
	ChatMessage  string `json:"chatmessage"`
}

func (SendMessage) Action() string          { return ActionSendMessage }
func (r SendMessage) ClaimedUserID() string { return r.UserID }

func (r SendMessage) dispatch(ctx context.Context, sessionID string, h Handler) {
	h.HandleSendMessage(ctx, sessionID, r)
}

type SearchUsers struct {
	UserID      string `json:"userid"`
	SearchQuery string `json:"searchquery"`
}

func (SearchUsers) Action() string          { return ActionSearchUsers }
func (r SearchUsers) ClaimedUserID() string { return r.UserID }

func (r SearchUsers) dispatch(ctx context.Context, sessionID string, h Handler) {
	h.HandleSearchUsers(ctx, sessionID, r)
}

type CreateGame struct {
	HostID               string   `json:"hostid"`
	ToInviteDisplayNames []string `json:"toinvitedisplaynames"`
}

func (CreateGame) Action() string          { return ActionCreateGame }
func (r CreateGame) ClaimedUserID() string { return r.HostID }

func (r CreateGame) dispatch(ctx context.Context, sessionID string, h Handler) {
	h.HandleCreateGame(ctx, sessionID, r)
}

type GameInvitationAnswer struct {
	Accepted bool   `json:"accepted"`
	UserID   string `json:"userid"`
	GameID   string `json:"gameid"`
}

func (GameInvitationAnswer) Action() string          { return ActionGameInvitationAnswer }
func (r GameInvitationAnswer) ClaimedUserID() string { return r.UserID }

func (r GameInvitationAnswer) dispatch(ctx context.Context, sessionID string, h Handler) {
	h.HandleGameInvitationAnswer(ctx, sessionID, r)
}

type LeaveGame struct {
	UserID string `json:"userid"`
	GameID string `json:"gameid"`
}

func (LeaveGame) Action() string          { return ActionLeaveGame }
func (r LeaveGame) ClaimedUserID() string { return r.UserID }

func (r LeaveGame) dispatch(ctx context.Context, sessionID string, h Handler) {
	h.HandleLeaveGame(ctx, sessionID, r)
}

type RandomGameSearch struct {
	UserID string `json:"userid"`
}

func (RandomGameSearch) Action() string          { return ActionRandomGameSearch }
func (r RandomGameSearch) ClaimedUserID() string { return r.UserID }

func (r RandomGameSearch) dispatch(ctx context.Context, sessionID string, h Handler) {
	h.HandleRandomGameSearch(ctx, sessionID, r)
}

type DiceThrow struct {
	UserID string `json:"userid"`
	GameID string `json:"gameid"`
}

func (DiceThrow) Action() string          { return ActionDiceThrow }
func (r DiceThrow) ClaimedUserID() string { return r.UserID }

func (r DiceThrow) dispatch(ctx context.Context, sessionID string, h Handler) {
	h.HandleDiceThrow(ctx, sessionID, r)
}

type PieceMove struct {
	UserID    string `json:"userid"`
	GameID    string `json:"gameid"`
	MovedFrom int    `json:"movedfrom"`
	MovedTo   int    `json:"movedto"`
}

func (PieceMove) Action() string          { return ActionPieceMove }
func (r PieceMove) ClaimedUserID() string { return r.UserID }

func (r PieceMove) dispatch(ctx context.Context, sessionID string, h Handler) {
	h.HandlePieceMove(ctx, sessionID, r)
}

// ViewProfile looks a profile up by display name, or the caller's own when
// DisplayName is empty.
type ViewProfile struct {
	UserID      string `json:"userid"`
	DisplayName string `json:"displayname"`
}

func (ViewProfile) Action() string          { return ActionViewProfile }
func (r ViewProfile) ClaimedUserID() string { return r.UserID }

func (r ViewProfile) dispatch(ctx context.Context, sessionID string, h Handler) {
	h.HandleViewProfile(ctx, sessionID, r)
}

type EditProfile struct {
	UserID      string `json:"userid"`
	DisplayName string `json:"displayname"`
	Password    string `json:"password"`
	ImageString string `json:"imageString"`
}

func (EditProfile) Action() string          { return ActionEditProfile }
func (r EditProfile) ClaimedUserID() string { return r.UserID }

func (r EditProfile) dispatch(ctx context.Context, sessionID string, h Handler) {
	h.HandleEditProfile(ctx, sessionID, r)
}

type Leaderboard struct {
	UserID string `json:"userid"`
}

func (Leaderboard) Action() string          { return ActionLeaderboard }
func (r Leaderboard) ClaimedUserID() string { return r.UserID }

func (r Leaderboard) dispatch(ctx context.Context, sessionID string, h Handler) {
	h.HandleLeaderboard(ctx, sessionID, r)
}
