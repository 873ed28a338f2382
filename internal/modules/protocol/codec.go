package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMalformed     = errors.New("malformed message")
	ErrUnknownAction = errors.New("unknown action")
)

// Inbound is a decoded request tagged with the session it arrived on.
type Inbound struct {
	SessionID string
	Request   Request
}

// Envelope addresses a response to one session. The recipient is routing
// data only and is never encoded.
type Envelope struct {
	RecipientSessionID string
	Response           Response
}

type decodeFunc func([]byte) (Request, error)

var decoders = map[string]decodeFunc{
	ActionLoginManual:          decodeAs[LoginManual],
	ActionLoginAuto:            decodeAs[LoginAuto],
	ActionRegister:             decodeAs[Register],
	ActionListChatRooms:        decodeAs[ListChatRooms],
	ActionJoinChat:             decodeAs[JoinChat],
	ActionLeaveChatRoom:        decodeAs[LeaveChatRoom],
	ActionSendMessage:          decodeAs[SendMessage],
	ActionSearchUsers:          decodeAs[SearchUsers],
	ActionCreateGame:           decodeAs[CreateGame],
	ActionGameInvitationAnswer: decodeAs[GameInvitationAnswer],
	ActionLeaveGame:            decodeAs[LeaveGame],
	ActionRandomGameSearch:     decodeAs[RandomGameSearch],
	ActionDiceThrow:            decodeAs[DiceThrow],
	ActionPieceMove:            decodeAs[PieceMove],
	ActionViewProfile:          decodeAs[ViewProfile],
	ActionEditProfile:          decodeAs[EditProfile],
	ActionLeaderboard:          decodeAs[Leaderboard],
}

func decodeAs[T Request](line []byte) (Request, error) {
	var r T
	if err := json.Unmarshal(line, &r); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, err.Error())
	}
	return r, nil
}

// Decode reads one line into its request type, selected by the action field.
func Decode(line []byte) (Request, error) {
	var header struct {
		Action string `json:"action"`
	}

	if err := json.Unmarshal(line, &header); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, err.Error())
	}

	decode, ok := decoders[header.Action]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownAction, header.Action)
	}

	return decode(line)
}

// Encode writes a response as a single JSON object terminated by a newline.
func Encode(r Response) ([]byte, error) {
	action, err := json.Marshal(r.Action())
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}

	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("response %s does not encode to an object", r.Action())
	}

	var b bytes.Buffer
	b.Grow(len(body) + len(action) + 12)

	b.WriteString(`{"action":`)
	b.Write(action)

	if fields := body[1 : len(body)-1]; len(bytes.TrimSpace(fields)) > 0 {
		b.WriteByte(',')
		b.Write(fields)
	}

	b.WriteString("}\n")

	return b.Bytes(), nil
}
