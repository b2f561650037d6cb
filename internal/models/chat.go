package models

import "encoding/json"

// ChatRole identifies who produced a transcript message.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry of an append-only conversation transcript.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// ChatReply is the classifier's answer to one user message. Action is nil
// when the backend sent none or an unrecognized type.
type ChatReply struct {
	Reply          string
	ConversationID string
	Action         Action
}

// Action is the structured directive a chat reply can carry. It is a
// closed set: the dispatcher switches over the concrete types and treats
// anything else as a plain chat turn.
type Action interface {
	isAction()
}

// SearchAction switches the page to product results for Query.
type SearchAction struct {
	Query string
}

// ViewOrdersAction switches the page to the user's order history.
type ViewOrdersAction struct{}

// TrackDeliveryAction also resolves to the order history view.
type TrackDeliveryAction struct{}

// ViewCartAction navigates away to the cart page.
type ViewCartAction struct{}

// ViewWishlistAction navigates away to the wishlist page.
type ViewWishlistAction struct{}

// ChatAction continues the conversation without changing the view.
type ChatAction struct{}

// ErrorAction is the backend's explicit failure marker; the view stays
// unchanged.
type ErrorAction struct {
	Message string
}

func (SearchAction) isAction()        {}
func (ViewOrdersAction) isAction()    {}
func (TrackDeliveryAction) isAction() {}
func (ViewCartAction) isAction()      {}
func (ViewWishlistAction) isAction()  {}
func (ChatAction) isAction()          {}
func (ErrorAction) isAction()         {}

// rawAction is the wire shape: {"type": "...", "params": {...}}.
type rawAction struct {
	Type   string            `json:"type"`
	Params map[string]string `json:"params"`
}

// DecodeAction turns the wire action into its variant. Unknown types
// decode to nil, which the dispatcher treats the same as a chat turn.
func DecodeAction(data json.RawMessage) (Action, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var raw rawAction
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	switch raw.Type {
	case "SEARCH":
		return SearchAction{Query: raw.Params["query"]}, nil
	case "VIEW_ORDERS":
		return ViewOrdersAction{}, nil
	case "TRACK_DELIVERY":
		return TrackDeliveryAction{}, nil
	case "VIEW_CART":
		return ViewCartAction{}, nil
	case "VIEW_WISHLIST":
		return ViewWishlistAction{}, nil
	case "CHAT":
		return ChatAction{}, nil
	case "ERROR":
		return ErrorAction{Message: raw.Params["message"]}, nil
	default:
		return nil, nil
	}
}
