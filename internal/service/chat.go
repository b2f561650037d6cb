package service

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/podomarket/storefront-service/internal/apperr"
	"github.com/podomarket/storefront-service/internal/clients"
	"github.com/podomarket/storefront-service/internal/models"
)

// ContentMode is what the search page is currently showing, independent
// of the chat transcript.
type ContentMode string

const (
	ContentModeIdle       ContentMode = "idle"
	ContentModeProducts   ContentMode = "products"
	ContentModeOrders     ContentMode = "orders"
	ContentModeComparison ContentMode = "comparison"
)

// chatApology is appended to the transcript when the classifier call
// fails; the turn itself does not error.
const chatApology = "죄송합니다. 잠시 후 다시 시도해 주세요."

// Catalog runs product searches for the SEARCH action.
type Catalog interface {
	SearchProducts(ctx context.Context, query string) ([]models.Product, error)
}

// OrderHistory fetches the user's orders for the VIEW_ORDERS and
// TRACK_DELIVERY actions.
type OrderHistory interface {
	ListOrders(ctx context.Context, userID string) ([]models.Order, error)
}

// DispatchResult is the outcome of one chat turn: the assistant's reply,
// the content mode the page should show, and any content fetched for it.
// Navigate is set when the action leaves the search page entirely.
type DispatchResult struct {
	Reply        string               `json:"reply"`
	Mode         ContentMode          `json:"mode"`
	Navigate     string               `json:"navigate,omitempty"`
	Query        string               `json:"query,omitempty"`
	Products     []models.Product     `json:"products,omitempty"`
	Orders       []models.Order       `json:"orders,omitempty"`
	ContentError string               `json:"content_error,omitempty"`
	Transcript   []models.ChatMessage `json:"transcript"`
}

// conversation is the per-user dispatcher state. seq increments on every
// turn; content fetched for an older turn is discarded instead of
// overwriting newer state.
type conversation struct {
	id         string
	transcript []models.ChatMessage
	mode       ContentMode
	query      string
	seq        uint64
	products   []models.Product
	orders     []models.Order
	contentErr string
}

// ChatService maintains per-user conversations and routes structured
// actions from the intent classifier.
type ChatService struct {
	intent  clients.IntentClient
	catalog Catalog
	orders  OrderHistory
	logger  *logrus.Entry

	mu            sync.Mutex
	conversations map[string]*conversation
}

// NewChatService creates a chat service.
func NewChatService(intent clients.IntentClient, catalog Catalog, orders OrderHistory, logger *logrus.Entry) *ChatService {
	return &ChatService{
		intent:        intent,
		catalog:       catalog,
		orders:        orders,
		logger:        logger,
		conversations: make(map[string]*conversation),
	}
}

// Send runs one chat turn. Whitespace-only input appends nothing and
// issues no network call. A classifier failure appends a fixed apology
// to the transcript instead of erroring; a failed content fetch sets the
// mode's error string in place of results.
func (s *ChatService) Send(ctx context.Context, userID, text string) (*DispatchResult, error) {
	message := strings.TrimSpace(text)
	if message == "" {
		return nil, apperr.NewValidation("message", "message is empty")
	}

	s.mu.Lock()
	conv := s.conversation(userID)
	conv.transcript = append(conv.transcript, models.ChatMessage{Role: models.ChatRoleUser, Content: message})
	conv.seq++
	seq := conv.seq
	conversationID := conv.id
	s.mu.Unlock()

	reply, err := s.intent.Classify(ctx, message, userID, conversationID)

	s.mu.Lock()
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Error("chat classification failed")
		conv.transcript = append(conv.transcript, models.ChatMessage{Role: models.ChatRoleAssistant, Content: chatApology})
		result := s.snapshot(conv, chatApology, "")
		s.mu.Unlock()
		return result, nil
	}

	if reply.ConversationID != "" {
		conv.id = reply.ConversationID
	}
	conv.transcript = append(conv.transcript, models.ChatMessage{Role: models.ChatRoleAssistant, Content: reply.Reply})

	var navigate string
	var fetchProducts bool
	var fetchOrders bool

	switch action := reply.Action.(type) {
	case models.SearchAction:
		conv.mode = ContentModeProducts
		conv.query = action.Query
		fetchProducts = true
	case models.ViewOrdersAction:
		conv.mode = ContentModeOrders
		fetchOrders = true
	case models.TrackDeliveryAction:
		conv.mode = ContentModeOrders
		fetchOrders = true
	case models.ViewCartAction:
		navigate = "/cart"
	case models.ViewWishlistAction:
		navigate = "/wishlist"
	case models.ChatAction, models.ErrorAction, nil:
		// Mode unchanged; the reply text is the whole outcome.
	}
	query := conv.query
	s.mu.Unlock()

	if fetchProducts {
		s.loadProducts(ctx, userID, conv, seq, query)
	}
	if fetchOrders {
		s.loadOrders(ctx, userID, conv, seq)
	}

	s.mu.Lock()
	result := s.snapshot(conv, reply.Reply, navigate)
	s.mu.Unlock()
	return result, nil
}

// Reset discards the user's conversation: transcript, conversation id
// and content state.
func (s *ChatService) Reset(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, userID)
}

// Transcript returns a copy of the user's transcript.
func (s *ChatService) Transcript(userID string) []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[userID]
	if !ok {
		return nil
	}
	out := make([]models.ChatMessage, len(conv.transcript))
	copy(out, conv.transcript)
	return out
}

// loadProducts fetches search results for the active query. The result
// is applied only when no newer turn has started since seq.
func (s *ChatService) loadProducts(ctx context.Context, userID string, conv *conversation, seq uint64, query string) {
	products, err := s.catalog.SearchProducts(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if conv.seq != seq {
		s.logger.WithFields(logrus.Fields{"user_id": userID}).Debug("discarding stale product results")
		return
	}
	if err != nil {
		conv.products = nil
		conv.contentErr = apperr.PublicMessage(err)
		return
	}
	conv.products = products
	conv.contentErr = ""
}

func (s *ChatService) loadOrders(ctx context.Context, userID string, conv *conversation, seq uint64) {
	orders, err := s.orders.ListOrders(ctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if conv.seq != seq {
		s.logger.WithFields(logrus.Fields{"user_id": userID}).Debug("discarding stale order results")
		return
	}
	if err != nil {
		conv.orders = nil
		conv.contentErr = apperr.PublicMessage(err)
		return
	}
	conv.orders = orders
	conv.contentErr = ""
}

// conversation returns the user's state, creating it on first use.
// Callers must hold s.mu.
func (s *ChatService) conversation(userID string) *conversation {
	conv, ok := s.conversations[userID]
	if !ok {
		conv = &conversation{mode: ContentModeIdle}
		s.conversations[userID] = conv
	}
	return conv
}

// snapshot builds a result from the current state. Callers must hold
// s.mu.
func (s *ChatService) snapshot(conv *conversation, reply, navigate string) *DispatchResult {
	transcript := make([]models.ChatMessage, len(conv.transcript))
	copy(transcript, conv.transcript)
	return &DispatchResult{
		Reply:        reply,
		Mode:         conv.mode,
		Navigate:     navigate,
		Query:        conv.query,
		Products:     conv.products,
		Orders:       conv.orders,
		ContentError: conv.contentErr,
		Transcript:   transcript,
	}
}
