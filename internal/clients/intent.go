package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/podomarket/storefront-service/internal/apperr"
	"github.com/podomarket/storefront-service/internal/config"
	"github.com/podomarket/storefront-service/internal/models"
)

// IntentClient sends free-text user input to the backend intent
// classifier and returns the reply plus the optional structured action.
type IntentClient interface {
	Classify(ctx context.Context, message, userID, conversationID string) (*models.ChatReply, error)
}

// Ensure HTTPIntentClient implements IntentClient.
var _ IntentClient = (*HTTPIntentClient)(nil)

// HTTPIntentClient implements IntentClient over the backend chat
// endpoint.
type HTTPIntentClient struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	logger     *logrus.Entry
}

// NewHTTPIntentClient creates an intent classifier client.
func NewHTTPIntentClient(cfg config.ServiceConfig, logger *logrus.Entry) *HTTPIntentClient {
	return &HTTPIntentClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey: cfg.APIKey,
		logger: logger,
	}
}

type classifyRequest struct {
	Message        string `json:"message"`
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type classifyResponse struct {
	Reply          string          `json:"reply"`
	ConversationID string          `json:"conversation_id"`
	Action         json.RawMessage `json:"action,omitempty"`
}

// Classify sends one chat turn. conversationID is empty on the first
// turn; the response carries the id to reuse for the rest of the
// conversation.
func (c *HTTPIntentClient) Classify(ctx context.Context, message, userID, conversationID string) (*models.ChatReply, error) {
	c.logger.WithFields(logrus.Fields{
		"user_id":         userID,
		"conversation_id": conversationID,
	}).Debug("classifying chat message")

	body, err := json.Marshal(classifyRequest{
		Message:        message,
		UserID:         userID,
		ConversationID: conversationID,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Error("chat request failed")
		return nil, apperr.NewUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.NewUpstream(fmt.Sprintf("chat backend returned status %d", resp.StatusCode))
	}

	var raw classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}

	action, err := models.DecodeAction(raw.Action)
	if err != nil {
		// A malformed action is not worth failing the whole turn for;
		// the reply text still stands.
		c.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Warn("dropping malformed chat action")
		action = nil
	}

	return &models.ChatReply{
		Reply:          raw.Reply,
		ConversationID: raw.ConversationID,
		Action:         action,
	}, nil
}

// IntentCall records the arguments of one Classify call.
type IntentCall struct {
	Message        string
	ConversationID string
}

// MockIntentClient is an in-memory implementation for tests.
type MockIntentClient struct {
	Replies  []*models.ChatReply
	Calls    []IntentCall
	FailWith error
}

// NewMockIntentClient creates a mock intent client.
func NewMockIntentClient() *MockIntentClient {
	return &MockIntentClient{}
}

func (m *MockIntentClient) Classify(ctx context.Context, message, userID, conversationID string) (*models.ChatReply, error) {
	m.Calls = append(m.Calls, IntentCall{Message: message, ConversationID: conversationID})
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	if len(m.Replies) == 0 {
		return &models.ChatReply{Reply: "ok", ConversationID: "conv-1"}, nil
	}
	reply := m.Replies[0]
	if len(m.Replies) > 1 {
		m.Replies = m.Replies[1:]
	}
	return reply, nil
}
