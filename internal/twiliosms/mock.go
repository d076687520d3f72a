package twiliosms

import (
	"context"
	"sync"
)

// MockClient records outbound messages instead of calling Twilio.
type MockClient struct {
	mu           sync.Mutex
	SentMessages []SentMessage

	// SendErr is returned by SendMessage when set.
	SendErr error
	// SignatureValid is the result of every ValidateRequest call.
	SignatureValid bool
}

// SentMessage is one message captured by MockClient.
type SentMessage struct {
	To   string
	Body string
}

// NewMockClient creates a MockClient that accepts every signature.
func NewMockClient() *MockClient {
	return &MockClient{
		SentMessages:   []SentMessage{},
		SignatureValid: true,
	}
}

func (m *MockClient) SendMessage(ctx context.Context, to string, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.SentMessages = append(m.SentMessages, SentMessage{To: to, Body: body})
	return nil
}

func (m *MockClient) ValidateRequest(url string, params map[string]string, signature string) bool {
	return m.SignatureValid
}

// Sent returns a copy of the messages sent so far.
func (m *MockClient) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.SentMessages...)
}
