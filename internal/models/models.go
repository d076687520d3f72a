// Package models defines the core data structures for FARMA.
//
// It includes the chat request/response payloads, the farmer profile collected
// by the conversation, crop recommendations, and the JSON API envelope shared
// across modules.
package models

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Supported conversation languages.
const (
	LanguageEnglish = "en"
	LanguageHindi   = "hi"
	LanguageTelugu  = "te"

	// DefaultLanguage is used when a request does not name one.
	DefaultLanguage = LanguageEnglish
)

// Validation constants for chat input
const (
	// MaxMessageLength defines the maximum accepted length of a single chat message, in characters
	MaxMessageLength = 2000
	// MaxSessionIDLength defines the maximum accepted length of a client-supplied session id, in characters
	MaxSessionIDLength = 128
)

// Error variables for better error handling and testability
var (
	ErrInvalidLanguage   = errors.New("unsupported language")
	ErrMessageTooLong    = errors.New("message exceeds maximum length")
	ErrSessionIDTooLong  = errors.New("session id exceeds maximum length")
	ErrSessionNotFound   = errors.New("session not found")
	ErrEmptyChannelKey   = errors.New("channel key cannot be empty")
	ErrNilSession        = errors.New("session cannot be nil")
	ErrEmptySessionState = errors.New("session state cannot be empty")
)

// IsValidLanguage checks if the given language code is supported.
func IsValidLanguage(lang string) bool {
	switch lang {
	case LanguageEnglish, LanguageHindi, LanguageTelugu:
		return true
	default:
		return false
	}
}

// ChatRequest is one user message addressed to the conversation state machine.
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty" validate:"omitempty,max=128"`
	Message   string `json:"message" validate:"max=2000"`
	Language  string `json:"language,omitempty" validate:"omitempty,oneof=en hi te"`
}

// Normalize fills defaults and trims surrounding whitespace.
func (r *ChatRequest) Normalize() {
	r.SessionID = strings.TrimSpace(r.SessionID)
	r.Language = strings.ToLower(strings.TrimSpace(r.Language))
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
}

// Validate performs validation on a ChatRequest without the struct validator.
// The HTTP layer runs the tag-based validator; this covers internal callers.
// Lengths are counted in runes, as the validator's max tag does.
func (r *ChatRequest) Validate() error {
	if utf8.RuneCountInString(r.SessionID) > MaxSessionIDLength {
		return ErrSessionIDTooLong
	}
	if utf8.RuneCountInString(r.Message) > MaxMessageLength {
		return ErrMessageTooLong
	}
	if r.Language != "" && !IsValidLanguage(r.Language) {
		return ErrInvalidLanguage
	}
	return nil
}

// ChatResponse is the state machine's answer to a single ChatRequest.
// Recommendations is nil except on the terminal step.
type ChatResponse struct {
	SessionID       string           `json:"session_id"`
	Reply           string           `json:"response"`
	State           StateType        `json:"state"`
	Options         []string         `json:"options"`
	InputMode       InputMode        `json:"input_type"`
	Recommendations []Recommendation `json:"recommendations"`
}

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`            // status of the API response
	Message string      `json:"message,omitempty"` // optional message for error responses or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data for successful responses
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}
