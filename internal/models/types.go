package models

// NATS request from the storefront
type AssistantRequest struct {
	SessionID    string `json:"session_id"`
	Action       string `json:"action"`
	Answer       string `json:"answer,omitempty"`
	SuggestionID string `json:"suggestion_id,omitempty"`
}

type ConversationMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Message string `json:"message"`
}

// StepView is the presentation projection of the step currently awaiting an answer.
type StepView struct {
	ID      string   `json:"id"`
	Index   int      `json:"index"`
	Total   int      `json:"total"`
	Prompt  string   `json:"prompt"`
	Kind    string   `json:"kind"`
	Choices []string `json:"choices,omitempty"`
}

// NATS response to the storefront
type AssistantResponse struct {
	SessionID    string                `json:"session_id"`
	Status       string                `json:"status"` // "AWAITING_STEP", "GENERATING", "COMPLETED", "FAILED", "ENDED", "ERROR"
	Step         *StepView             `json:"step,omitempty"`
	Answers      []Answer              `json:"answers"`
	Transcript   []ConversationMessage `json:"transcript,omitempty"`
	Result       *RecommendationResult `json:"result,omitempty"`
	UserMessage  string                `json:"user_message"`
	ErrorCode    *string               `json:"error_code,omitempty"`
	ErrorMessage *string               `json:"error_message,omitempty"`
}

// Actions
const (
	ActionStart     = "start"
	ActionAnswer    = "answer"
	ActionReset     = "reset"
	ActionState     = "state"
	ActionAddToCart = "add_to_cart"
	ActionEnd       = "end"
)

// Status constants
const (
	StatusAwaitingStep = "AWAITING_STEP"
	StatusGenerating   = "GENERATING"
	StatusCompleted    = "COMPLETED"
	StatusFailed       = "FAILED"
	StatusEnded        = "ENDED"
	StatusError        = "ERROR"
)

// Error codes
const (
	ErrorValidation        = "VALIDATION_ERROR"
	ErrorEmptyCatalog      = "EMPTY_CATALOG"
	ErrorNetworkFailure    = "NETWORK_FAILURE"
	ErrorMalformedResponse = "MALFORMED_RESPONSE"
	ErrorDialogueClosed    = "DIALOGUE_CLOSED"
	ErrorUnknownSession    = "UNKNOWN_SESSION"
	ErrorUnknownSuggestion = "UNKNOWN_SUGGESTION"
	ErrorBadRequest        = "BAD_REQUEST"
	ErrorInternal          = "INTERNAL_ERROR"
)
