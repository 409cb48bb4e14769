package models

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks an answer rejected by its step predicate. The dialogue stays on the step.
	ErrValidation = errors.New("answer rejected")
	// ErrEmptyCatalog means no product was found even after the fallback query.
	ErrEmptyCatalog = errors.New("catalog has no available products")
	// ErrNetworkFailure wraps catalog or model calls that could not complete.
	ErrNetworkFailure = errors.New("network failure")
	// ErrMalformedResponse means the model reply could not be parsed into the expected shape.
	ErrMalformedResponse = errors.New("malformed model response")

	ErrDialogueClosed    = errors.New("dialogue is finished, reset to start again")
	ErrUnknownSession    = errors.New("unknown session")
	ErrUnknownSuggestion = errors.New("suggestion not part of the current result")
)

// ValidationError carries the step and reason of a rejected answer.
type ValidationError struct {
	StepID string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %s: %s", e.StepID, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// User-facing messages
const (
	MessageEmptyCatalog = "Nous n'avons pas de suggestion disponible pour le moment, contactez-nous directement."
	MessageRetry        = "Un problème est survenu pendant la génération des suggestions. Veuillez réessayer."
	MessageCompleted    = "Voici nos suggestions pour votre événement."
	MessageGenerating   = "Nous préparons vos suggestions..."
	MessageEnded        = "Merci de votre visite, à bientôt !"
	FallbackMessage     = "Je n'ai pas compris votre demande. Pouvez-vous reformuler ?"
)

// ErrorCode maps a pipeline or dialogue error to its transport code.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return ErrorValidation
	case errors.Is(err, ErrEmptyCatalog):
		return ErrorEmptyCatalog
	case errors.Is(err, ErrMalformedResponse):
		return ErrorMalformedResponse
	case errors.Is(err, ErrDialogueClosed):
		return ErrorDialogueClosed
	case errors.Is(err, ErrUnknownSession):
		return ErrorUnknownSession
	case errors.Is(err, ErrUnknownSuggestion):
		return ErrorUnknownSuggestion
	default:
		return ErrorNetworkFailure
	}
}

// FailureMessage is what the customer sees when generation fails.
// Malformed replies and network failures read the same.
func FailureMessage(err error) string {
	if errors.Is(err, ErrEmptyCatalog) {
		return MessageEmptyCatalog
	}
	return MessageRetry
}
