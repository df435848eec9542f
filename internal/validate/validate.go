// Package validate schema-checks inbound JSON bodies.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/zhouzirui/z-diet/backend/internal/model/chat"
)

// Limits for conversation and search payloads.
const (
	MaxMessages       = 50
	MaxMessageContent = 4000
	MaxQueryLength    = 200
)

// Issue describes one violated constraint.
type Issue struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error lists every issue found in a body.
type Error struct {
	Issues []Issue
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Path == "" {
			parts = append(parts, issue.Message)
			continue
		}
		parts = append(parts, issue.Path+": "+issue.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Message is one conversation turn as received from clients.
type Message struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"min=1,max=4000"`
}

// ChatInput is the validated body of a chat relay request.
type ChatInput struct {
	Messages []Message `json:"messages" validate:"required,min=1,max=50,dive"`
}

// Turns converts the validated input into completion turns.
func (in ChatInput) Turns() []chat.Turn {
	turns := make([]chat.Turn, len(in.Messages))
	for i, m := range in.Messages {
		turns[i] = chat.Turn{Role: chat.Role(m.Role), Content: m.Content}
	}
	return turns
}

// LastUserMessage returns the most recent user turn, if any.
func (in ChatInput) LastUserMessage() (Message, bool) {
	for i := len(in.Messages) - 1; i >= 0; i-- {
		if in.Messages[i].Role == string(chat.RoleUser) {
			return in.Messages[i], true
		}
	}
	return Message{}, false
}

// SearchInput is the validated body of a food lookup request.
type SearchInput struct {
	Query string `json:"query" validate:"min=1,max=200"`
}

var structValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ChatRequest decodes and validates a chat relay body.
func ChatRequest(body io.Reader) (ChatInput, error) {
	var in ChatInput
	if err := decodeAndCheck(body, &in); err != nil {
		return ChatInput{}, err
	}
	return in, nil
}

// SearchRequest decodes and validates a food lookup body.
func SearchRequest(body io.Reader) (SearchInput, error) {
	var in SearchInput
	if err := decodeAndCheck(body, &in); err != nil {
		return SearchInput{}, err
	}
	return in, nil
}

// MessageRequest decodes and validates a single message body.
func MessageRequest(body io.Reader) (Message, error) {
	var in Message
	if err := decodeAndCheck(body, &in); err != nil {
		return Message{}, err
	}
	return in, nil
}

// Struct validates an already decoded value.
func Struct(v any) error {
	err := structValidator.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &Error{Issues: []Issue{{Code: "invalid", Message: err.Error()}}}
	}

	issues := make([]Issue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, Issue{
			Path:    fieldPath(fe.Namespace()),
			Code:    fe.Tag(),
			Message: describe(fe),
		})
	}
	return &Error{Issues: issues}
}

func decodeAndCheck(body io.Reader, dst any) error {
	if body == nil {
		return &Error{Issues: []Issue{{Code: "invalid_json", Message: "request body is required"}}}
	}

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		issue := Issue{Code: "invalid_json", Message: "request body must be valid JSON"}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			issue.Path = typeErr.Field
			issue.Code = "invalid_type"
			issue.Message = fmt.Sprintf("expected %s, received %s", typeErr.Type, typeErr.Value)
		}
		return &Error{Issues: []Issue{issue}}
	}
	return Struct(dst)
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}

func describe(fe validator.FieldError) string {
	unit := "character(s)"
	if fe.Kind() == reflect.Slice {
		unit = "item(s)"
	}

	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must contain at least %s %s", fe.Param(), unit)
	case "max":
		return fmt.Sprintf("must contain at most %s %s", fe.Param(), unit)
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
