package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bytedance/sonic"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("validation failed")

// JSON size limits (in bytes)
const (
	MaxEventSize      = 64 * 1024       // single inbound shell event
	MaxBackgroundSize = 8 * 1024 * 1024 // background_image event carrying a data URI
	MaxMessageSize    = 16 * 1024       // cross-document message payload
)

// BackgroundEventType is the only event type allowed past MaxEventSize
const BackgroundEventType = "background_image"

// MaxMessageDepth bounds the nesting of cross-document message payloads
const MaxMessageDepth = 16

// String length limits
const (
	MaxIDLength  = 256
	MaxURLLength = 8 * 1024
)

// AppIDPattern allows catalog ids such as "notes:notes:acme" and
// requested ids such as "notes:acme"
var AppIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._@:-]+$`)

// JSONSizeValidator validates JSON size limits
type JSONSizeValidator struct {
	maxSize int
}

// NewJSONSizeValidator creates a new validator with the specified max size
func NewJSONSizeValidator(maxSize int) *JSONSizeValidator {
	return &JSONSizeValidator{maxSize: maxSize}
}

// EventSizeLimit returns the body limit for an event of the given type
func EventSizeLimit(eventType string) int {
	if eventType == BackgroundEventType {
		return MaxBackgroundSize
	}
	return MaxEventSize
}

// EventValidatorFor returns a validator sized for the given event type
func EventValidatorFor(eventType string) *JSONSizeValidator {
	return NewJSONSizeValidator(EventSizeLimit(eventType))
}

// MaxSize returns the limit in bytes
func (v *JSONSizeValidator) MaxSize() int {
	return v.maxSize
}

// ValidateSize checks if the data size is within limits
func (v *JSONSizeValidator) ValidateSize(data []byte) error {
	if size := len(data); size > v.maxSize {
		return fmt.Errorf("%w: JSON size %d bytes exceeds maximum %d bytes", ErrInvalid, size, v.maxSize)
	}
	return nil
}

// ValidateJSON validates both size and JSON structure
func (v *JSONSizeValidator) ValidateJSON(data []byte) error {
	// Check size first (faster than parsing)
	if err := v.ValidateSize(data); err != nil {
		return err
	}
	if !sonic.Valid(data) {
		return fmt.Errorf("%w: invalid JSON", ErrInvalid)
	}
	return nil
}

// ValidateJSONDepth checks if JSON nesting depth is within limits
func ValidateJSONDepth(data any, maxDepth int) error {
	return checkDepth(data, 0, maxDepth)
}

func checkDepth(data any, currentDepth int, maxDepth int) error {
	if currentDepth > maxDepth {
		return fmt.Errorf("%w: JSON nesting depth %d exceeds maximum %d", ErrInvalid, currentDepth, maxDepth)
	}

	switch v := data.(type) {
	case map[string]any:
		for _, value := range v {
			if err := checkDepth(value, currentDepth+1, maxDepth); err != nil {
				return err
			}
		}
	case []any:
		for _, value := range v {
			if err := checkDepth(value, currentDepth+1, maxDepth); err != nil {
				return err
			}
		}
	}

	return nil
}

// ValidateMessageData checks a cross-document message payload before it is
// decoded. An empty payload is left to the decoder to reject.
func ValidateMessageData(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if err := NewJSONSizeValidator(MaxMessageSize).ValidateJSON(data); err != nil {
		return fmt.Errorf("message data: %w", err)
	}

	var tree any
	if err := sonic.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("%w: message data: %v", ErrInvalid, err)
	}
	return ValidateJSONDepth(tree, MaxMessageDepth)
}

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalid, fieldName)
	}

	if value == "" && !required {
		return nil // Optional field, empty is OK
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%w: %s must be at least %d characters", ErrInvalid, fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%w: %s must not exceed %d characters", ErrInvalid, fieldName, maxLen)
	}

	// Check for null bytes (security issue)
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%w: %s contains invalid characters", ErrInvalid, fieldName)
	}

	return nil
}

// ValidateAppID validates a catalog or requested app id
func ValidateAppID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}

	if id != "" && !AppIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %s contains invalid characters", ErrInvalid, fieldName)
	}

	return nil
}

// ValidateURL validates the length of a URL-like field
func ValidateURL(value, fieldName string) error {
	return ValidateString(value, fieldName, 0, MaxURLLength, false)
}
