// Package core error codes.
//
// # Error Codes Reference
//
// Errors shown to users carry a code that can be quoted when reporting a
// problem. Codes are grouped by category.
//
// # Data Errors (DATA001-DATA099)
//
// Errors raised while loading the source file:
//
//	DATA001 - Source not found: The data file does not exist
//	          Action: Check DATA_PATH or the --data flag
//	          Patterns: "data source not found"
//
//	DATA002 - Missing column: A required column is missing from the file
//	          Action: The file needs Country Name, Indicator Name, Indicator Code, Year and Value columns
//	          Patterns: "missing required column"
//
//	DATA003 - Empty source: The data file has no rows
//	          Action: Provide a CSV file with a header and data rows
//	          Patterns: "empty data source"
//
//	DATA004 - Invalid CSV: The data file is not valid CSV
//	          Action: Ensure the file is comma-separated with consistent columns
//	          Patterns: "invalid csv"
//
// # File Errors (FILE001-FILE099)
//
// Errors from the filesystem:
//
//	FILE001 - Not a file: The data path points to a directory
//	          Action: Point DATA_PATH at the CSV file itself
//	          Patterns: "is a directory"
//
//	FILE002 - Permission denied: The data file cannot be read
//	          Action: Check the file permissions
//	          Patterns: "permission denied"
//
// # Request Errors (REQ001-REQ099)
//
// Errors caused by the request itself:
//
//	REQ001 - Invalid parameter: A request parameter has an unsupported value
//	         Action: Check the parameter against the documented values
//	         Patterns: "unknown duplicate-years policy", "invalid parameter"
//
//	REQ002 - Request cancelled: The request was cancelled or timed out
//	         Action: Please try again
//	         Patterns: "context canceled", "context deadline exceeded"
//
//	REQ003 - History disabled: Load history is not configured
//	         Action: Set DATABASE_URL to record load history
//	         Patterns: "load history not enabled"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Patterns are matched case-insensitively using strings.Contains. The first
// matching pattern wins, so more specific patterns come first.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
// Order matters: "is a directory" errors also contain "data source not found".
var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors (FILE001-FILE002)
	// =========================================================================
	{
		pattern: "is a directory",
		msg: UserMessage{
			Message: "The data path points to a directory",
			Action:  "Point DATA_PATH at the CSV file itself",
			Code:    "FILE001",
		},
	},
	{
		pattern: "permission denied",
		msg: UserMessage{
			Message: "The data file cannot be read",
			Action:  "Check the file permissions",
			Code:    "FILE002",
		},
	},

	// =========================================================================
	// Data Errors (DATA001-DATA004)
	// =========================================================================
	{
		pattern: "data source not found",
		msg: UserMessage{
			Message: "The data file does not exist",
			Action:  "Check DATA_PATH or the --data flag",
			Code:    "DATA001",
		},
	},
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "A required column is missing from the data file",
			Action:  "The file needs Country Name, Indicator Name, Indicator Code, Year and Value columns",
			Code:    "DATA002",
		},
	},
	{
		pattern: "empty data source",
		msg: UserMessage{
			Message: "The data file has no rows",
			Action:  "Provide a CSV file with a header and data rows",
			Code:    "DATA003",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "The data file is not valid CSV",
			Action:  "Ensure the file is comma-separated with consistent columns",
			Code:    "DATA004",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ003)
	// =========================================================================
	{
		pattern: "unknown duplicate-years policy",
		msg: UserMessage{
			Message: "A request parameter has an unsupported value",
			Action:  "Use last, mean or sum",
			Code:    "REQ001",
		},
	},
	{
		pattern: "invalid parameter",
		msg: UserMessage{
			Message: "A request parameter has an unsupported value",
			Action:  "Check the parameter against the documented values",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "load history not enabled",
		msg: UserMessage{
			Message: "Load history is not configured",
			Action:  "Set DATABASE_URL to record load history",
			Code:    "REQ003",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// The technical error is only in the logs.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
//
// Example:
//
//	_, err := LoadFile("missing.csv", LoadOptions{})
//	msg := MapError(err)
//	// msg.Code == "DATA001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
