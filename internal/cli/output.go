package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/roach88/litedocs/internal/config"
	"github.com/roach88/litedocs/internal/explorer"
	"github.com/roach88/litedocs/internal/extjson"
	"github.com/roach88/litedocs/internal/query"
	"github.com/roach88/litedocs/internal/store"
	"github.com/roach88/litedocs/internal/value"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Bad input: unparsable text, bad filter, missing document
	ExitCommandError = 2 // Command error (bad config, database cannot be opened, I/O)
)

// Error codes reported in CLI output.
const (
	ErrCodeGeneric             = "E001" // Generic/unknown error
	ErrCodeParse               = "E002" // Extended JSON syntax error
	ErrCodeCoercion            = "E003" // Bad marker payload
	ErrCodeUnsupportedOperator = "E004" // Unknown $operator in a filter
	ErrCodeOperandShape        = "E005" // Operator operand has the wrong shape
	ErrCodeTypeMismatch        = "E006" // Value of the wrong kind
	ErrCodeCollectionExists    = "E010" // Collection name taken
	ErrCodeCollectionNotFound  = "E011" // No such collection
	ErrCodeInvalidName         = "E012" // Empty or reserved collection name
	ErrCodeDuplicateID         = "E013" // _id already stored
	ErrCodeDocumentNotFound    = "E014" // No document with that _id
	ErrCodeInvalidID           = "E015" // _id of an unusable kind
	ErrCodeQueryRunning        = "E016" // Query run overlapped another
	ErrCodeInvalidDocument     = "E017" // Document holds an unstorable value
	ErrCodeConfig              = "E020" // Config file failed validation
	ErrCodeDatabase            = "E021" // Database could not be opened
	ErrCodeIO                  = "E022" // Input could not be read
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	// Reported is set once the error has been written to the output.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// ErrorCode classifies err into one of the E0xx codes.
func ErrorCode(err error) string {
	switch {
	case extjson.IsCoercionError(err):
		return ErrCodeCoercion
	case extjson.IsParseError(err):
		return ErrCodeParse
	case query.IsUnsupportedOperator(err):
		return ErrCodeUnsupportedOperator
	case query.IsOperandShape(err):
		return ErrCodeOperandShape
	case value.IsTypeMismatch(err):
		return ErrCodeTypeMismatch
	case errors.Is(err, store.ErrCollectionExists):
		return ErrCodeCollectionExists
	case errors.Is(err, store.ErrCollectionNotFound):
		return ErrCodeCollectionNotFound
	case errors.Is(err, store.ErrInvalidName):
		return ErrCodeInvalidName
	case errors.Is(err, store.ErrDuplicateID):
		return ErrCodeDuplicateID
	case errors.Is(err, store.ErrDocumentNotFound):
		return ErrCodeDocumentNotFound
	case errors.Is(err, store.ErrInvalidID):
		return ErrCodeInvalidID
	case errors.Is(err, store.ErrInvalidDocument):
		return ErrCodeInvalidDocument
	case errors.Is(err, explorer.ErrQueryRunning):
		return ErrCodeQueryRunning
	case errors.Is(err, config.ErrInvalidConfig):
		return ErrCodeConfig
	case errors.Is(err, errOpenDatabase):
		return ErrCodeDatabase
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return ErrCodeIO
	}
	return ErrCodeGeneric
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err and returns the ExitError the command should return.
// A parse error's position is included as details.
func (f *OutputFormatter) Fail(exitCode int, message string, err error) error {
	var details any
	var perr *extjson.ParseError
	if errors.As(err, &perr) {
		details = map[string]int{"offset": perr.Offset, "line": perr.Line, "column": perr.Column}
	}
	_ = f.Error(ErrorCode(err), fmt.Sprintf("%s: %v", message, err), details)
	exitErr := WrapExitError(exitCode, message, err)
	exitErr.Reported = true
	return exitErr
}

// IsReported reports whether err was already written by Fail.
func IsReported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Reported
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
