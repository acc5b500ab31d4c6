package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// OutputFormatter handles three output modes: JSON, quiet, and human-readable
type OutputFormatter struct {
	JSON  bool
	Quiet bool

	// Out and ErrOut default to os.Stdout and os.Stderr
	Out    io.Writer
	ErrOut io.Writer
}

func (f *OutputFormatter) out() io.Writer {
	if f.Out != nil {
		return f.Out
	}
	return os.Stdout
}

func (f *OutputFormatter) errOut() io.Writer {
	if f.ErrOut != nil {
		return f.ErrOut
	}
	return os.Stderr
}

// Success outputs successful operation result
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Quiet {
		if idGetter, ok := data.(interface{ GetID() string }); ok {
			_, err := fmt.Fprintln(f.out(), idGetter.GetID())
			return err
		}
	}

	if f.JSON {
		return f.WriteJSON(map[string]interface{}{
			"success": true,
			"data":    data,
		})
	}

	return f.prettyPrint(data)
}

// WriteJSON encodes v as one line of JSON
func (f *OutputFormatter) WriteJSON(v interface{}) error {
	return json.NewEncoder(f.out()).Encode(v)
}

// Printf writes human-readable output
func (f *OutputFormatter) Printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(f.out(), format, args...)
}

// Error outputs error information
func (f *OutputFormatter) Error(code string, message string) error {
	return f.ErrorWithSuggestion(code, message, "")
}

// ErrorWithSuggestion outputs error information with an optional suggestion
func (f *OutputFormatter) ErrorWithSuggestion(code string, message string, suggestion string) error {
	if f.JSON {
		errData := map[string]interface{}{
			"code":    code,
			"message": message,
		}
		if suggestion != "" {
			errData["suggestion"] = suggestion
		}
		return f.WriteJSON(map[string]interface{}{
			"success": false,
			"error":   errData,
		})
	}

	_, _ = fmt.Fprintf(f.errOut(), "❌ Error: %s\n", message)
	if suggestion != "" {
		_, _ = fmt.Fprintf(f.errOut(), "💡 Suggestion: %s\n", suggestion)
	}
	return nil
}

// Fail reports err under code and returns an error carrying exitCode
func (f *OutputFormatter) Fail(exitCode int, code string, err error) error {
	return f.FailWithSuggestion(exitCode, code, err, "")
}

// FailWithSuggestion is Fail with a hint for the user
func (f *OutputFormatter) FailWithSuggestion(exitCode int, code string, err error, suggestion string) error {
	if fmtErr := f.ErrorWithSuggestion(code, err.Error(), suggestion); fmtErr != nil {
		slog.Error("Error formatting error message", "error", fmtErr)
	}
	return &CodedError{Code: exitCode, Err: err}
}

// prettyPrint formats data for human-readable output
func (f *OutputFormatter) prettyPrint(data interface{}) error {
	if s, ok := data.(fmt.Stringer); ok {
		_, err := fmt.Fprintln(f.out(), s.String())
		return err
	}
	_, err := fmt.Fprintf(f.out(), "%+v\n", data)
	return err
}
