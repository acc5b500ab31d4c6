package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Mock Types for Testing
// ============================================================================

type mockDataWithID struct {
	ID   string
	Name string
}

func (m mockDataWithID) GetID() string {
	return m.ID
}

type mockStringer struct{ name string }

func (m mockStringer) String() string { return "card " + m.name }

func newFormatter(jsonMode, quiet bool) (*OutputFormatter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return &OutputFormatter{JSON: jsonMode, Quiet: quiet, Out: &out, ErrOut: &errOut}, &out, &errOut
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result), "output: %s", buf.String())
	return result
}

// ============================================================================
// Success
// ============================================================================

func TestOutputFormatter_Success_JSON(t *testing.T) {
	tests := []struct {
		name string
		data interface{}
		want interface{}
	}{
		{"map data", map[string]interface{}{"test": "value"}, map[string]interface{}{"test": "value"}},
		{"struct with ID", mockDataWithID{ID: "c-1", Name: "Ana"}, map[string]interface{}{"ID": "c-1", "Name": "Ana"}},
		{"string data", "simple string", "simple string"},
		{"integer data", 42, float64(42)},
		{"nil data", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, out, _ := newFormatter(true, false)
			require.NoError(t, f.Success(tt.data))

			result := decode(t, out)
			assert.Equal(t, true, result["success"])
			assert.Equal(t, tt.want, result["data"])
		})
	}
}

func TestOutputFormatter_Success_QuietPrintsID(t *testing.T) {
	f, out, _ := newFormatter(false, true)
	require.NoError(t, f.Success(mockDataWithID{ID: "c-42"}))
	assert.Equal(t, "c-42\n", out.String())

	// pointer to value receiver
	out.Reset()
	require.NoError(t, f.Success(&mockDataWithID{ID: "c-7"}))
	assert.Equal(t, "c-7\n", out.String())
}

func TestOutputFormatter_Success_QuietWithoutIDFallsBack(t *testing.T) {
	f, out, _ := newFormatter(false, true)
	require.NoError(t, f.Success(map[string]int{"n": 1}))
	assert.Contains(t, out.String(), "n:1")
}

func TestOutputFormatter_Success_QuietBeatsJSON(t *testing.T) {
	f, out, _ := newFormatter(true, true)
	require.NoError(t, f.Success(mockDataWithID{ID: "c-1"}))
	assert.Equal(t, "c-1\n", out.String())
}

func TestOutputFormatter_Success_Human(t *testing.T) {
	f, out, _ := newFormatter(false, false)
	require.NoError(t, f.Success(mockStringer{name: "Ana"}))
	assert.Equal(t, "card Ana\n", out.String())

	out.Reset()
	require.NoError(t, f.Success(struct{ Name string }{"Bea"}))
	assert.Equal(t, "{Name:Bea}\n", out.String())
}

// ============================================================================
// Errors
// ============================================================================

func TestOutputFormatter_Error_JSON(t *testing.T) {
	f, out, errOut := newFormatter(true, false)
	require.NoError(t, f.ErrorWithSuggestion("COLUMN_NOT_FOUND", "column x not found", "run: nutriboard column list"))

	result := decode(t, out)
	assert.Equal(t, false, result["success"])
	errData := result["error"].(map[string]interface{})
	assert.Equal(t, "COLUMN_NOT_FOUND", errData["code"])
	assert.Equal(t, "column x not found", errData["message"])
	assert.Equal(t, "run: nutriboard column list", errData["suggestion"])
	assert.Empty(t, errOut.String())
}

func TestOutputFormatter_Error_JSONOmitsEmptySuggestion(t *testing.T) {
	f, out, _ := newFormatter(true, false)
	require.NoError(t, f.Error("X", "msg"))

	errData := decode(t, out)["error"].(map[string]interface{})
	_, has := errData["suggestion"]
	assert.False(t, has)
}

func TestOutputFormatter_Error_Human(t *testing.T) {
	f, out, errOut := newFormatter(false, false)
	require.NoError(t, f.ErrorWithSuggestion("X", "client not found", "check the ID"))

	assert.Empty(t, out.String())
	lines := strings.Split(strings.TrimSpace(errOut.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "client not found")
	assert.Contains(t, lines[1], "check the ID")
}

func TestOutputFormatter_Fail(t *testing.T) {
	f, out, _ := newFormatter(true, false)
	cause := errors.New("column not found")

	err := f.Fail(ExitNotFound, "COLUMN_NOT_FOUND", cause)
	assert.Equal(t, ExitNotFound, ExitCode(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "COLUMN_NOT_FOUND", decode(t, out)["error"].(map[string]interface{})["code"])
}

func TestOutputFormatter_Printf(t *testing.T) {
	f, out, _ := newFormatter(false, false)
	f.Printf("%d columns\n", 3)
	assert.Equal(t, "3 columns\n", out.String())
}
