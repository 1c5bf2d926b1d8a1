package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"rezeptapp/internal/errors"
)

// OKResponse acknowledges a mutation without a body.
type OKResponse struct {
	OK bool `json:"ok"`
}

// TextBlock is a newline-delimited text field. Clients may send it as a single
// string or as an array of lines.
type TextBlock string

// UnmarshalJSON accepts a string, an array of strings or null.
func (t *TextBlock) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '[' {
		var lines []string
		if err := json.Unmarshal(data, &lines); err != nil {
			return fmt.Errorf("text block: %w", err)
		}
		*t = TextBlock(strings.Join(lines, "\n"))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("text block: %w", err)
	}
	*t = TextBlock(s)
	return nil
}

// FlexID is an entity id sent either as a JSON number or a numeric string.
type FlexID uint

// UnmarshalJSON accepts 12 or "12".
func (id *FlexID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(strings.Trim(string(bytes.TrimSpace(data)), `"`))
	if raw == "" || raw == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", raw)
	}
	*id = FlexID(n)
	return nil
}

// IDs converts a FlexID slice to plain ids.
func IDs(in []FlexID) []uint {
	out := make([]uint, 0, len(in))
	for _, id := range in {
		out = append(out, uint(id))
	}
	return out
}

// httpError converts a service error into an echo error carrying ErrorResponse.
func httpError(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func badRequest(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: msg,
		Code:  string(errors.KindValidation),
	})
}

// bind decodes and validates a request body.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return badRequest(err.Error())
	}
	return nil
}

func paramID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest("invalid id")
	}
	return uint(id), nil
}
