// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"io"
	"time"
)

// JSONResponse is the envelope every --json command writes. Scripts check
// success first; data is null on failure and error is null on success.
type JSONResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	Error     *string     `json:"error"`
	Timestamp string      `json:"timestamp"`
	Command   string      `json:"command,omitempty"`
}

func envelope(command string) *JSONResponse {
	return &JSONResponse{
		Command:   command,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// NewJSONResponse wraps data in a successful envelope.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	r := envelope(command)
	r.Success, r.Data = true, data
	return r
}

// NewJSONErrorResponse wraps err in a failed envelope.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	r := envelope(command)
	msg := err.Error()
	r.Error = &msg
	return r
}

func (r *JSONResponse) Print(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// OutputJSON calls handler and, with jsonMode set, prints its result as an
// envelope. Without jsonMode the handler does its own printing and only
// the error is passed through.
func OutputJSON(w io.Writer, jsonMode bool, command string, handler func() (interface{}, error)) error {
	data, err := handler()
	switch {
	case !jsonMode:
		return err
	case err != nil:
		_ = NewJSONErrorResponse(command, err).Print(w)
		return err
	default:
		return NewJSONResponse(command, data).Print(w)
	}
}
