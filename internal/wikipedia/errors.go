// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wikipedia

import (
	"errors"
	"fmt"
)

var (
	ErrPageNotFound      = errors.New("page not found")
	ErrInvalidParameters = errors.New("invalid parameters")
)

// APIError is the error object MediaWiki returns in a 200 response body.
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("MediaWiki API error: %s (code: %s)", e.Info, e.Code)
}
