// internal/websocket/errors.go
package websocket

import "errors"

var (
	ErrTokenRevoked = errors.New("token has been revoked")
	ErrUnauthorized = errors.New("unauthorized")
)
