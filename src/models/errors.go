package models

import (
	"errors"
	"fmt"
)

// Remote operations, used as RemoteCallError.Op.
const (
	OpUpload    = "upload file"
	OpStartChat = "start chat"
	OpSend      = "send message"
)

var ErrEmptyResponse = errors.New("empty response")

// RemoteCallError wraps any failure of a call to the model provider
// (network, quota, API error). It is recoverable; nothing is retried.
type RemoteCallError struct {
	Op       string
	Provider string
	Err      error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }

// WrapRemote returns err as a *RemoteCallError unless it already is one.
func WrapRemote(op, provider string, err error) error {
	if err == nil {
		return nil
	}
	var rerr *RemoteCallError
	if errors.As(err, &rerr) {
		return err
	}
	return &RemoteCallError{Op: op, Provider: provider, Err: err}
}
