package client

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedMethod is returned when the dispatcher is asked for a method other than GET or POST
	ErrUnsupportedMethod = errors.New("unsupported method")

	// ErrSendRequest matches any non-200 response, see StatusError
	ErrSendRequest = errors.New("send request error")

	// ErrInvalidRequest is returned when call arguments fail validation
	ErrInvalidRequest = errors.New("invalid request")
)

// Operation names the API call that produced an APIError
type Operation string

const (
	OpGetAvailableCoins          Operation = "Get Available Coins"
	OpGetEstimatedExchangeAmount Operation = "Get Estimated Exchange Amount"
	OpCreateTransaction          Operation = "Create Transaction"
	OpGetTransactionInfo         Operation = "Get Transaction Info"
)

// Sentinels for errors.Is; they match any APIError of the same operation.
var (
	ErrGetAvailableCoins          = &APIError{Op: OpGetAvailableCoins}
	ErrGetEstimatedExchangeAmount = &APIError{Op: OpGetEstimatedExchangeAmount}
	ErrCreateTransaction          = &APIError{Op: OpCreateTransaction}
	ErrGetTransactionInfo         = &APIError{Op: OpGetTransactionInfo}
)

// APIError carries the message the server reported in the envelope's error object
type APIError struct {
	Op      Operation
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s Error : %s", e.Op, e.Message)
}

func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.Op == e.Op && (t.Message == "" || t.Message == e.Message)
}

// StatusError is returned when the server answers with anything but 200 OK
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d", ErrSendRequest, e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrSendRequest
}
