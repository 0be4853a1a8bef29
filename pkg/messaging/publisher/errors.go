package publisher

import "fmt"

// ErrorCode - error code enum.
type ErrorCode int

const (
	ErrorPublisherClosed ErrorCode = iota
	ErrorInitializingPubsubClient
	ErrorSerializingJsonMessage
	ErrorClosingPubsubClient
)

var errorMessages = map[ErrorCode]string{
	ErrorPublisherClosed:          "error Publisher is already closed",
	ErrorInitializingPubsubClient: "error initializing Broker Client",
	ErrorSerializingJsonMessage:   "error serializing json message",
	ErrorClosingPubsubClient:      "error closing pubsub client",
}

// MessagingError - General messaging error.
type MessagingError struct {
	message string
	err     error
}

// NewMessagingErrorCode - MessagingError constructor given a predefined Error Code.
func NewMessagingErrorCode(code ErrorCode, err error) *MessagingError {
	return &MessagingError{message: errorMessages[code], err: err}
}

// NewMessagingError - MessagingError constructor.
func NewMessagingError(err error, msg string, args ...any) *MessagingError {
	return &MessagingError{message: fmt.Sprintf(msg, args...), err: err}
}

func (e *MessagingError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}

	return e.message
}

func (e *MessagingError) Unwrap() error {
	return e.err
}
