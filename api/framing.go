package api

// The printer protocol has no length prefix and no response delimiter.
// Session.Receive asks a ResponseCompleteFunc after every chunk whether the
// reply is over; EOF and read timeouts always end it.

// ResponseCompleteFunc reports whether the response is complete after chunk
// was appended to accumulated. chunk is the tail of accumulated.
type ResponseCompleteFunc func(accumulated, chunk []byte) bool

// TrailingQuote treats a chunk of more than one byte ending in '"' as the end
// of a quoted SGD reply. A single-byte chunk never completes the response,
// even when it is a lone quote.
func TrailingQuote(_, chunk []byte) bool {
	n := len(chunk)
	return n > 1 && chunk[n-1] == '"'
}

// UntilTimeout never completes early: the response ends on EOF or read timeout.
func UntilTimeout(_, _ []byte) bool {
	return false
}
