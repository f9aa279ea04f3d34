package http

import "time"

// Response is what Send hands back to the dispatcher: the status, the raw
// body, and how long the round trip took.
type Response struct {
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// IsEmpty reports whether the response carried no body.
func (r *Response) IsEmpty() bool {
	return len(r.Body) == 0
}
