package transfer

import "fmt"

// GraphError is the error object returned by the Facebook and Instagram
// Graph APIs.
type GraphError struct {
	Message        string `json:"message"`
	Type           string `json:"type"`
	Code           int    `json:"code"`
	ErrorSubcode   int    `json:"error_subcode"`
	IsTransient    bool   `json:"is_transient"`
	ErrorUserTitle string `json:"error_user_title"`
	ErrorUserMsg   string `json:"error_user_msg"`
	FbtraceID      string `json:"fbtrace_id"`
}

func (e *GraphError) Error() string {
	return e.Message
}

type GraphErrorResponse struct {
	Error *GraphError `json:"error"`
}

// StatusError is returned when an upstream call fails without a decodable
// error payload.
type StatusError struct {
	Platform   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code from %s: %d", e.Platform, e.StatusCode)
}

type FacebookPostResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
}
