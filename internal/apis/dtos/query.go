package dtos

// QueryError is the classified failure returned by the database executor.
type QueryError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

func (e *QueryError) Error() string {
	return e.Message
}
