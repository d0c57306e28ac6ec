package types

// HTTP headers the API reads and writes
const (
	HeaderRequestID = "X-Request-ID"
	HeaderSchoolID  = "X-School-ID"
	HeaderUserID    = "X-User-ID"
)
