package constvars

const (
	MIMETextPlain       = "text/plain"
	MIMETextCSV         = "text/csv"
	MIMEApplicationJSON = "application/json"
)

const (
	HeaderContentType        = "Content-Type"
	HeaderContentDisposition = "Content-Disposition"
	HeaderAuthorization      = "Authorization"
	HeaderXRequestID         = "X-Request-ID"
	HeaderRetryAfter         = "Retry-After"
)

const (
	StatusOK                  = 200
	StatusCreated             = 201
	StatusAccepted            = 202
	StatusBadRequest          = 400
	StatusUnauthorized        = 401
	StatusForbidden           = 403
	StatusNotFound            = 404
	StatusRequestTimeout      = 408
	StatusConflict            = 409
	StatusGone                = 410
	StatusTooManyRequests     = 429
	StatusInternalServerError = 500
	StatusServiceUnavailable  = 503
	StatusGatewayTimeout      = 504
)
