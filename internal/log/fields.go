package log

import (
	"net/http"
	"time"
)

// Attribute keys shared by every component.
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldQuery         = "query"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldUserAgent     = "user_agent"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldCardID        = "card_id"
	FieldTransactionID = "transaction_id"
	FieldCount         = "count"
)

const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentCard        = "card"
	ComponentTransaction = "transaction"
	ComponentStorage     = "storage"
	ComponentCache       = "cache"
	ComponentTrace       = "trace"
	ComponentBackend     = "backend"
)

const (
	OpCreate    = "create"
	OpRead      = "read"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpDeleteAll = "delete_all"
	OpList      = "list"
	OpParse     = "parse"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
)

// Fields is an ordered list of key/value pairs ready for slog. Empty
// identifiers are skipped so callers can pass route params unchecked.
type Fields []any

func NewFields() Fields {
	return make(Fields, 0, 8)
}

func (f Fields) add(key string, value any) Fields {
	return append(f, key, value)
}

func (f Fields) Card(id string) Fields {
	if id == "" {
		return f
	}
	return f.add(FieldCardID, id)
}

func (f Fields) Transaction(id string) Fields {
	if id == "" {
		return f
	}
	return f.add(FieldTransactionID, id)
}

func (f Fields) Operation(op string) Fields {
	return f.add(FieldOperation, op)
}

func (f Fields) Err(err error) Fields {
	if err == nil {
		return f
	}
	return f.add(FieldError, err.Error())
}

func (f Fields) RequestID(id string) Fields {
	if id == "" {
		return f
	}
	return f.add(FieldRequestID, id)
}

func (f Fields) ClientIP(ip string) Fields {
	if ip == "" {
		return f
	}
	return f.add(FieldClientIP, ip)
}

// Request adds method, path and, when present, query and user agent.
func (f Fields) Request(r *http.Request) Fields {
	f = f.add(FieldMethod, r.Method).add(FieldPath, r.URL.Path)
	if r.URL.RawQuery != "" {
		f = f.add(FieldQuery, r.URL.RawQuery)
	}
	if ua := r.UserAgent(); ua != "" {
		f = f.add(FieldUserAgent, ua)
	}
	return f
}

func (f Fields) Response(status int, elapsed time.Duration) Fields {
	return f.add(FieldStatusCode, status).add(FieldDuration, elapsed.Milliseconds())
}
