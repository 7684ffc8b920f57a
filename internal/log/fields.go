package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldBackend     = "backend"
	FieldSource      = "source"
	FieldUF          = "uf"
	FieldCity        = "city"
	FieldCNS         = "cns"
	FieldMode        = "mode"
	FieldMonth       = "month"
	FieldRows        = "rows"
	FieldRowsKept    = "rows_kept"
	FieldBadAmount   = "rows_bad_amount"
	FieldBadPeriod   = "rows_bad_period"
	FieldNonPositive = "rows_non_positive"
	FieldOffices     = "offices"
	FieldPoints      = "points"
	FieldAmountCents = "amount_cents"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentRegistry  = "registry"
	ComponentFinance   = "finance"
	ComponentDashboard = "dashboard"
	ComponentBackend   = "backend"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentChart     = "chart"
	ComponentCLI       = "cli"
)

// Operations defines standard operation names
const (
	OpLoad      = "load"
	OpClean     = "clean"
	OpResolve   = "resolve"
	OpAggregate = "aggregate"
	OpRender    = "render"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)
