package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldOperationID = "operation_id"
	FieldError       = "error"
	FieldErrorType   = "error_type"
	FieldActivityID  = "activity_id"
	FieldCategory    = "category"
	FieldSubtype     = "subtype"
	FieldQuantity    = "quantity"
	FieldFootprintKg = "footprint_kg"
	FieldOccurredAt  = "occurred_at"
	FieldAffected    = "affected"
	FieldPeriod      = "period"
	FieldWindowDays  = "window_days"
	FieldCacheHit    = "cache_hit"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentActivity  = "activity"
	ComponentDashboard = "dashboard"
	ComponentStorage   = "storage"
	ComponentFactors   = "factors"
	ComponentBackend   = "backend"
)

// Operations defines standard operation names
const (
	OpCreate    = "create"
	OpRead      = "read"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpDeleteAll = "delete_all"
	OpList      = "list"
	OpAggregate = "aggregate"
	OpLoad      = "load"
	OpStartup   = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeLoad          = "load_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithErrorType adds the error category
func (f LogFields) WithErrorType(kind string) LogFields {
	f[FieldErrorType] = kind
	return f
}

// WithActivity adds activity-related fields
func (f LogFields) WithActivity(id int64, category, subtype string, quantity, footprintKg float64) LogFields {
	if id != 0 {
		f[FieldActivityID] = id
	}
	f[FieldCategory] = category
	f[FieldSubtype] = subtype
	f[FieldQuantity] = quantity
	f[FieldFootprintKg] = footprintKg
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
