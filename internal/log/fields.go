package log

// Common field names for structured logging.
const (
	FieldComponent     = "component"
	FieldOperation     = "operation"
	FieldError         = "error"
	FieldMonth         = "month"
	FieldRuleID        = "rule_id"
	FieldTransactionID = "transaction_id"
	FieldGoalName      = "goal_name"
	FieldAmountCents   = "amount_cents"
	FieldCategory      = "category"
	FieldMainCategory  = "main_category"
	FieldFrequency     = "frequency"
	FieldEventType     = "event_type"
	FieldCount         = "count"
	FieldDuration      = "duration_ms"
)

// Components defines standard component names.
const (
	ComponentApp     = "app"
	ComponentEngine  = "engine"
	ComponentStorage = "storage"
	ComponentNotify  = "notify"
	ComponentWorker  = "worker"
	ComponentExport  = "export"
	ComponentCLI     = "cli"
)
