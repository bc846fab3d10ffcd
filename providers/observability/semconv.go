package observability

// Attribute keys.
const (
	// AttrTask names the caller's task, e.g. "pantry_scan" or "weekly_plan".
	AttrTask = "recook.task"

	// AttrShapeKind is the expected top-level kind, "object" or "array".
	AttrShapeKind = "extract.shape.kind"

	// AttrReason is the extraction failure code, see extract.Reason.
	AttrReason = "extract.reason"

	// AttrSnippet is the bounded prefix of the model output kept on failure.
	AttrSnippet = "extract.snippet"

	// AttrMissing lists required keys that were absent.
	AttrMissing = "extract.missing"

	// AttrAttempt is the 1-based generation attempt.
	AttrAttempt = "recook.attempt"

	// AttrOutput is the model output, truncated, logged at debug level.
	AttrOutput = "recook.output"

	// AttrFallback is true when the caller's default value was used.
	AttrFallback = "recook.fallback"

	AttrDuration = "duration"
	AttrError    = "error"
	AttrStatus   = "status"
)

// Span names.
const (
	SpanGenerate = "structured.generate"
)

// Metric names.
const (
	// MetricExtractFailures counts failed extractions, labelled by reason.
	MetricExtractFailures = "recook.extract.failures"

	// MetricAttempts records how many generations a recovery run needed.
	MetricAttempts = "recook.extract.attempts"

	// MetricFallbacks counts runs that ended on the caller's fallback.
	MetricFallbacks = "recook.extract.fallbacks"

	// MetricGenerateDuration records wall time of a recovery run in seconds.
	MetricGenerateDuration = "recook.generate.duration"
)
