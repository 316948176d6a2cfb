package domain

// DefectCategory tags a finding reported by the vision model.
type DefectCategory string

const (
	CategoryUIBug                DefectCategory = "UI_BUG"
	CategoryAccessibility        DefectCategory = "ACCESSIBILITY"
	CategoryContentError         DefectCategory = "CONTENT_ERROR"
	CategoryPerformanceIndicator DefectCategory = "PERFORMANCE_INDICATOR"
	CategoryAssertionFailed      DefectCategory = "ASSERTION_FAILED"

	// CategoryUnknown is substituted when the model omits a category.
	CategoryUnknown DefectCategory = "UNKNOWN"
	// CategoryAIError is reserved for clients that recognise it. The server
	// never emits it; LLM failures propagate as errors instead.
	CategoryAIError DefectCategory = "AI_ERROR"
)

// DefectCategories lists the taxonomy the model is instructed to use, in prompt order.
var DefectCategories = []DefectCategory{
	CategoryUIBug,
	CategoryAccessibility,
	CategoryContentError,
	CategoryPerformanceIndicator,
	CategoryAssertionFailed,
}

// Capability names one request/response behavior of the service.
type Capability string

const (
	CapabilityDefectDetection Capability = "defect_detection"
	CapabilityTextExtraction  Capability = "text_extraction"
)
