package pipeline

import "sync"

// Step names a stage of a tailoring run
type Step string

const (
	StepParsing          Step = "parsing"
	StepAnalyzing        Step = "analyzing"
	StepMatching         Step = "matching"
	StepFormatting       Step = "formatting"
	StepCoverLetter      Step = "cover_letter"
	StepAICheck          Step = "ai_check"
	StepCoverLetterRetry Step = "cover_letter_retry"
	StepComplete         Step = "complete"
)

// Progress reported when each step starts
const (
	progressParsing    = 10
	progressAnalyzing  = 25
	progressMatching   = 45
	progressGenerating = 60
	progressAICheck    = 85
	progressRetry      = 90
	progressRecheck    = 95
	progressComplete   = 100
)

// ProgressEvent represents a progress update during a tailoring run
type ProgressEvent struct {
	Step      Step   `json:"step"`
	Progress  int    `json:"progress"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ProgressCallback is called synchronously for every progress event
type ProgressCallback func(event ProgressEvent)

// reporter delivers events in order and never lets progress go backwards
type reporter struct {
	mu        sync.Mutex
	last      int
	requestID string
	callback  ProgressCallback
}

func newReporter(requestID string, callback ProgressCallback) *reporter {
	return &reporter{requestID: requestID, callback: callback}
}

func (r *reporter) emit(step Step, progress int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if progress < r.last {
		progress = r.last
	}
	r.last = progress
	if r.callback != nil {
		r.callback(ProgressEvent{Step: step, Progress: progress, Message: message, RequestID: r.requestID})
	}
}
