package domain

// DiagnosticCategory classifies a type-check diagnostic.
type DiagnosticCategory string

const (
	// CategoryError is a type error.
	CategoryError DiagnosticCategory = "error"
	// CategoryWarning is a type warning.
	CategoryWarning DiagnosticCategory = "warning"
	// CategorySuggestion is an informational hint.
	CategorySuggestion DiagnosticCategory = "suggestion"
	// CategoryMessage is a plain message.
	CategoryMessage DiagnosticCategory = "message"
)

// Diagnostic is one filtered finding of the type-check worker.
// File, Line and Column are zero when the diagnostic has no source location.
type Diagnostic struct {
	Category DiagnosticCategory `json:"category"`
	Code     int                `json:"code"`
	Message  string             `json:"message"`
	File     string             `json:"file,omitempty"`
	Line     int                `json:"line,omitempty"`
	Column   int                `json:"column,omitempty"`
}

// WorkerRequest asks a type-check worker to analyze one file.
type WorkerRequest struct {
	ID              string         `json:"id"`
	FileName        string         `json:"fileName"`
	Content         string         `json:"content"`
	CompilerOptions map[string]any `json:"compilerOptions,omitempty"`
}

// WorkerResponse is the reply correlated to a WorkerRequest by ID.
// Error is set, and Success false, when the worker itself failed.
type WorkerResponse struct {
	ID          string       `json:"id"`
	Success     bool         `json:"success"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
	HasErrors   bool         `json:"hasErrors"`
	Error       string       `json:"error,omitempty"`
}

// ErrorCount returns the number of error-category diagnostics.
func (r WorkerResponse) ErrorCount() int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Category == CategoryError {
			n++
		}
	}
	return n
}

// AnalysisHost is the ephemeral file set a worker builds for one request.
// Files maps virtual file names to their content.
type AnalysisHost struct {
	Files   map[string]string
	Options map[string]any
}

// NewAnalysisHost creates a host holding only the given file.
func NewAnalysisHost(name, content string, options map[string]any) *AnalysisHost {
	return &AnalysisHost{
		Files:   map[string]string{name: content},
		Options: options,
	}
}

// Add puts a file into the host, replacing any previous content.
func (h *AnalysisHost) Add(name, content string) {
	h.Files[name] = content
}
