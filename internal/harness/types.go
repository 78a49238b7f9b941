package harness

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion and the golden comparison succeed.
	Pass bool `json:"pass"`

	Direction string `json:"direction"`

	// Output is the translation output: SPARQL text or graph JSON.
	Output string `json:"output"`

	// TranslationID is the content-addressed id the translation was
	// recorded under.
	TranslationID string `json:"translation_id"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(direction string) *Result {
	return &Result{
		Pass:      true,
		Direction: direction,
		Errors:    []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
