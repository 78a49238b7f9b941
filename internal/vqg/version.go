package vqg

// Version constants for the graph format and the translator.
const (
	// FormatVersion is the graph JSON format version.
	FormatVersion = "2"

	// TranslatorVersion is the qbg release.
	TranslatorVersion = "0.3.0"
)
