// Package extract converts stored files into ordered sequences of raw text
// segments, one segment per logical unit (page for PDF, paragraph for word
// processor formats and plain text).
//
// Supported formats are enumerated by a fixed capability table. Extraction
// failures are scoped to the single file: an unsupported format or corrupt
// content yields a tagged error the caller records against that file alone,
// never aborting sibling files in the same submission.
package extract
