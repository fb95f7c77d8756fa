package failure

type Severity int

// scheduler control flow
const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

// ClassifiedError is the error contract shared by every pipeline stage.
// A recoverable error is confined to a single source or URL; a fatal
// error aborts the run before or during scheduling.
type ClassifiedError interface {
	error
	Severity() Severity
}
