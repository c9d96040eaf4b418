package metrics

import "time"

// Stage names a phase of an indexing run.
type Stage string

const (
	StageScan      Stage = "scan"
	StageParse     Stage = "parse"
	StageAggregate Stage = "aggregate"
	StageTags      Stage = "tags"
	StageCopy      Stage = "copy"
)

// RunOutcome enumerates final run states.
type RunOutcome string

const (
	OutcomeSuccess RunOutcome = "success"
	OutcomeFailed  RunOutcome = "failed"
)

// FileResult enumerates how a single source file was handled.
type FileResult string

const (
	FileParsed          FileResult = "parsed"
	FileMissingMetadata FileResult = "missing_metadata"
	FileInvalidMetadata FileResult = "invalid_metadata"
	FileDraft           FileResult = "draft"
	FileError           FileResult = "error"
)

// Diagnostic enumerates recoverable conditions reported during a run.
type Diagnostic string

const (
	DiagnosticMissingMedia Diagnostic = "missing_media"
	DiagnosticCapability   Diagnostic = "capability"
	DiagnosticUnreadable   Diagnostic = "unreadable_entry"
)

// Recorder defines observability hooks for indexing runs. Implementations
// may forward to Prometheus or a test double.
type Recorder interface {
	ObserveStageDuration(stage Stage, d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome RunOutcome)
	IncFileResult(result FileResult)
	AddDiagnostics(kind Diagnostic, n int)
	SetIndexed(posts, tags, mediaFolders int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(Stage, time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)          {}
func (NoopRecorder) IncRunOutcome(RunOutcome)                  {}
func (NoopRecorder) IncFileResult(FileResult)                  {}
func (NoopRecorder) AddDiagnostics(Diagnostic, int)            {}
func (NoopRecorder) SetIndexed(int, int, int)                  {}
