package errors

// ErrorBuilder assembles a ClassifiedError.
type ErrorBuilder struct {
	err ClassifiedError
}

// NewError starts an error in category. Content and media errors default to
// SeverityWarning, everything else to SeverityError.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	severity := SeverityError
	if category.recoverable() {
		severity = SeverityWarning
	}
	return &ErrorBuilder{err: ClassifiedError{
		category: category,
		severity: severity,
		message:  message,
	}}
}

// WrapError starts an error in category caused by err.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	return NewError(category, message).WithCause(err)
}

func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.err.severity = severity
	return b
}

func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.err.cause = err
	return b
}

func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.err.context = b.err.context.Set(key, value)
	return b
}

func (b *ErrorBuilder) Fatal() *ErrorBuilder   { return b.WithSeverity(SeverityFatal) }
func (b *ErrorBuilder) Warning() *ErrorBuilder { return b.WithSeverity(SeverityWarning) }

// Build returns the error. The builder may keep being used; later changes do
// not affect errors already built.
func (b *ErrorBuilder) Build() *ClassifiedError {
	ce := b.err
	ce.context = b.err.context.Merge(nil)
	return &ce
}

func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal()
}

func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message).Fatal()
}

// FileSystemError is fatal: an unreadable file aborts the run.
func FileSystemError(message string) *ErrorBuilder {
	return NewError(CategoryFileSystem, message).Fatal()
}

func ContentError(message string) *ErrorBuilder { return NewError(CategoryContent, message) }
func MediaError(message string) *ErrorBuilder   { return NewError(CategoryMedia, message) }

func RuntimeError(message string) *ErrorBuilder {
	return NewError(CategoryRuntime, message).Fatal()
}

func InternalError(message string) *ErrorBuilder {
	return NewError(CategoryInternal, message).Fatal()
}
