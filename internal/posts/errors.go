package posts

import "errors"

var (
	// ErrContentRootNotFound is returned when BaseDir/ContentPath does not exist
	// or is not a directory.
	ErrContentRootNotFound = errors.New("content root not found")
	// ErrRunInProgress is returned by Run while another Run on the same
	// service has not returned, including calls from the AfterIndexed hook.
	ErrRunInProgress = errors.New("indexing run already in progress")
	// ErrInvalidPattern is returned for a PostFilePattern filepath.Match rejects.
	ErrInvalidPattern = errors.New("invalid post file pattern")
)
