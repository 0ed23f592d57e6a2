package domain

import "errors"

var (
	ErrDocumentNotFound    = errors.New("document not found")
	ErrVariantMismatch     = errors.New("operation does not apply to this document kind")
	ErrInvalidCommentCount = errors.New("comment count must be >= 0")
	ErrInvalidCoAuthors    = errors.New("co-authors must be a list of non-empty names")
	ErrUnknownKind         = errors.New("unknown document kind")
)
