package errors

// Convenience constructors for the error taxonomy used by the build pipeline.

// Config errors

func ConfigNotFound(path string) *SiteError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigInvalid(reason string, cause error) *SiteError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "invalid configuration").
		WithContext("reason", reason)
}

// Parse errors (per-document, recoverable)

func MissingMetadataBlock(docID string) *SiteError {
	return New(CategoryParse, SeverityWarning, "document does not start with a metadata block").
		WithContext("doc_id", docID)
}

func MissingRequiredField(docID, field string) *SiteError {
	return New(CategoryParse, SeverityWarning, "required metadata field missing").
		WithContext("doc_id", docID).
		WithContext("field", field)
}

func InvalidDate(docID, value string, cause error) *SiteError {
	return Wrap(cause, CategoryParse, SeverityWarning, "metadata date is not a recognized format").
		WithContext("doc_id", docID).
		WithContext("value", value)
}

func InvalidType(docID, value string) *SiteError {
	return New(CategoryParse, SeverityWarning, "metadata type is not page or post").
		WithContext("doc_id", docID).
		WithContext("value", value)
}

// Render errors (per-document, recoverable)

func UnknownTemplate(docID, template string) *SiteError {
	return New(CategoryRender, SeverityWarning, "no template registered under this name").
		WithContext("doc_id", docID).
		WithContext("template", template)
}

// Index errors (build-fatal)

func EmptySlug(docID string) *SiteError {
	return New(CategoryIndex, SeverityFatal, "document id reduces to an empty slug").
		WithContext("doc_id", docID)
}

func DuplicateSlugCollision(outputPath, firstID, secondID string) *SiteError {
	return New(CategoryIndex, SeverityFatal, "two documents map to the same output path").
		WithContext("output_path", outputPath).
		WithContext("first_id", firstID).
		WithContext("second_id", secondID)
}

// Filesystem and source errors

func WorkspaceError(operation string, cause error) *SiteError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "output workspace operation failed").
		WithContext("operation", operation)
}

func GitFetchError(url string, cause error) *SiteError {
	return Wrap(cause, CategoryGit, SeverityFatal, "content source fetch failed").
		WithContext("url", url)
}

// Runtime errors

func DaemonError(message string, cause error) *SiteError {
	return Wrap(cause, CategoryDaemon, SeverityFatal, message)
}

func InternalError(message string, cause error) *SiteError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
