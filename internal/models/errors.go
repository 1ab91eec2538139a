package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound        = errors.New("resource not found") // General not found
	ErrChapterNotFound = errors.New("chapter not found")

	// Generation Errors
	ErrTextGenerationFailed  = errors.New("chapter text generation failed")
	ErrImageGenerationFailed = errors.New("image generation failed")
	ErrAllModelsFailed       = errors.New("all image models exhausted")
	ErrImageSaveFailed       = errors.New("failed to save generated image")

	// Job State Errors
	ErrJobAlreadyRunning       = errors.New("illustration job is already in progress")
	ErrBookHasActiveGeneration = errors.New("book already has an active chapter generation")

	// Validation Errors
	ErrReferenceInconsistent = errors.New("character reference flag does not match stored reference data")
	ErrInvalidInput          = errors.New("invalid input data")
	ErrBadRequest            = errors.New("bad request")

	// General Server Errors
	ErrInternalServer = errors.New("internal server error")
)
