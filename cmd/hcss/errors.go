package main

import "errors"

// Sentinel errors for command operations
var (
	ErrBuildFailed      = errors.New("build failed")
	ErrTestsFailed      = errors.New("fixture tests failed")
	ErrFileNotFormatted = errors.New("file is not formatted")
	ErrFormattingErrors = errors.New("some files had formatting errors")
	ErrUnknownFormat    = errors.New("unknown output format")
)
