package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound      = goerr.New("configuration file not found")
	ErrInvalidConfig       = goerr.New("invalid configuration")
	ErrUnsupportedFormat   = goerr.New("unsupported configuration format")
	ErrInvalidLogLevel     = goerr.New("invalid log level")
	ErrInvalidLogFormat    = goerr.New("invalid log format")
	ErrInvalidWeight       = goerr.New("invalid alternative weight")
	ErrInvalidFactor       = goerr.New("invalid questionnaire factor")
	ErrDuplicateTemplateID = goerr.New("duplicate questionnaire ID")
	ErrTemplateNotFound    = goerr.New("questionnaire not found")
	ErrMissingText         = goerr.New("text is required")
)

// Context keys for error values
const (
	ConfigPathKey    = "config_path"
	TemplateIDKey    = "questionnaire_id"
	TableKey         = "table"
	EntryIndexKey    = "entry_index"
	QuestionIndexKey = "question_index"
)
