package model

// ModeOf exposes modeOf for tests
var ModeOf = modeOf
