package main

// Exit codes.
const (
	ExitSuccess      = 0 // Success
	ExitError        = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError  = 2 // Configuration error (unreadable config, bad environment)
	ExitDataError    = 3 // Data error (malformed or corrupted model)
	ExitVerifyFailed = 4 // Round-trip verification found differences
)
