package main

// Exit codes used across all commands.
const (
	ExitSuccess      = 0 // Success
	ExitError        = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError  = 2 // Configuration error (missing config, invalid paths)
	ExitDataError    = 3 // Data error (malformed assets, integrity failure)
	ExitInputError   = 4 // Input error (too few plottable words, unknown word)
	ExitIndexMissing = 5 // Neighbor index not built yet
)
