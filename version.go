package dali

// Version is the interpreter release, reported by the CLI and the REPL
// banner.
const Version = "0.3.0"
