// Package iocli abstracts terminal input and output for CLI commands.
package iocli

// IO is the console used by commands
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	// ReadPassword reads without echo when input is a terminal
	ReadPassword(prompt string) (string, error)
	Write(p []byte) (n int, err error)
}
