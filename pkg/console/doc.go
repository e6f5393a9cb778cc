// Package console implements the interactive command line of a device
// session.
//
// Lines starting with "." are built in commands (see HelpText); every other
// line is Lua sent to the device, and the console waits for its reply
// before prompting again.
package console
