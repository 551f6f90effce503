// Package logging provides opt-in file-based logging with rotation for ra.
// When the --debug flag is set, structured logs are written to ~/.ra/logs/.
package logging
