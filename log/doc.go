/*
Package log provides global output control across the whole application. Logging comes in
four levels: Silent, Major, Minor and Debug with each level more detailed than the
previous. Levels are inclusive, so, e.g., if MinorLevel is set that implies MajorLevel
logging.

Warningf and Errorf carry a severity prefix and are emitted at every level, Silent included. They
are what the reload engine uses to report per-zone failures and aborted reloads.

If a formatted string contains multiple lines they are all printed with the prefix for the
logging level. A trailing newline is not needed and excess ones are trimmed.

All writes are serialized so that concurrent zone loaders cannot interleave partial
lines. Specialist output external to this package should use Printf, or log.Out() when an
io.Writer is needed, so tests can capture it with SetOut.
*/
package log
