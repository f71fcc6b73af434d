/*
Package ports defines the driven ports (interfaces) of the Overseer core.

These interfaces decouple the control loops from concrete transports and
sinks, allowing the bridge to be backed by the real game directory or by the
in-memory test publisher, and the journal by the filesystem or Redis.
*/
package ports
