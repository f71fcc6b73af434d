/*
Package schema defines the two documents exchanged with the game engine's
agent bridge: the state Snapshot the engine publishes once per internal tick,
and the command Batch the controller submits.

Field groups on the Snapshot are pointers and present iff the current context
requires them; absence means "not applicable", never "unknown". The Snapshot
is superseded on every publisher tick and must not be cached across waits.
*/
package schema
