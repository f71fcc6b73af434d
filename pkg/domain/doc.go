/*
Package domain defines the core vocabulary of the Overseer controller.

It contains the closed set of game modes derived from state snapshots, the
outcome codes shared by every control loop, tile arithmetic, and the sentinel
errors of the bridge protocol. The package has no dependencies outside the
standard library so that every layer (schema, bridge, control loops, adapters)
can speak it.
*/
package domain
