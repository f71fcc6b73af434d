/*
Package overseer drives a running game engine through a file-based bridge:
the engine publishes a JSON state snapshot once per logical tick and consumes
JSON command batches from the same directory.

The controller never shares memory with the engine. Everything it knows comes
from the latest snapshot, and everything it does goes through a command batch
with exactly one batch outstanding at a time. The engine's tick counter is the
only clock: waits are bounded in snapshot attempts, never in wall time.

# Architecture

A Session owns all cross-call state. It runs one background poller that reads
snapshots at a fixed cadence and broadcasts them to whoever is waiting; the
control loops (navigation, combat, dialogue) are built on those wait
primitives and return coded outcomes instead of failing.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/overseer"
	)

	func main() {
		cfg := overseer.DefaultConfig()
		cfg.GameDir = "/path/to/game"

		sess, err := overseer.New(cfg)
		if err != nil {
			log.Fatal(err)
		}
		defer sess.Close()

		ctx := context.Background()
		sess.Start(ctx)

		report, err := sess.Navigator.MoveTo(ctx, 12502)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("move ended: %s", report.Outcome)
	}
*/
package overseer
