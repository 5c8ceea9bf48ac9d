/*
Package tiller prepares remote targets for management: it makes sure every
target runs the management agent, then collects structured facts from all of
them in a single batched pass.

It follows a hexagonal architecture. The core pipeline (detect, probe,
install, gather facts) lives in the internal runtime and talks to the outside
world only through ports: a target resolver, a task runner, stores for
features and facts, and an install strategy registry. Adapters for YAML
inventories, SSH transport, in-memory and Redis stores ship in pkg/adapters.

# Pipeline

Given a target spec ("all", a group name or a host name), Prepare:

  - partitions targets into already-prepared and unknown
  - probes the unknown ones for an existing agent version
  - installs the agent on the rest through a bounded worker pool
  - collects facts from the full target list in one batched call

Each phase fails as an aggregate: a failed probe runs no installs, a failed
install collects no facts. Targets that individually succeeded keep their
recorded state, so a retry only redoes the failed part.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/tiller"
		"github.com/aretw0/tiller/pkg/adapters/ssh"
	)

	func main() {
		runner := ssh.NewRunner(ssh.Config{User: "ops"})

		eng, err := tiller.New("inventory.yml", tiller.WithTaskRunner(runner))
		if err != nil {
			log.Fatal(err)
		}

		if err := eng.Prepare(context.Background(), "all"); err != nil {
			log.Fatal(err)
		}
	}
*/
package tiller
