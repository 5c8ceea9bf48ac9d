/*
Package domain contains the core value types of the Tiller engine.

These types are shared between the runtime, the ports and all adapters:

  - Target: a remote endpoint to be prepared.
  - Task: a named remote operation with a parameter schema.
  - Result / ResultSet: per-target outcomes and their ordered aggregate.
  - RunError: an aggregate phase failure naming the failing targets.
  - LifecycleHooks: observability callbacks emitted by the engine.

The package has no dependencies outside the standard library so that any
host can import it without pulling in the engine.
*/
package domain
