/*
Package ports defines the driven ports (interfaces) for the Tiller engine.

These interfaces decouple the preparation pipeline from external
implementations, allowing the engine to work with different inventories,
transports and state backends.

# Key Interfaces

  - TargetResolver: expands a target spec into concrete Targets.
  - TaskResolver: resolves well-known tasks by name and validates arguments.
  - TaskRunner: executes one task against many targets in a single batch.
  - FeatureStore / FactStore: shared per-target state written during a run.
  - Transport: reports the capability set of a transport kind.
  - PayloadBuilder: packages the bundle shipped with the facts task.
*/
package ports
