package domain

// Well-known names shared between the engine and task/runner implementations.
const (
	// FeatureAgent marks a target as carrying the required remote agent.
	FeatureAgent = "tiller.agent"

	// TaskProbeVersion is the task that reports the installed agent version.
	TaskProbeVersion = "agent.version"

	// TaskCollectFacts is the task that collects system facts in one batch.
	TaskCollectFacts = "facts.collect"

	// ResultKeyVersion is the result payload key holding the probed version.
	// An empty or absent value means no agent is installed.
	ResultKeyVersion = "version"

	// ArgFactsPayload is the task argument key carrying the facts bundle.
	ArgFactsPayload = "payload"
)
