// Package extension provides the run-time registry of task types. A
// descriptor names its task by Go type; since Go cannot load code from the
// descriptor itself, every task type must be registered here (directly, or by
// a plugin found on the resolution scope) before the runner decodes it.
package extension
