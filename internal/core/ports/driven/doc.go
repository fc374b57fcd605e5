// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports). The linkage engine depends only on these
// interfaces, never on whether a backend actually initialised, which keeps
// the fallback cascade testable without real models or network access.
package driven
