// Package core holds the configuration model, provider resolution, the adapter
// registry and the collaborator contracts. Adapters and storage backends
// depend on this package; core never depends on them.
package core
