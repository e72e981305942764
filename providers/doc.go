// Package providers contains the OAuth2 and OpenID Connect base adapters and
// the generic adapters configured entirely from a provider entry. Provider
// specific adapters live in subpackages and only supply defaults.
package providers
