// Package testsupport holds test builders shared across packages.
package testsupport
