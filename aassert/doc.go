// Package aassert has assertions that go beyond what stretchr/testify offers.
// The functions follow the design of testify/assert: they report the failure
// on t and return whether the assertion was successful.
package aassert
