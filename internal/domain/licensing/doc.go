// Package licensing contains the license domain model: plans and their quota
// ceilings, serial generation and validation, and the license state machine
// that binds a license to exactly one tenant.
package licensing
