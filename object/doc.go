// Package object implements the structured values that reflection and
// interception act on.
//
// This package contains:
//   - The Value representation and the Undefined sentinel
//   - Objects with ordered fields, stored or accessor-backed
//   - Swappable type-links (prototypes) with cycle rejection
//   - Function objects with call and construct contracts
//   - The Target contract shared with proxies
//   - Console-style formatting
package object
