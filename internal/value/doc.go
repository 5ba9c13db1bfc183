// Package value provides the typed document model shared by every other
// litedocs package.
//
// Value is a sealed interface; the concrete variants are Null, Int32, Int64,
// Double, Decimal, String, Boolean, DateTime, Binary, ObjectID, Guid,
// MinValue, MaxValue, *Document and Array. Code that dispatches on a Value
// uses an exhaustive type switch over those variants.
//
// This package imports nothing internal.
//
// Key constraints:
//   - Document preserves insertion order; overwriting a key keeps its position
//   - DateTime is always UTC with 100ns resolution, years 0001 to 9999
//     (see DateTimeInRange)
//   - Decimal is limited to the 96-bit decimal range (see DecimalInRange)
//   - Equal is kind-exact, Compare orders numbers across numeric kinds
package value
