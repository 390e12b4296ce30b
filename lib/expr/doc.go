// Package expr implements the small expression language used by declarative
// markup bindings.
//
// Attribute values such as
//
//	data-content="resultsCount + ' results'"
//	data-href="this.channel.url"
//	data-content="numPages > 1 ? currentPageIndex + ' / ' + numPages : ''"
//
// are compiled by Parse into a Program and evaluated against a Scope. The
// language is deliberately restricted: literals, identifiers, member and index
// access, unary and binary operators, the conditional operator and
// parentheses. There are no calls and no assignments, so evaluating markup can
// never run host code.
//
// # Identifier resolution
//
// The identifier this refers to Scope.This and locals to Scope.Locals. Any
// other identifier is looked up as a property of Scope.This, then of
// Scope.Locals, then of Scope.Globals. An identifier found nowhere is a
// *ReferenceError.
//
// # Values
//
// Values are plain Go values. nil is null and Undefined is undefined. Maps
// with string keys, structs (by field name, json tag or lower camel name),
// slices, arrays and strings support property access; types that need full
// control implement Getter. Arithmetic works on float64, + concatenates when
// either side is not a number, && and || return one of their operands, and ==
// coerces between numbers and strings.
package expr
