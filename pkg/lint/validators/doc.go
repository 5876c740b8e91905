// Package validators provides the built-in link validators for mdlinks.
//
// Validators register themselves with lint.DefaultRegistry during init, in
// this order:
//
//   - empty-target: link targets must not be blank
//
//   - file-target: local targets must exist, with the trailing '/' parity rule
//
//   - anchor: fragments into the current document must be declared
//
//   - cross-file-anchor: fragments into other Markdown files must be declared there
//
//   - member: fragments into Go sources must name a declared member
//
//   - url: network targets must be reachable
//
//   - reference-label: reference links need a definition
//
//   - anchor-declaration: heading anchors must be well formed and unique
//
//   - task-marker: task tags in Go comments are reported
package validators
