// Package urlcheck decides whether a link target with a network scheme is
// reachable.
//
// Checkers form a responsibility chain: the first checker whose Responsible
// method accepts a URL performs the check and no other checker runs.
// Plug-in checkers are consulted before the built-in ones.
package urlcheck
