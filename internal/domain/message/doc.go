// Package message routes requests posted by embedded sub-applications to
// the shell document.
//
// Messages form a closed set decoded from a {"type": ...} envelope:
//
//	open_app           {"type":"open_app","appId":"notes","path":"doc/1"}
//	link_clicked       {"type":"link_clicked","href":"/apps/notes"}
//	host_link_clicked  {"type":"host_link_clicked","href":"/notes/doc/1"}
//
// Anything else is rejected with ErrUnknownKind.
//
// Origin Policy:
//
// A message is acted on only when its origin is the shell origin, the
// trusted sibling origin ({label}.{host}), or a sibling subdomain with the
// same scheme, port and registrable domain (last two labels). When the
// shell runs on a local development host, the host itself and any of its
// subdomains are accepted. Rejected messages are logged and dropped.
//
// Catalog ids are matched by suffix: a requested id resolves only when
// exactly one catalog id ends with ":" + requested.
package message
