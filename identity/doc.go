/*
Package identity resolves and carries the acting user for audited writes.

A Principal is built from a claims map (or a parsed golang-jwt token): the
stable subject id comes from the "sub" claim with "oid" as fallback, and the
username from the first non-empty of "preferred_username", "upn", "username"
and "email". Both are mandatory; resolution fails with
errors.ErrMissingIdentity otherwise.

The principal travels with the request via WithPrincipal/PrincipalFrom, and
the correlation id via WithTraceID/TraceIDFrom, which also understands
OpenTelemetry span contexts. Nothing in this package is process-global.
*/
package identity
