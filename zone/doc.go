/*
Package zone holds a single served zone: its configuration, its parsed records (Contents)
and the small state machine which lets the reload engine take a zone out of service
without racing the timers and maintenance operations running against it.

A Zone moves through Active, Freezing, Frozen and Retired. Maintenance work brackets
itself with BeginOp/EndOp and is refused once a Freeze has started. Freeze returns once
every in-flight operation has ended, after which the Contents may be moved to a successor
with MoveContents or the zone retired. A Contents is owned by at most one Zone at a time.

Readers answering queries do not use the state machine. They read Serving(), which
survives MoveContents, and are protected by the database generation they acquired, which
is never retired while they hold it.
*/
package zone
