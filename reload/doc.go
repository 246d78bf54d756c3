/*
Package reload rebuilds the complete set of served zones and publishes it without
blocking readers.

A reload cycle classifies every configured zone by comparing its file's modification time
with the instance currently served, then bootstraps, parses or carries over the zone
contents accordingly. Each resulting zone passes through journal replay, signing and
DNSSEC consistency checks before it is inserted into a new database. Zones are processed
by a fixed pool of workers.

The new database is published with a single atomic pointer exchange. Zones of the
previous generation are retired, and their contents released, only after every reader
which acquired that generation has released it.

A zone which fails is logged and left out of the new generation while the other zones
proceed. A fatal error abandons the whole cycle and leaves the previous generation in
service exactly as it was.
*/
package reload
