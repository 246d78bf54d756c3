/*
Package database holds one generation of served zones and publishes generations to
concurrent readers.

A Database is built single-threaded, or under the caller's own mutex, by the reload
engine:

	db := database.New()
	for ... {
	    err := db.Insert(z)
	}
	db.BuildIndex()

Once handed to Getter.Replace the zone map belongs to the reload engine alone and
readers go through the index:

	db := getter.Acquire()
	z := db.FindClosest(qName)
	...
	getter.Release(db)

Acquire and Release are lock-free. Each generation counts the readers holding it, and
Getter.Synchronize waits for a replaced generation's count to drain to zero. Only then
may the zones it alone references be retired and their contents released.
*/
package database
