package dnsutil

import (
	"github.com/miekg/dns"
)

// RRIsEqual returns true if the RRs are "effectively" identical. That means they are
// identical excepting for TTL, and owner names compare case-insensitively. Zone files
// commonly repeat RRs via $INCLUDE so the zone loader uses this to suppress duplicates.
func RRIsEqual(a, b dns.RR) bool {
	return dns.IsDuplicate(a, b)
}
