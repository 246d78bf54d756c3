package zone

import (
	"fmt"
	"os"

	"github.com/miekg/dns"

	"github.com/markdingo/autozone/dnsutil"
	"github.com/markdingo/autozone/log"
)

// FileParser parses RFC 1035 master files with the miekg zone parser.
type FileParser struct {
	DefaultTTL   uint32 // Applied in the absence of $TTL. Zero means dnsutil.DefaultTTL
	AllowInclude bool   // Honour $INCLUDE
}

// Parse reads path with origin as the initial $ORIGIN. The apex of the returned Contents
// is the owner of the SOA, which is not necessarily origin. Comparing the two is left to
// the caller.
func (t *FileParser) Parse(path, origin string) (*Contents, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ttl := t.DefaultTTL
	if ttl == 0 {
		ttl = dnsutil.DefaultTTL
	}

	parser := dns.NewZoneParser(f, dns.CanonicalName(origin), path)
	parser.SetIncludeAllowed(t.AllowInclude)
	parser.SetDefaultTTL(ttl) // ZoneParser needs this in case $TTL is absent

	var c *Contents
	var dups int
	for rr, ok := parser.Next(); ok; rr, ok = parser.Next() {
		if c == nil { // First RR must be the SOA and defines the apex
			soa, isSOA := rr.(*dns.SOA)
			if !isSOA {
				return nil, fmt.Errorf("%s: first record is %s not SOA: %w", path,
					dns.TypeToString[rr.Header().Rrtype], ErrNoSOA)
			}
			c = NewContents(soa.Hdr.Name)
		}
		added, err := c.AddRR(rr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if !added {
			dups++
		}
	}
	if err := parser.Err(); err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoSOA)
	}
	if dups > 0 {
		log.Debugf("%s: %d duplicate RRs ignored", path, dups)
	}

	return c, nil
}
