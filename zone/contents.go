package zone

import (
	"fmt"
	"sync/atomic"

	"github.com/miekg/dns"

	"github.com/markdingo/autozone/dnsutil"
)

// If the apex is example.net. and the RR is a.b.example.net. IN A 192.0.2.1, then the
// reference to the RRset is:
//
// rrSet := contents.root.children["b"].children["a"].tm[dns.TypeA]

type typeMap map[uint16][]dns.RR
type labelMap map[string]*node

type node struct {
	tm       typeMap  // Both of these maps are created on-demand so that the
	children labelMap // presence of a map implies at least one map entry.
}

// Contents is the parsed record set of one zone. It is populated single-threaded by a
// Parser, a Journal or a Signer while the owning Zone is unpublished or frozen, and is
// read-only once published.
type Contents struct {
	apex  string // Canonical
	depth int    // Label count of apex
	class uint16
	root  *node // Node of the apex

	soa        *dns.SOA
	count      int // RRs added
	nsec3      int // NSEC3 RRs seen
	nsec3param atomic.Pointer[dns.NSEC3PARAM] // Reloaded while carried-over contents are served

	owner    *Zone
	released atomic.Bool
}

// NewContents *must* be used to construct Contents.
func NewContents(apex string) *Contents {
	apex = dns.CanonicalName(apex)
	return &Contents{apex: apex, depth: dns.CountLabel(apex), class: dns.ClassINET,
		root: &node{}}
}

func (t *Contents) Apex() string {
	return t.apex
}

// AddRR adds a copy of the RR. It returns true if the RR was added and false if it
// duplicates an existing RR. An error is returned for RRs which cannot belong to the zone
// or for a second, different, SOA.
func (t *Contents) AddRR(rr dns.RR) (bool, error) {
	hdr := rr.Header()
	if hdr.Class != t.class {
		return false, fmt.Errorf("%s class %s: %w", hdr.Name, dns.ClassToString[hdr.Class],
			ErrOutOfZone)
	}
	if !dnsutil.InDomain(hdr.Name, t.apex) {
		return false, fmt.Errorf("%s: %w", hdr.Name, ErrOutOfZone)
	}

	if soa, ok := rr.(*dns.SOA); ok {
		if !dnsutil.NameEqual(hdr.Name, t.apex) {
			return false, fmt.Errorf("SOA owner %s is not the apex: %w", hdr.Name, ErrOutOfZone)
		}
		if t.soa != nil {
			if dnsutil.RRIsEqual(t.soa, soa) {
				return false, nil
			}
			return false, ErrMultipleSOA
		}
		t.setSOA(soa)
		t.count++
		return true, nil
	}

	n := t.descend(hdr.Name, true)
	if n.tm == nil {
		n.tm = make(typeMap)
	}
	rrset := n.tm[hdr.Rrtype]
	for _, eRR := range rrset {
		if dnsutil.RRIsEqual(eRR, rr) {
			return false, nil
		}
	}

	// dns.RR is effectively a pointer, so store a copy so callers cannot modify the
	// contents behind our back.
	n.tm[hdr.Rrtype] = append(rrset, dns.Copy(rr))
	t.count++
	if hdr.Rrtype == dns.TypeNSEC3 {
		t.nsec3++
	}

	return true, nil
}

// SetSOA replaces the apex SOA. Journal replay and signing use it to advance the serial.
func (t *Contents) SetSOA(soa *dns.SOA) error {
	if !dnsutil.NameEqual(soa.Hdr.Name, t.apex) {
		return fmt.Errorf("SOA owner %s is not the apex: %w", soa.Hdr.Name, ErrOutOfZone)
	}
	if t.soa == nil {
		t.count++
	}
	t.setSOA(soa)

	return nil
}

func (t *Contents) setSOA(soa *dns.SOA) {
	t.soa = dns.Copy(soa).(*dns.SOA)
	if t.root.tm == nil {
		t.root.tm = make(typeMap)
	}
	t.root.tm[dns.TypeSOA] = []dns.RR{t.soa}
}

// descend returns the node for name, optionally creating the path to it. Name must be
// in-domain of the apex.
func (t *Contents) descend(name string, create bool) *node {
	n := t.root
	for _, label := range dnsutil.ReverseLabels(name)[t.depth:] {
		child := n.children[label]
		if child == nil {
			if !create {
				return nil
			}
			if n.children == nil {
				n.children = make(labelMap)
			}
			child = &node{}
			n.children[label] = child
		}
		n = child
	}

	return n
}

// LookupRR returns copies of the matching RRs. nxDomain is true if there is no node for
// qName. A node is only ever created when there is something to add into it so the
// presence of a node implies RRs or children.
func (t *Contents) LookupRR(qType uint16, qName string) (ans []dns.RR, nxDomain bool) {
	if t.released.Load() || !dnsutil.InDomain(qName, t.apex) {
		return nil, true
	}
	n := t.descend(qName, false)
	if n == nil {
		return nil, true
	}
	for _, rr := range n.tm[qType] {
		ans = append(ans, dns.Copy(rr))
	}

	return ans, false
}

// SOA returns a copy of the apex SOA or nil if there is none.
func (t *Contents) SOA() *dns.SOA {
	if t.soa == nil {
		return nil
	}

	return dns.Copy(t.soa).(*dns.SOA)
}

// Serial returns the SOA serial or zero if there is no SOA.
func (t *Contents) Serial() uint32 {
	if t.soa == nil {
		return 0
	}

	return t.soa.Serial
}

// Count returns the total count of all RRs.
func (t *Contents) Count() int {
	return t.count
}

// IsSigned returns true if the apex carries a DNSKEY RRset.
func (t *Contents) IsSigned() bool {
	return len(t.root.tm[dns.TypeDNSKEY]) > 0
}

// IsNSEC3 returns true if the zone is denial-of-existence signed with NSEC3 or
// advertises that it intends to be.
func (t *Contents) IsNSEC3() bool {
	return t.nsec3 > 0 || len(t.root.tm[dns.TypeNSEC3PARAM]) > 0
}

// LoadNSEC3Param locates the apex NSEC3PARAM used to build NSEC3 chains. A zone with
// NSEC3 RRs must have one, and at least one must use SHA-1 with zero flags as those are
// the only parameters RFC 5155 defines for an authoritative server.
func (t *Contents) LoadNSEC3Param() error {
	rrs := t.root.tm[dns.TypeNSEC3PARAM]
	if len(rrs) == 0 {
		t.nsec3param.Store(nil)
		if t.nsec3 > 0 {
			return fmt.Errorf("%d NSEC3 records without NSEC3PARAM: %w", t.nsec3,
				ErrBadNSEC3Param)
		}
		return nil
	}

	for _, rr := range rrs {
		p := rr.(*dns.NSEC3PARAM)
		if p.Hash == dns.SHA1 && p.Flags == 0 {
			t.nsec3param.Store(p)
			return nil
		}
	}
	t.nsec3param.Store(nil)

	return fmt.Errorf("no SHA-1 NSEC3PARAM with zero flags: %w", ErrBadNSEC3Param)
}

// NSEC3Param returns the parameters found by LoadNSEC3Param, if any.
func (t *Contents) NSEC3Param() *dns.NSEC3PARAM {
	return t.nsec3param.Load()
}

// Release drops the record tree. It must only be called once no reader can reach the
// Contents.
func (t *Contents) Release() {
	if t.released.Swap(true) {
		return
	}
	t.root = &node{}
	t.soa = nil
	t.nsec3param.Store(nil)
	t.owner = nil
}

func (t *Contents) Released() bool {
	return t.released.Load()
}
