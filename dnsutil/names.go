package dnsutil

import (
	"strings"

	"github.com/miekg/dns"
)

// NameEqual returns true if both names refer to the same owner. Comparison is case
// insensitive and tolerant of a missing trailing dot, but otherwise exact: no suffix
// or wildcard matching.
func NameEqual(a, b string) bool {
	return dns.CanonicalName(a) == dns.CanonicalName(b)
}

// ChompCanonicalName makes a name canonical but loses the trailing dot. For logging and
// file names the trailing dot is more of a hinderance than a help.
func ChompCanonicalName(n string) string {
	n = dns.CanonicalName(n)
	if len(n) > 1 && n[len(n)-1] == '.' {
		n = n[:len(n)-1]
	}

	return n
}

// InDomain returns true if the purported sub-domain is in-domain of the parent
// domain. Both names are made canonical before comparison. The parent may or may not
// have a leading "." as that is common in configuration files.
func InDomain(sub, parent string) bool {
	if len(parent) == 0 || parent == "." { // Root?
		return true
	}

	parent = strings.TrimPrefix(dns.CanonicalName(parent), ".")
	sub = dns.CanonicalName(sub)
	if sub == parent {
		return true
	}

	return strings.HasSuffix(sub, "."+parent)
}

// ReverseLabels returns the canonical labels of name ordered from the root downwards,
// which is the order the zone indexes descend. The root itself has no labels.
func ReverseLabels(name string) []string {
	labels := dns.SplitDomainName(dns.CanonicalName(name))
	for i, j := 0, len(labels)-1; i < j; i, j = i+1, j-1 {
		labels[i], labels[j] = labels[j], labels[i]
	}

	return labels
}
