package dnsutil

const (
	TCPNetwork = "tcp" // Case is important to dns.Server so having consts here
	UDPNetwork = "udp" // avoids pernickety errors

	MaxUDPSize uint16 = 1232 // Generally suggested as universally safe in edns0

	// MinDNSSECPayload is the smallest EDNS payload which RFC 4035 section 3 permits a
	// server to advertise while serving signed zones.
	MinDNSSECPayload uint16 = 1220

	DefaultTTL uint32 = 3600 // Applied to zone file RRs lacking a TTL and $TTL
)
