// Package resolve turns a hostname into an address to dial, trying a
// direct DNS query before falling back to the system resolver.
package resolve

import (
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

// DefaultDNSTimeout bounds a single query to a configured resolver.
const DefaultDNSTimeout = 2 * time.Second

// Resolver looks up the IPv4 address of a hostname. A literal IPv4 address
// is returned unchanged without touching the network.
type Resolver struct {
	// Server is the DNS server to query, in host:port form (e.g.
	// "1.1.1.1:53"). If empty, Resolve skips straight to the system
	// resolver.
	Server string
}

// Resolve returns the first IPv4 address for host.
func (r Resolver) Resolve(host string) (net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			return v4, nil
		}
		return nil, fmt.Errorf("resolve: %s is not an IPv4 address", host)
	}

	if r.Server != "" {
		if ip, err := r.queryDNS(host); err == nil {
			return ip, nil
		}
	}

	addrs, err := net.LookupIP(host)
	if err != nil {
		return nil, fmt.Errorf("resolve: looking up %s: %w", host, err)
	}
	for _, addr := range addrs {
		if v4 := addr.To4(); v4 != nil {
			return v4, nil
		}
	}
	return nil, fmt.Errorf("resolve: %s has no IPv4 address", host)
}

// queryDNS issues a single A-record query against r.Server.
func (r Resolver) queryDNS(host string) (net.IP, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), dns.TypeA)
	msg.RecursionDesired = true

	client := &dns.Client{Timeout: DefaultDNSTimeout}
	reply, _, err := client.Exchange(msg, r.Server)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", r.Server, err)
	}
	if reply.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("querying %s: rcode %s", r.Server, dns.RcodeToString[reply.Rcode])
	}

	for _, rr := range reply.Answer {
		if a, ok := rr.(*dns.A); ok {
			return a.A, nil
		}
	}
	return nil, fmt.Errorf("no A record for %s from %s", host, r.Server)
}
