// Package nat maps the node's listening port through a home-router gateway
// so inbound dials can reach it from outside a NAT, trying UPnP first and
// falling back to NAT-PMP. Neither protocol is required: Discover returning
// an error just means the node is reachable only via outbound dials.
package nat

import (
	"fmt"
	"net"
	"time"

	"github.com/huin/goupnp/dcps/internetgateway2"
	natpmp "github.com/jackpal/go-nat-pmp"
)

// Interface is satisfied by both the UPnP and NAT-PMP backends.
type Interface interface {
	AddMapping(protocol string, extPort, intPort int, description string, lifetime time.Duration) error
	DeleteMapping(protocol string, extPort int) error
	ExternalIP() (net.IP, error)
}

// upnpNAT wraps an Internet Gateway Device's WANIPConnection service,
// discovered via SSDP.
type upnpNAT struct {
	client *internetgateway2.WANIPConnection1
}

func (u *upnpNAT) AddMapping(protocol string, extPort, intPort int, description string, lifetime time.Duration) error {
	localIP, err := localIPv4()
	if err != nil {
		return err
	}
	return u.client.AddPortMapping("", uint16(extPort), protocol, uint16(intPort), localIP.String(), true, description, uint32(lifetime/time.Second))
}

func (u *upnpNAT) DeleteMapping(protocol string, extPort int) error {
	return u.client.DeletePortMapping("", uint16(extPort), protocol)
}

func (u *upnpNAT) ExternalIP() (net.IP, error) {
	s, err := u.client.GetExternalIPAddress()
	if err != nil {
		return nil, err
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, fmt.Errorf("nat: gateway returned invalid IP %q", s)
	}
	return ip, nil
}

// pmpNAT wraps a NAT-PMP capable gateway.
type pmpNAT struct {
	client *natpmp.Client
}

func (p *pmpNAT) AddMapping(protocol string, extPort, intPort int, description string, lifetime time.Duration) error {
	_, err := p.client.AddPortMapping(protocol, intPort, extPort, int(lifetime/time.Second))
	return err
}

func (p *pmpNAT) DeleteMapping(protocol string, extPort int) error {
	_, err := p.client.AddPortMapping(protocol, extPort, 0, 0)
	return err
}

func (p *pmpNAT) ExternalIP() (net.IP, error) {
	resp, err := p.client.GetExternalAddress()
	if err != nil {
		return nil, err
	}
	a := resp.ExternalIPAddress
	return net.IPv4(a[0], a[1], a[2], a[3]), nil
}

// Discover probes for a UPnP Internet Gateway Device first; if none answers
// it falls back to NAT-PMP against gatewayIP.
func Discover(gatewayIP net.IP) (Interface, error) {
	clients, _, err := internetgateway2.NewWANIPConnection1Clients()
	if err == nil && len(clients) > 0 {
		return &upnpNAT{client: clients[0]}, nil
	}
	client := natpmp.NewClient(gatewayIP)
	if _, err := client.GetExternalAddress(); err != nil {
		return nil, fmt.Errorf("nat: no UPnP or NAT-PMP gateway found: %w", err)
	}
	return &pmpNAT{client: client}, nil
}

func localIPv4() (net.IP, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, err
	}
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if v4 := ipnet.IP.To4(); v4 != nil {
				return v4, nil
			}
		}
	}
	return nil, fmt.Errorf("nat: no non-loopback IPv4 address found")
}
