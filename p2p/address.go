package p2p

import (
	"net"
	"strconv"
	"strings"

	beaconerrors "github.com/beacon-network/beacon/errors"
)

// ValidateAddress rejects loopback, multicast, broadcast, IPv6
// multicast/loopback, and port-0 addresses from being advertised or dialed
// as peer addresses.
func ValidateAddress(hostport string) error {
	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		return beaconerrors.Newf(beaconerrors.Network, "invalid address %q: %v", hostport, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return beaconerrors.Newf(beaconerrors.Network, "invalid port in %q", hostport)
	}
	if port == 0 {
		return beaconerrors.New(beaconerrors.Network, "port 0 is not a valid peer address")
	}
	ip := net.ParseIP(strings.Trim(host, "[]"))
	if ip == nil {
		return nil // hostname, not an IP literal; nothing further to check
	}
	switch {
	case ip.IsLoopback():
		return beaconerrors.New(beaconerrors.Network, "loopback address is not a valid peer address")
	case ip.IsMulticast():
		return beaconerrors.New(beaconerrors.Network, "multicast address is not a valid peer address")
	case ip.Equal(net.IPv4bcast):
		return beaconerrors.New(beaconerrors.Network, "broadcast address is not a valid peer address")
	case ip.IsInterfaceLocalMulticast():
		return beaconerrors.New(beaconerrors.Network, "interface-local multicast address is not a valid peer address")
	}
	return nil
}
