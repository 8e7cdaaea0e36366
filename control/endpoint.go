package control

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// loopback is the fallback endpoint when no control interface is configured.
const loopback = "127.0.0.1"

// ResolveEndpoint turns a server specification into the one address this
// invocation will contact. An explicit spec takes the form "addr" or
// "addr@port"; when it is empty, the first configured control interface is
// used, else loopback. Only literal IP addresses are accepted, hostnames are
// not resolved. Failures are reported as *AddressError, before any network
// I/O.
func ResolveEndpoint(explicit string, controlIfs []string, defaultPort uint16) (netip.AddrPort, error) {
	spec := strings.TrimSpace(explicit)
	if spec == "" {
		if len(controlIfs) > 0 {
			spec = strings.TrimSpace(controlIfs[0])
		} else {
			spec = loopback
		}
	}

	if host, portStr, found := strings.Cut(spec, "@"); found {
		addr, err := netip.ParseAddr(host)
		if err != nil {
			return netip.AddrPort{}, &AddressError{Input: spec, Err: err}
		}
		port, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil {
			return netip.AddrPort{}, &AddressError{
				Input: spec,
				Err:   fmt.Errorf("invalid port %q", portStr),
			}
		}
		if port == 0 {
			return netip.AddrPort{}, &AddressError{Input: spec, Err: errors.New("port must be nonzero")}
		}
		return netip.AddrPortFrom(addr, uint16(port)), nil
	}

	addr, err := netip.ParseAddr(spec)
	if err != nil {
		return netip.AddrPort{}, &AddressError{Input: spec, Err: err}
	}
	return netip.AddrPortFrom(addr, defaultPort), nil
}
