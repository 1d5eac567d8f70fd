package net

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

const ServiceType = "_sketchboard._tcp"

func newService(instance string, port int, ips []net.IP) (*mdns.MDNSService, error) {
	svc, err := mdns.NewMDNSService(instance, ServiceType, "", "", port, ips, []string{"SketchBoard live view", "path=/live"})
	if err != nil {
		return nil, fmt.Errorf("create mdns service: %w", err)
	}
	return svc, nil
}

// Advertise announces the live view on port under the host name. Shut the
// returned server down to withdraw it.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}
	svc, err := newService(host, port, nil)
	if err != nil {
		return nil, err
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: svc})
	if err != nil {
		return nil, fmt.Errorf("start mdns server: %w", err)
	}
	return server, nil
}

// Discover queries the LAN for advertised boards and calls found with the
// share link of each one that answers within timeout.
func Discover(timeout time.Duration, found func(link string)) error {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			found(ShareLink(e.AddrV4.String(), e.Port))
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)
	<-done
	if err != nil {
		return fmt.Errorf("mdns query: %w", err)
	}
	return nil
}
