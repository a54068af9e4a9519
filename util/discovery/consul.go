package discovery

import (
	"fmt"

	consulapi "github.com/hashicorp/consul/api"
)

// NewClient connects to the local Consul agent at addr.
func NewClient(addr string) (*consulapi.Client, error) {
	cfg := consulapi.DefaultConfig()
	cfg.Address = addr
	return consulapi.NewClient(cfg)
}

// ServiceURL resolves a registered service to a base URL, preferring healthy
// instances.
func ServiceURL(client *consulapi.Client, name string) (string, error) {
	entries, _, err := client.Health().Service(name, "", true, nil)
	if err != nil {
		return "", fmt.Errorf("consul lookup %q: %w", name, err)
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("no healthy instances of %q", name)
	}
	svc := entries[0].Service
	addr := svc.Address
	if addr == "" {
		addr = entries[0].Node.Address
	}
	return fmt.Sprintf("http://%s:%d", addr, svc.Port), nil
}
