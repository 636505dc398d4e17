package sysquery

import (
	"context"
	"fmt"
	"sort"
	"strings"

	psnet "github.com/shirou/gopsutil/v3/net"
)

// Ipconfig lists network interfaces with their addresses.
func Ipconfig(ctx context.Context, _ string) (string, error) {
	ifaces, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("list interfaces: %w", err)
	}
	var b strings.Builder
	b.WriteString("IP Configuration\n")
	for _, iface := range ifaces {
		fmt.Fprintf(&b, "\nAdapter %s:\n", iface.Name)
		if iface.HardwareAddr != "" {
			fmt.Fprintf(&b, "   Physical Address . . . . : %s\n", iface.HardwareAddr)
		}
		fmt.Fprintf(&b, "   Status . . . . . . . . . : %s\n", interfaceStatus(iface.Flags))
		if len(iface.Addrs) == 0 {
			b.WriteString("   (no addresses)\n")
		}
		for _, addr := range iface.Addrs {
			label := "IPv4 Address"
			if strings.Contains(addr.Addr, ":") {
				label = "IPv6 Address"
			}
			fmt.Fprintf(&b, "   %-12s . . . . . : %s\n", label, addr.Addr)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func interfaceStatus(flags []string) string {
	for _, flag := range flags {
		if flag == "up" {
			return "Up"
		}
	}
	return "Media disconnected"
}

// Netstat lists TCP connections.
func Netstat(ctx context.Context, _ string) (string, error) {
	conns, err := psnet.ConnectionsWithContext(ctx, "tcp")
	if err != nil {
		return "", fmt.Errorf("list connections: %w", err)
	}
	sort.SliceStable(conns, func(i, j int) bool {
		if conns[i].Laddr.Port != conns[j].Laddr.Port {
			return conns[i].Laddr.Port < conns[j].Laddr.Port
		}
		return conns[i].Raddr.Port < conns[j].Raddr.Port
	})
	var b strings.Builder
	b.WriteString("Active Connections\n\n")
	fmt.Fprintf(&b, "  %-6s %-28s %-28s %s\n", "Proto", "Local Address", "Foreign Address", "State")
	for _, c := range conns {
		fmt.Fprintf(&b, "  %-6s %-28s %-28s %s\n", "TCP", endpoint(c.Laddr), endpoint(c.Raddr), strings.ToUpper(c.Status))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func endpoint(addr psnet.Addr) string {
	ip := addr.IP
	if ip == "" {
		ip = "*"
	}
	if strings.Contains(ip, ":") {
		ip = "[" + ip + "]"
	}
	return fmt.Sprintf("%s:%d", ip, addr.Port)
}
