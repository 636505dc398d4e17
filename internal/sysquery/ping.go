package sysquery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"

	"pkt.systems/termclock/schema"
)

const protocolICMP = 1

// Pinger sends ICMP echo requests to an IPv4 host.
type Pinger struct {
	Count    int
	Timeout  time.Duration
	Interval time.Duration
	// Resolver defaults to net.DefaultResolver.
	Resolver *net.Resolver
}

// Run pings the host named by the first word of arg.
func (p Pinger) Run(ctx context.Context, arg string) (string, error) {
	fields := strings.Fields(arg)
	if len(fields) == 0 {
		return "", schema.ErrMissingArgument
	}
	host := fields[0]
	ip, err := p.resolve(ctx, host)
	if err != nil {
		return "", err
	}
	conn, network, err := listenICMP()
	if err != nil {
		return "", fmt.Errorf("open ICMP socket: %w", err)
	}
	defer func() { _ = conn.Close() }()

	lines := []string{fmt.Sprintf("Pinging %s [%s] with 32 bytes of data:", host, ip)}
	count := p.Count
	if count <= 0 {
		count = defaultPingCount
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	id := os.Getpid() & 0xffff
	payload := []byte("termclock echo payload 32 bytes!")
	var dst net.Addr = &net.IPAddr{IP: ip}
	if network == "udp4" {
		dst = &net.UDPAddr{IP: ip}
	}
	for seq := 1; seq <= count; seq++ {
		if err := ctx.Err(); err != nil {
			return strings.Join(lines, "\n"), err
		}
		rtt, from, err := echo(conn, dst, id, seq, payload, timeout)
		switch {
		case err == nil:
			lines = append(lines, fmt.Sprintf("Reply from %s: bytes=%d time=%dms", from, len(payload), rtt.Milliseconds()))
		case isTimeout(err):
			lines = append(lines, "Request timed out.")
		default:
			return strings.Join(lines, "\n"), err
		}
		if seq < count && p.Interval > 0 {
			select {
			case <-ctx.Done():
				return strings.Join(lines, "\n"), ctx.Err()
			case <-time.After(p.Interval):
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (p Pinger) resolve(ctx context.Context, host string) (net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			return v4, nil
		}
		return nil, fmt.Errorf("%w: %s (IPv4 only)", schema.ErrHostNotResolved, host)
	}
	resolver := p.Resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	addrs, err := resolver.LookupIP(ctx, "ip4", host)
	if err != nil || len(addrs) == 0 {
		return nil, fmt.Errorf("%w: %s", schema.ErrHostNotResolved, host)
	}
	return addrs[0].To4(), nil
}

// listenICMP prefers an unprivileged datagram socket and falls back to a raw one.
func listenICMP() (*icmp.PacketConn, string, error) {
	conn, err := icmp.ListenPacket("udp4", "0.0.0.0")
	if err == nil {
		return conn, "udp4", nil
	}
	raw, rawErr := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if rawErr != nil {
		return nil, "", errors.Join(err, rawErr)
	}
	return raw, "ip4:icmp", nil
}

func echo(conn *icmp.PacketConn, dst net.Addr, id, seq int, payload []byte, timeout time.Duration) (time.Duration, string, error) {
	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{ID: id, Seq: seq, Data: payload},
	}
	wire, err := msg.Marshal(nil)
	if err != nil {
		return 0, "", fmt.Errorf("marshal echo: %w", err)
	}
	start := time.Now()
	deadline := start.Add(timeout)
	if err := conn.SetDeadline(deadline); err != nil {
		return 0, "", fmt.Errorf("set deadline: %w", err)
	}
	if _, err := conn.WriteTo(wire, dst); err != nil {
		return 0, "", fmt.Errorf("send echo: %w", err)
	}
	buf := make([]byte, 1500)
	for {
		n, peer, err := conn.ReadFrom(buf)
		if err != nil {
			return 0, "", err
		}
		reply, err := icmp.ParseMessage(protocolICMP, buf[:n])
		if err != nil || reply.Type != ipv4.ICMPTypeEchoReply {
			continue
		}
		body, ok := reply.Body.(*icmp.Echo)
		if !ok || body.Seq != seq {
			continue
		}
		return time.Since(start), peerIP(peer), nil
	}
}

func peerIP(addr net.Addr) string {
	switch a := addr.(type) {
	case *net.UDPAddr:
		return a.IP.String()
	case *net.IPAddr:
		return a.IP.String()
	default:
		return addr.String()
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
