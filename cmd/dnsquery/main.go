package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/dnsscience/dnsasync/config"
	"github.com/dnsscience/dnsasync/query"
	"github.com/dnsscience/dnsasync/resolvconf"
	"github.com/dnsscience/dnsasync/txn"
)

var (
	qtype      = flag.String("type", "A", "Record type: A, AAAA, CNAME, MX, NS, PTR, SRV, SOA, TXT")
	server     = flag.String("server", "", "Nameserver host to query (defaults to the first IPv4 resolv.conf entry, else the first entry)")
	port       = flag.Int("port", 53, "Nameserver port")
	tcp        = flag.Bool("tcp", false, "Use TCP instead of UDP")
	timeout    = flag.Duration("timeout", 5*time.Second, "Per-query timeout")
	configPath = flag.String("config", "", "Optional YAML config file (see config.File)")
)

func main() {
	flag.Parse()

	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                    dnsquery - dnsasync CLI                    ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")
	fmt.Println()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: dnsquery [flags] <name>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	name := flag.Arg(0)

	host := *server
	dialPort := *port
	useTCP := *tcp
	queryTimeout := *timeout

	if *configPath != "" {
		f, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
			os.Exit(1)
		}
		if host == "" && f.Nameserver.Host != "" {
			host = f.Nameserver.Host
			dialPort = f.Nameserver.Port
			useTCP = f.Nameserver.Protocol == "tcp"
		}
		if d, err := f.TimeoutDuration(); err == nil {
			queryTimeout = d
		}
	}

	if host == "" {
		servers, _, err := resolvconf.ParseFile("/etc/resolv.conf")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading resolv.conf: %v\n", err)
			os.Exit(1)
		}
		preferred, ok := resolvconf.Preferred(servers)
		if !ok {
			fmt.Fprintln(os.Stderr, "no usable nameserver found")
			os.Exit(1)
		}
		host = preferred.IP.String()
		dialPort = preferred.Port
	}

	fmt.Printf("Querying:\n")
	fmt.Printf("  Name:       %s\n", name)
	fmt.Printf("  Type:       %s\n", strings.ToUpper(*qtype))
	fmt.Printf("  Server:     %s:%d (%s)\n", host, dialPort, protocolLabel(useTCP))
	fmt.Println()

	c, err := connect(host, dialPort, useTCP)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error connecting: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	if err := run(c, name, strings.ToUpper(*qtype), queryTimeout); err != nil {
		fmt.Fprintf(os.Stderr, "query failed: %v\n", err)
		os.Exit(1)
	}
}

func protocolLabel(useTCP bool) string {
	if useTCP {
		return "tcp"
	}
	return "udp"
}

func connect(host string, port int, useTCP bool) (*txn.Client, error) {
	if useTCP {
		return txn.ConnectTCP(host, port, txn.Config{})
	}
	return txn.Connect(host, port, txn.Config{})
}

func run(c *txn.Client, name, kind string, timeout time.Duration) error {
	ctx := context.Background()
	switch kind {
	case "A":
		ips, err := query.A(ctx, c, name, timeout)
		return printStrings(err, ipStrings(ips))
	case "AAAA":
		ips, err := query.AAAA(ctx, c, name, timeout)
		return printStrings(err, ipStrings(ips))
	case "CNAME":
		recs, err := query.CNAME(ctx, c, name, timeout)
		var out []string
		for _, r := range recs {
			out = append(out, r.Target.String())
		}
		return printStrings(err, out)
	case "MX":
		recs, err := query.MX(ctx, c, name, timeout)
		var out []string
		for _, r := range recs {
			out = append(out, fmt.Sprintf("%d %s", r.Preference, r.Exchange.String()))
		}
		return printStrings(err, out)
	case "NS":
		recs, err := query.NS(ctx, c, name, timeout)
		var out []string
		for _, r := range recs {
			out = append(out, r.NameServer.String())
		}
		return printStrings(err, out)
	case "PTR":
		recs, err := query.PTR(ctx, c, name, timeout)
		var out []string
		for _, r := range recs {
			out = append(out, r.String())
		}
		return printStrings(err, out)
	case "SRV":
		recs, err := query.SRV(ctx, c, name, timeout)
		var out []string
		for _, r := range recs {
			out = append(out, fmt.Sprintf("%d %d %d %s", r.Priority, r.Weight, r.Port, r.Target.String()))
		}
		return printStrings(err, out)
	case "SOA":
		soa, err := query.SOA(ctx, c, name, timeout)
		if err != nil {
			return err
		}
		fmt.Printf("  %s %s %d %d %d %d %d\n", soa.PrimaryNS.String(), soa.Admin.String(),
			soa.Serial, soa.Refresh, soa.Retry, soa.Expire, soa.Minimum)
		return nil
	case "TXT":
		recs, err := query.TXT(ctx, c, name, timeout)
		var out []string
		for _, r := range recs {
			out = append(out, strings.Join(r.Strings, " "))
		}
		return printStrings(err, out)
	default:
		return fmt.Errorf("unsupported type %q", kind)
	}
}

func ipStrings(ips []net.IP) []string {
	out := make([]string, len(ips))
	for i, ip := range ips {
		out[i] = ip.String()
	}
	return out
}

func printStrings(err error, lines []string) error {
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		fmt.Println("  (no records)")
		return nil
	}
	for _, l := range lines {
		fmt.Printf("  %s\n", l)
	}
	return nil
}
