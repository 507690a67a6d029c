// Package resolvconf parses the minimal subset of resolv.conf syntax this
// library cares about: nameserver lines. It never interprets search lists,
// options, or sortlist directives (spec.md §4.2 scopes those out).
package resolvconf

import (
	"bufio"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/dnsscience/dnsasync/errkind"
)

// DefaultPort is used for every nameserver line; resolv.conf has no syntax
// for a non-standard port.
const DefaultPort = 53

// EnvNameservers, when set, is a comma-separated list of "host[:port]"
// entries consulted by FromEnvironment — a supplement to file-based
// discovery for containerized or test environments that have no
// /etc/resolv.conf.
const EnvNameservers = "DNSASYNC_NAMESERVERS"

// Server is one resolved nameserver endpoint.
type Server struct {
	IP   net.IP
	Port int
}

// Warning describes a malformed line that was skipped rather than treated
// as fatal.
type Warning struct {
	Line int
	Text string
}

func (w Warning) String() string {
	return "resolvconf: line " + strconv.Itoa(w.Line) + ": skipped: " + w.Text
}

// Parse reads nameserver lines from r. Malformed IPs are skipped with a
// Warning rather than aborting the parse; Parse only returns an error if r
// itself cannot be read, or if the file contains not a single usable
// nameserver entry (errkind.NoNameservers).
func Parse(r io.Reader) ([]Server, []Warning, error) {
	var servers []Server
	var warnings []Warning

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "nameserver" {
			continue
		}
		ip := net.ParseIP(fields[1])
		if ip == nil {
			warnings = append(warnings, Warning{Line: lineNo, Text: fields[1]})
			continue
		}
		servers = append(servers, Server{IP: ip, Port: DefaultPort})
	}
	if err := scanner.Err(); err != nil {
		return nil, warnings, errkind.New(errkind.ConfigParse, "resolvconf.Parse", err)
	}
	if len(servers) == 0 {
		return nil, warnings, errkind.New(errkind.NoNameservers, "resolvconf.Parse", nil)
	}
	return servers, warnings, nil
}

// ParseFile opens path and parses it, wrapping an open failure in
// errkind.ConfigParse.
func ParseFile(path string) ([]Server, []Warning, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errkind.New(errkind.ConfigParse, "resolvconf.ParseFile", err)
	}
	defer f.Close()
	return Parse(f)
}

// FromEnvironment reads EnvNameservers as a comma-separated "host[:port]"
// list, a supplement to file parsing for environments without a resolv.conf
// (spec.md §9 treats the config source as an injected value; this is one
// more injector, not a replacement for ParseFile).
func FromEnvironment() ([]Server, error) {
	raw := os.Getenv(EnvNameservers)
	if raw == "" {
		return nil, errkind.New(errkind.NoNameservers, "resolvconf.FromEnvironment", nil)
	}
	var servers []Server
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		host, portStr, err := net.SplitHostPort(entry)
		port := DefaultPort
		if err != nil {
			host = entry
		} else if p, perr := strconv.Atoi(portStr); perr == nil {
			port = p
		}
		ip := net.ParseIP(host)
		if ip == nil {
			continue
		}
		servers = append(servers, Server{IP: ip, Port: port})
	}
	if len(servers) == 0 {
		return nil, errkind.New(errkind.NoNameservers, "resolvconf.FromEnvironment", nil)
	}
	return servers, nil
}

// Preferred selects the first IPv4 entry, or the first entry of any family
// if no IPv4 entry exists, per spec.md §4.2.
func Preferred(servers []Server) (Server, bool) {
	if len(servers) == 0 {
		return Server{}, false
	}
	for _, s := range servers {
		if s.IP.To4() != nil {
			return s, true
		}
	}
	return servers[0], true
}
