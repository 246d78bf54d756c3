// Package zoneconf reads the YAML list of zones to serve and turns it into the zone
// configurations consumed by a reload.
package zoneconf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/miekg/dns"
	"gopkg.in/yaml.v3"

	"github.com/markdingo/autozone/dnsutil"
	"github.com/markdingo/autozone/zone"
)

const (
	DefaultSyncTimeout = time.Minute
	defaultPort        = "53"
	fileSuffix         = ".zone"
)

var (
	ErrNoName        = errors.New("zone has no name")
	ErrDuplicateZone = errors.New("zone configured more than once")
	ErrBadTransferIn = errors.New("invalid transfer_in address")
)

// File is the on-disk layout.
type File struct {
	Defaults Defaults `yaml:"defaults"`
	Zones    []Zone   `yaml:"zones"`
}

type Defaults struct {
	Directory   string         `yaml:"directory"`    // Base for relative zone files. Defaults to the config's directory
	SyncTimeout *time.Duration `yaml:"sync_timeout"` // Applied to zones without their own
}

type Zone struct {
	Name        string         `yaml:"name"`
	File        string         `yaml:"file"` // Defaults to <name>.zone
	TransferIn  []string       `yaml:"transfer_in"`
	SyncTimeout *time.Duration `yaml:"sync_timeout"`
}

// Load reads path and returns the zone configurations in file order.
func Load(path string) ([]*zone.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read zone list: %w", err)
	}

	cfgs, err := Parse(bytes.NewReader(data), filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfgs, nil
}

// Parse decodes a zone list. Relative paths are resolved against dir unless the list
// sets defaults.directory.
func Parse(r io.Reader, dir string) ([]*zone.Config, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true) // Typos should not silently drop a zone's settings
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse zone list: %w", err)
	}

	if len(f.Defaults.Directory) > 0 {
		if filepath.IsAbs(f.Defaults.Directory) {
			dir = f.Defaults.Directory
		} else {
			dir = filepath.Join(dir, f.Defaults.Directory)
		}
	}
	syncTimeout := DefaultSyncTimeout
	if f.Defaults.SyncTimeout != nil {
		syncTimeout = *f.Defaults.SyncTimeout
	}

	seen := make(map[string]struct{}, len(f.Zones))
	cfgs := make([]*zone.Config, 0, len(f.Zones))
	for ix, z := range f.Zones {
		if len(z.Name) == 0 {
			return nil, fmt.Errorf("zone %d: %w", ix+1, ErrNoName)
		}
		name := dns.CanonicalName(z.Name)
		if _, ok := dns.IsDomainName(name); !ok {
			return nil, fmt.Errorf("zone %d: invalid name %q", ix+1, z.Name)
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("%s: %w", name, ErrDuplicateZone)
		}
		seen[name] = struct{}{}

		file := z.File
		if len(file) == 0 {
			file = dnsutil.ChompCanonicalName(name) + fileSuffix
		}
		if !filepath.IsAbs(file) {
			file = filepath.Join(dir, file)
		}

		transferIn, err := normalizeTransferIn(z.TransferIn)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		cfg := zone.NewConfig(name, file, transferIn...)
		cfg.SyncTimeout = syncTimeout
		if z.SyncTimeout != nil {
			cfg.SyncTimeout = *z.SyncTimeout
		}
		cfgs = append(cfgs, cfg)
	}

	return cfgs, nil
}

// normalizeTransferIn makes each address host:port, adding the DNS port if absent.
func normalizeTransferIn(addrs []string) ([]string, error) {
	var ret []string
	for _, a := range addrs {
		host, port, err := net.SplitHostPort(a)
		if err != nil {
			host, port = a, defaultPort // Assume the port is missing
		}
		if len(host) == 0 {
			return nil, fmt.Errorf("%q: %w", a, ErrBadTransferIn)
		}
		ret = append(ret, net.JoinHostPort(host, port))
	}

	return ret, nil
}
