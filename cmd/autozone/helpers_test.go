package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/miekg/dns"

	"github.com/markdingo/autozone/log"
	"github.com/markdingo/autozone/mock"
)

// testZone is a daemon with a zone list in a temporary directory. Nothing listens.
type testZone struct {
	*autoZone
	t   *testing.T
	dir string
	out *mock.IOWriter
}

func newTestZone(t *testing.T) *testZone {
	out := &mock.IOWriter{}
	log.SetOut(out)
	log.SetLevel(log.MinorLevel)

	dir := t.TempDir()
	cfg := newConfig()
	cfg.configFile = filepath.Join(dir, "zones.yaml")
	cfg.freezeTimeout = time.Second
	az := newAutoZone(cfg)
	az.applyConfig()

	return &testZone{autoZone: az, t: t, dir: dir, out: out}
}

// writeZone writes a zone file with a modification time derived from serial.
func (t *testZone) writeZone(name string, serial uint32) string {
	path := filepath.Join(t.dir, dns.CanonicalName(name)+"zone")
	text := fmt.Sprintf(`$ORIGIN %s
$TTL 3600
@ IN SOA ns1 hostmaster %d 3600 900 604800 300
@ IN NS ns1
ns1 IN A 192.0.2.53
www IN A 192.0.2.80
big IN TXT "%0200d"
big IN TXT "%0201d"
big IN TXT "%0202d"
`, name, serial, 1, 2, 3)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.t.Fatal(err)
	}
	t.touch(path, serial)

	return path
}

func (t *testZone) touch(path string, serial uint32) {
	mt := time.Unix(1700000000+int64(serial), 0)
	if err := os.Chtimes(path, mt, mt); err != nil {
		t.t.Fatal(err)
	}
}

// writeConfig writes the zone list with the given YAML zone entries.
func (t *testZone) writeConfig(serial uint32, zones ...string) {
	text := "zones:\n"
	for _, z := range zones {
		text += "  - " + z + "\n"
	}
	if err := os.WriteFile(t.cfg.configFile, []byte(text), 0644); err != nil {
		t.t.Fatal(err)
	}
	t.touch(t.cfg.configFile, serial)
}

func setQuestion(qClass, qType uint16, qName string) *dns.Msg {
	m := new(dns.Msg)
	m.SetQuestion(qName, qType)
	m.Question[0].Qclass = qClass

	return m
}
