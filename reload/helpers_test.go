package reload

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/markdingo/autozone/database"
	"github.com/markdingo/autozone/log"
	"github.com/markdingo/autozone/mock"
	"github.com/markdingo/autozone/zone"
)

type testServer struct {
	payload uint16
}

func (t *testServer) EDNSPayload() uint16 {
	return t.payload
}

// recordingScheduler notes which zones had a sync scheduled without arming timers.
type recordingScheduler struct {
	zones chan string
}

func (t *recordingScheduler) ScheduleSync(z *zone.Zone, timeout time.Duration) {
	select {
	case t.zones <- z.Name():
	default:
	}
}

type fixture struct {
	t      *testing.T
	dir    string
	out    *mock.IOWriter
	getter *database.Getter
	co     *Coordinator
}

func newFixture(t *testing.T) *fixture {
	out := &mock.IOWriter{}
	log.SetOut(out)
	log.SetLevel(log.MinorLevel)

	getter := database.NewGetter()
	co := NewCoordinator(getter, &testServer{payload: 1232})
	co.Scheduler = &recordingScheduler{zones: make(chan string, 100)}
	co.Workers = 4

	return &fixture{t: t, dir: t.TempDir(), out: out, getter: getter, co: co}
}

// mtime gives each serial a distinct, deterministic modification time.
func mtime(serial uint32) time.Time {
	return time.Unix(1700000000+int64(serial), 0)
}

// writeZone writes a zone file for name with the given serial and sets its
// modification time from the serial. Extra lines are appended verbatim.
func (t *fixture) writeZone(name string, serial uint32, extra ...string) string {
	path := t.path(name)
	text := fmt.Sprintf(`$ORIGIN %s
$TTL 3600
@ IN SOA ns1 hostmaster %d 3600 900 604800 300
@ IN NS ns1
ns1 IN A 192.0.2.53
www IN A 192.0.2.80
`, name, serial)
	for _, l := range extra {
		text += l + "\n"
	}
	require.NoError(t.t, os.WriteFile(path, []byte(text), 0644))
	t.touch(path, mtime(serial))

	return path
}

func (t *fixture) touch(path string, mt time.Time) {
	require.NoError(t.t, os.Chtimes(path, mt, mt))
}

func (t *fixture) path(name string) string {
	return filepath.Join(t.dir, name+"zone")
}

func (t *fixture) config(name string, transferIn ...string) *zone.Config {
	return zone.NewConfig(name, t.path(name), transferIn...)
}

// live returns the zone currently served under name.
func (t *fixture) live(name string) *zone.Zone {
	db := t.getter.Acquire()
	defer db.Release()

	return db.Find(name)
}
