package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/markdingo/autozone/log"
	"github.com/markdingo/autozone/reload"
	"github.com/markdingo/autozone/zoneconf"
)

// reloadZones re-reads the zone list and runs a reload cycle. Returns false if nothing
// was published, in which case the previous generation continues to be served.
func (t *autoZone) reloadZones(why string) bool {
	t.reloadMu.Lock()
	defer t.reloadMu.Unlock()

	select {
	case <-t.done: // Shutting down and zones may already be retired
		return false
	default:
	}

	log.Major("Reload: ", why)
	if mt, ok := fileModTime(t.cfg.configFile); ok {
		t.cfgModTime = mt // Even if broken, don't retry until it changes again
	}
	cfgs, err := zoneconf.Load(t.cfg.configFile)
	if err != nil {
		log.Errorf("Reload abandoned: %s", err)
		t.reloads.abandoned++
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultGracePeriod)
	defer cancel()
	res, err := t.coordinator.Reload(ctx, cfgs)
	if err != nil {
		t.reloads.abandoned++
		return false
	}

	t.zoneCfgs = cfgs
	t.reloads.add(res)
	clear(t.failed)
	for _, cfg := range cfgs {
		if res.Outcomes[cfg.Name] == reload.Failed {
			mt, _ := fileModTime(cfg.File)
			t.failed[cfg.Name] = mt
		}
	}

	if t.watcher != nil {
		paths := []string{t.cfg.configFile}
		for _, cfg := range cfgs {
			paths = append(paths, cfg.File)
		}
		if err := t.watcher.track(paths); err != nil {
			log.Warningf("Watcher: %s", err)
		}
	}

	return true
}

// checkForReload compares file modification times against what was last loaded and
// returns the reason a reload is needed, or an empty string if none is.
func (t *autoZone) checkForReload() string {
	t.reloadMu.Lock()
	cfgs := t.zoneCfgs
	cfgModTime := t.cfgModTime
	failed := make(map[string]time.Time, len(t.failed))
	for k, v := range t.failed {
		failed[k] = v
	}
	t.reloadMu.Unlock()

	if mt, ok := fileModTime(t.cfg.configFile); ok && !mt.Equal(cfgModTime) {
		return "modified " + filepath.Base(t.cfg.configFile)
	}

	db := t.dbGetter.Acquire()
	defer t.dbGetter.Release(db)
	for _, cfg := range cfgs {
		switch reload.Classify(db.Find(cfg.Name), cfg.File) {
		case reload.Updated:
			return "modified " + filepath.Base(cfg.File)
		case reload.New:
			mt, _ := fileModTime(cfg.File)
			if prev, ok := failed[cfg.Name]; ok && prev.Equal(mt) {
				continue // Same file failed last time
			}
			return "new " + filepath.Base(cfg.File)
		}
	}

	return ""
}

// retireAll replaces the live generation with an empty one, retiring every zone.
func (t *autoZone) retireAll() {
	t.reloadMu.Lock()
	defer t.reloadMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultGracePeriod)
	defer cancel()
	res, err := t.coordinator.Reload(ctx, nil)
	if err != nil {
		log.Errorf("Zone retirement: %s", err)
		return
	}
	log.Minorf("Retired %d zones", res.Reclaimed)
}

func fileModTime(path string) (time.Time, bool) {
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}

	return fi.ModTime(), true
}
