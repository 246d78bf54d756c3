package osutil

import (
	"os"
	"os/signal"
)

// SignalNotify only registers for os.Interrupt as that is all Windows delivers. Reloads
// still happen via the watcher and the periodic modification check.
func SignalNotify(c chan os.Signal) {
	signal.Notify(c, os.Interrupt)
}

func IsSignalUSR1(s os.Signal) bool { return false }
func IsSignalUSR2(s os.Signal) bool { return false }
func IsSignalTERM(s os.Signal) bool { return false }
func IsSignalHUP(s os.Signal) bool  { return false }

func IsSignalINT(s os.Signal) bool {
	return s == os.Interrupt
}
