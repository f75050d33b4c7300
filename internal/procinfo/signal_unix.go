package procinfo

import "syscall"

func syscallSignal(signal int) syscall.Signal {
	return syscall.Signal(signal)
}
