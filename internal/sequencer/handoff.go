package sequencer

import "syscall"

// replaceProcess swaps the launcher's process image for the server, so the
// server inherits PID 1 duties and receives container signals directly. No
// wrapper process remains.
func replaceProcess(argv0 string, argv, env []string) error {
	return syscall.Exec(argv0, argv, env)
}
