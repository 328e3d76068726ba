// Package instance names the running replica for logs and lock ownership.
package instance

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

const workerIDEnv = "TIFFIN_WORKER_ID"

var (
	once sync.Once
	id   string
)

// ID is TIFFIN_WORKER_ID when set, otherwise "<hostname>-<pid>". The value is
// computed once per process.
func ID() string {
	once.Do(func() { id = resolve(os.Getenv(workerIDEnv), os.Hostname, os.Getpid()) })
	return id
}

func resolve(override string, hostname func() (string, error), pid int) string {
	if override = strings.TrimSpace(override); override != "" {
		return override
	}
	host, err := hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, pid)
}
