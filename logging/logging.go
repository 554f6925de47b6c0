package logging

import (
	"io"
	"log"
	"os"
	"sync"
)

const maxLogSize = 4 * 1024 * 1024 // 4MB

// rotatingFile keeps log output bounded: when the file passes maxLogSize it
// is renamed to <path>.old and writing restarts on a fresh file. One backup
// generation is enough for a collector that mostly runs under cron.
type rotatingFile struct {
	mu   sync.Mutex
	file *os.File
	path string
	size int64
}

// Setup mirrors the stdlib logger to stdout and a rotated file.
func Setup(logPath string) (io.Closer, error) {
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		os.Rename(logPath, logPath+".old")
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	rf := &rotatingFile{file: f, path: logPath}
	if info, err := f.Stat(); err == nil {
		rf.size = info.Size()
	}

	log.SetOutput(io.MultiWriter(os.Stdout, rf))
	return rf, nil
}

func (rf *rotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	n, err := rf.file.Write(p)
	rf.size += int64(n)
	if rf.size > maxLogSize {
		rf.rotate()
	}
	return n, err
}

func (rf *rotatingFile) rotate() {
	rf.file.Close()
	os.Rename(rf.path, rf.path+".old")

	f, err := os.OpenFile(rf.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return
	}
	rf.file = f
	rf.size = 0
}

func (rf *rotatingFile) Close() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.file.Close()
}
