package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrorLog журнал неудачных URL: только дозапись, каждый URL не более одного раза за запуск
type ErrorLog struct {
	path string
	mu   sync.Mutex
	file *os.File
	seen map[string]struct{}
}

// OpenErrorLog открывает файл на дозапись; существующее содержимое сохраняется
func OpenErrorLog(path string) (*ErrorLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create error log directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open error log: %w", err)
	}

	return &ErrorLog{
		path: path,
		file: file,
		seen: make(map[string]struct{}),
	}, nil
}

// Append дописывает URL; повторный URL в том же запуске пропускается (false)
func (l *ErrorLog) Append(url string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.seen[url]; ok {
		return false, nil
	}
	if _, err := l.file.WriteString(url + "\n"); err != nil {
		return false, fmt.Errorf("failed to append to %s: %w", l.path, err)
	}
	l.seen[url] = struct{}{}
	return true, nil
}

// Count число URL, записанных в этом запуске
func (l *ErrorLog) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seen)
}

func (l *ErrorLog) Path() string {
	return l.path
}

func (l *ErrorLog) Close() error {
	return l.file.Close()
}
