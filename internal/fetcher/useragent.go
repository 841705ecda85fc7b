package fetcher

import (
	"bufio"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"
)

var ErrNoUserAgents = errors.New("user agent list is empty")

// UserAgentPool равномерно выбирает User-Agent из статического списка.
// Источник случайности задаётся seed, чтобы выбор был воспроизводим в тестах.
type UserAgentPool struct {
	agents []string
	mu     sync.Mutex
	rnd    *rand.Rand
}

// NewUserAgentPool при seed == 0 засевается текущим временем
func NewUserAgentPool(agents []string, seed int64) (*UserAgentPool, error) {
	if len(agents) == 0 {
		return nil, ErrNoUserAgents
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &UserAgentPool{
		agents: append([]string(nil), agents...),
		rnd:    rand.New(rand.NewSource(seed)),
	}, nil
}

func (p *UserAgentPool) UserAgent() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.agents[p.rnd.Intn(len(p.agents))]
}

func (p *UserAgentPool) Len() int {
	return len(p.agents)
}

// LoadUserAgents читает по одному User-Agent на строку, пустые строки пропускаются
func LoadUserAgents(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open user agents file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var agents []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		agents = append(agents, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user agents file: %w", err)
	}
	if len(agents) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoUserAgents)
	}

	return agents, nil
}
