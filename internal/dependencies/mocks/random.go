package mocks

import (
	"sync"

	"github.com/Jirawatp058/random-buddy/internal/dependencies/random"
)

// MockRandom replays scripted draws. Once the script runs out every draw
// is 0, which makes a Fisher-Yates shuffle leave its input in order.
type MockRandom struct {
	mu     sync.Mutex
	script []int

	// Calls is the number of Intn draws so far.
	Calls int
}

var _ random.Random = (*MockRandom)(nil)

func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// QueueIntn appends draws to the script.
func (m *MockRandom) QueueIntn(draws ...int) {
	m.mu.Lock()
	m.script = append(m.script, draws...)
	m.mu.Unlock()
}

// Intn pops the next scripted draw, capped at n-1.
func (m *MockRandom) Intn(n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	if len(m.script) == 0 || n <= 0 {
		return 0
	}
	v := m.script[0]
	m.script = m.script[1:]
	return min(v, n-1)
}
