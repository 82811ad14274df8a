package usecase

import (
	"errors"
	"sync"

	"github.com/fairyhunter13/ai-answer-grader/internal/domain"
)

// fakeAI is a scriptable domain.AIClient for usecase tests. Call counters are
// mutex-guarded so concurrent fan-out paths can assert on them safely.
type fakeAI struct {
	mu sync.Mutex

	chatJSONFn func(system, user string, maxTokens int) (string, error)
	chatTextFn func(system, user string, maxTokens int) (string, error)
	embedFn    func(texts []string) ([][]float32, error)

	chatJSONCalls int
	chatTextCalls int
	embedCalls    int
}

func (f *fakeAI) ChatJSON(_ domain.Context, system, user string, maxTokens int) (string, error) {
	f.mu.Lock()
	f.chatJSONCalls++
	fn := f.chatJSONFn
	f.mu.Unlock()
	if fn == nil {
		return "", errors.New("chatJSON not scripted")
	}
	return fn(system, user, maxTokens)
}

func (f *fakeAI) ChatText(_ domain.Context, system, user string, maxTokens int) (string, error) {
	f.mu.Lock()
	f.chatTextCalls++
	fn := f.chatTextFn
	f.mu.Unlock()
	if fn == nil {
		return "", errors.New("chatText not scripted")
	}
	return fn(system, user, maxTokens)
}

func (f *fakeAI) Embed(_ domain.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.embedCalls++
	fn := f.embedFn
	f.mu.Unlock()
	if fn == nil {
		return nil, errors.New("embed not scripted")
	}
	return fn(texts)
}

func (f *fakeAI) calls() (chatJSON, chatText, embed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chatJSONCalls, f.chatTextCalls, f.embedCalls
}
