package diagram

import (
	"context"
	"sync"

	"github.com/alnah/go-md2doc/internal/document"
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 100" width="100%"><rect width="200" height="100"/></svg>`

// mockRenderer implements Renderer for testing.
type mockRenderer struct {
	name        string
	kind        document.SourceKind
	unavailable error
	output      string
	err         error
	panicWith   any

	mu     sync.Mutex
	called int
	inputs []string
}

func (m *mockRenderer) Name() string              { return m.name }
func (m *mockRenderer) Kind() document.SourceKind { return m.kind }
func (m *mockRenderer) Available() error          { return m.unavailable }

func (m *mockRenderer) Render(ctx context.Context, source string) (string, error) {
	m.mu.Lock()
	m.called++
	m.inputs = append(m.inputs, source)
	m.mu.Unlock()
	if m.panicWith != nil {
		panic(m.panicWith)
	}
	return m.output, m.err
}

func (m *mockRenderer) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.called
}
