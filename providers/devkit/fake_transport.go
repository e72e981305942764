package devkit

import (
	"fmt"
	"net/http"
	"sync"
)

type refusingTransport struct {
	mu    sync.Mutex
	calls int
}

func (t *refusingTransport) Do(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	t.calls++
	t.mu.Unlock()
	return nil, fmt.Errorf("devkit: unexpected request to %s", req.URL)
}
