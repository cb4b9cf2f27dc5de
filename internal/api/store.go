package api

import "sync"

// CaptionStore keeps finished caption responses in memory so callers can
// re-fetch results by id.
type CaptionStore struct {
	mu        sync.Mutex
	responses map[string]CaptionResponse
}

func NewCaptionStore() *CaptionStore {
	return &CaptionStore{
		responses: make(map[string]CaptionResponse),
	}
}

func (s *CaptionStore) Save(resp CaptionResponse) {
	s.mu.Lock()
	s.responses[resp.ID] = resp
	s.mu.Unlock()
}

func (s *CaptionStore) Get(id string) (CaptionResponse, bool) {
	s.mu.Lock()
	resp, ok := s.responses[id]
	s.mu.Unlock()
	return resp, ok
}

func (s *CaptionStore) Delete(id string) bool {
	s.mu.Lock()
	_, ok := s.responses[id]
	if ok {
		delete(s.responses, id)
	}
	s.mu.Unlock()
	return ok
}
