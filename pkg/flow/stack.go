package flow

import "sync"

// Frame records a suspended parent flow on a user's return stack.
type Frame struct {
	Command string
}

// Stack tracks per-user sub-flow nesting: finishing a flow with a SubFlow
// outcome pushes it, and the next normal finish pops it to offer the way
// back. Frames live in memory only; restarting the process clears them.
type Stack struct {
	mu     sync.Mutex
	frames map[string][]Frame
}

// NewStack returns an empty stack shared by all flows of one app.
func NewStack() *Stack {
	return &Stack{frames: make(map[string][]Frame)}
}

// Push records a suspended flow for the user.
func (s *Stack) Push(userKey string, f Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames[userKey] = append(s.frames[userKey], f)
}

// Pop removes and returns the most recently suspended flow.
func (s *Stack) Pop(userKey string) (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	frames := s.frames[userKey]
	if len(frames) == 0 {
		return Frame{}, false
	}
	top := frames[len(frames)-1]
	if len(frames) == 1 {
		delete(s.frames, userKey)
	} else {
		s.frames[userKey] = frames[:len(frames)-1]
	}
	return top, true
}

// Depth returns the user's current nesting depth.
func (s *Stack) Depth(userKey string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames[userKey])
}
