package console

import (
	"context"
	"fmt"
	"log"
	"os/exec"
)

// ScreenConsole types directives into a named, pre-existing screen(1)
// session via `screen -X stuff`.
type ScreenConsole struct {
	session string

	// run executes the screen command; swapped out in tests.
	run func(ctx context.Context, name string, args ...string) error
}

// NewScreenConsole creates a console bound to the given screen session.
func NewScreenConsole(session string) (*ScreenConsole, error) {
	if session == "" {
		return nil, fmt.Errorf("screen session name cannot be empty")
	}
	return &ScreenConsole{
		session: session,
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}, nil
}

// Add whitelists name.
func (s *ScreenConsole) Add(ctx context.Context, name string) bool {
	return s.send(ctx, "whitelist add "+name)
}

// Remove drops name from the whitelist.
func (s *ScreenConsole) Remove(ctx context.Context, name string) bool {
	return s.send(ctx, "whitelist remove "+name)
}

// send stuffs one line into window 0 of the session.
func (s *ScreenConsole) send(ctx context.Context, directive string) bool {
	ctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()

	err := s.run(ctx, "screen", "-S", s.session, "-p", "0", "-X", "stuff", directive+"\n")
	if err != nil {
		log.Printf("[ERROR] Screen dispatch failed: session=%s directive=%q error=%v",
			s.session, directive, err)
		return false
	}
	log.Printf("[INFO] Sent to server console: %s", directive)
	return true
}
