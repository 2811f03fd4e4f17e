// Package capture acquires a selfie frame for identity verification as a
// scoped resource: Open grabs the device (or a stub source), Close releases
// it and its temp artifacts on every exit path.
package capture

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vowhq/vowctl/internal/config"
	"github.com/vowhq/vowctl/internal/logger"
	"go.uber.org/zap"
)

const outputPlaceholder = "{{output}}"

// Session owns one captured frame. Callers must Close it; Close is
// idempotent and safe to defer alongside an explicit call on the success
// path.
type Session struct {
	mu     sync.Mutex
	dir    string
	file   string
	closed bool
}

// Open captures a single frame. With a capture command configured, the
// command runs with {{output}} substituted for the destination path and must
// leave a frame there; with a source file configured, the file is copied
// instead (tests, machines without a camera).
func Open(ctx context.Context, cfg *config.CaptureConfig) (*Session, error) {
	if cfg == nil || (cfg.Command == "" && cfg.SourceFile == "") {
		return nil, fmt.Errorf("no capture source configured, set capture.command or capture.source_file")
	}

	dir, err := os.MkdirTemp("", "vowctl-capture-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create capture dir: %w", err)
	}
	s := &Session{dir: dir, file: filepath.Join(dir, "frame.jpg")}

	if err := s.acquire(ctx, cfg); err != nil {
		// Release the half-acquired resource before reporting failure.
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) acquire(ctx context.Context, cfg *config.CaptureConfig) error {
	if cfg.SourceFile != "" {
		return copyFile(cfg.SourceFile, s.file)
	}

	parts := strings.Fields(strings.ReplaceAll(cfg.Command, outputPlaceholder, s.file))
	if len(parts) == 0 {
		return fmt.Errorf("capture command is empty")
	}
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	if out, err := cmd.CombinedOutput(); err != nil {
		logger.Error("capture command failed", zap.String("command", parts[0]), zap.ByteString("output", out))
		return fmt.Errorf("capture command failed: %w", err)
	}
	if _, err := os.Stat(s.file); err != nil {
		return fmt.Errorf("capture command produced no frame at %s", s.file)
	}
	return nil
}

// File returns the captured frame path. Empty after Close.
func (s *Session) File() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ""
	}
	return s.file
}

// Close releases the capture and removes the temp artifacts.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return os.RemoveAll(s.dir)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open capture source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create frame file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy frame: %w", err)
	}
	return out.Close()
}
