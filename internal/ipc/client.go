package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/finnvos/voxd/internal/domain"
)

const (
	dialTimeout  = 2 * time.Second
	replyTimeout = 15 * time.Second
)

// WireResponse is the client-side view of one JSON reply line.
type WireResponse struct {
	Status domain.Outcome `json:"status"`
	Pasted *bool          `json:"pasted,omitempty"`
}

// Send writes one command token to the daemon endpoint and returns the
// raw reply line. A refused or absent endpoint maps to
// ErrDaemonUnreachable so callers can distinguish "not running" from a
// protocol failure.
//
// The reply deadline is generous: a toggle that ends a recording blocks
// on the transcription poll before it answers.
func Send(cmd domain.Command) (string, error) {
	conn, err := dialEndpoint(dialTimeout)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDaemonUnreachable, err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(replyTimeout))
	if _, err := conn.Write([]byte(string(cmd) + "\n")); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDaemonUnreachable, err)
	}

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read reply: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Decode parses a reply line into its structured form.
func Decode(line string) (WireResponse, error) {
	var wr WireResponse
	if err := json.Unmarshal([]byte(line), &wr); err != nil {
		return WireResponse{}, fmt.Errorf("decode reply %q: %w", line, err)
	}
	return wr, nil
}
