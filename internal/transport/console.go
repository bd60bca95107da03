package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/kyutae-lim/concord/internal/errors"
)

// responseTerminator ends a relayed response: a line holding only ".".
const responseTerminator = "."

// Console is a human-relay Transport: prompts are printed to the
// output and responses are typed (or pasted) on the input, terminated
// by a line containing a single ".". It serves manual debates and
// piped scripts; it has no way to honor the wait timeouts, so the
// operator is the clock.
type Console struct {
	mu      sync.Mutex
	in      *bufio.Scanner
	out     io.Writer
	pending map[string]string
}

// NewConsole creates a console transport reading responses from in.
func NewConsole(in io.Reader, out io.Writer) *Console {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	return &Console{
		in:      sc,
		out:     out,
		pending: make(map[string]string),
	}
}

// IsAuthenticated implements Transport. The console operator is
// always trusted.
func (c *Console) IsAuthenticated(_ context.Context, _ string) bool {
	return true
}

// AwaitInputReady implements Transport.
func (c *Console) AwaitInputReady(_ context.Context, _ string, _ time.Duration) error {
	return nil
}

// DeliverPrompt implements Transport. The prompt is printed under a
// participant header for the operator to relay.
func (c *Console) DeliverPrompt(_ context.Context, participant, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := fmt.Fprintf(c.out, "\n--- prompt for %s ---\n%s\n--- end prompt ---\n", participant, text); err != nil {
		return errors.NewTransportError("write prompt", err).WithParticipant(participant).WithPhase("deliver")
	}
	return nil
}

// Submit implements Transport. Delivery already showed the prompt;
// there is nothing to press.
func (c *Console) Submit(_ context.Context, _ string) error {
	return nil
}

// AwaitResponse implements Transport. It reads input lines until the
// terminator line and stages the collected text.
func (c *Console) AwaitResponse(ctx context.Context, participant string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "\npaste %s's response, then a line with only %q:\n", participant, responseTerminator)

	var lines []string
	for c.in.Scan() {
		if ctx.Err() != nil {
			return errors.NewTransportError("await interrupted", ctx.Err()).WithParticipant(participant).WithPhase("await")
		}
		line := c.in.Text()
		if strings.TrimSpace(line) == responseTerminator {
			c.pending[participant] = strings.Join(lines, "\n")
			return nil
		}
		lines = append(lines, line)
	}
	if err := c.in.Err(); err != nil {
		return errors.NewTransportError("read response", err).WithParticipant(participant).WithPhase("await")
	}

	// EOF without a terminator: whatever was read is the response.
	c.pending[participant] = strings.Join(lines, "\n")
	return nil
}

// RetrieveResponse implements Transport.
func (c *Console) RetrieveResponse(_ context.Context, participant string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp, ok := c.pending[participant]
	if !ok {
		return "", errors.NewTransportError("no response collected", errors.ErrEmptyResponse).
			WithParticipant(participant).WithPhase("retrieve")
	}
	delete(c.pending, participant)
	return resp, nil
}
