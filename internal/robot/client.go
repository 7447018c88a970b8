// Package robot implements the actuator link: a best-effort TCP client for a
// Universal Robots style controller. The controller exposes two plaintext
// channels, a dashboard port for single-line control commands and a program
// port that accepts URScript documents.
//
// Every operation opens a fresh connection, writes its payload, and closes.
// Nothing is read back; delivery is fire-and-forget and any failure is
// terminal for that single call. Retry policy belongs to the caller.
package robot

import (
	"context"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// Default controller ports. Docker images of the simulator map these to
// localhost.
const (
	DefaultDashboardPort = 29999
	DefaultProgramPort   = 30002
)

const defaultDialTimeout = 5 * time.Second

// Config locates the controller. The zero value of the port and timeout
// fields is replaced with the defaults by NewClient.
type Config struct {
	Host          string
	DashboardPort int
	ProgramPort   int
	DialTimeout   time.Duration
}

// Client is a stateless controller client; it holds configuration only and
// is safe for concurrent use.
type Client struct {
	cfg Config
}

// NewClient returns a Client for the given controller, applying defaults for
// unset ports and timeout.
func NewClient(cfg Config) *Client {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.DashboardPort == 0 {
		cfg.DashboardPort = DefaultDashboardPort
	}
	if cfg.ProgramPort == 0 {
		cfg.ProgramPort = DefaultProgramPort
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	return &Client{cfg: cfg}
}

// ReleaseAndRun releases the brakes via the dashboard channel and uploads
// the predefined pick/place program to the program channel. Each channel
// uses its own short-lived connection.
func (c *Client) ReleaseAndRun(ctx context.Context) error {
	if err := c.send(ctx, c.cfg.DashboardPort, "brake release\n"); err != nil {
		return errors.Wrap(err, "brake release")
	}
	if err := c.send(ctx, c.cfg.ProgramPort, ensureNewline(pickPlaceProgram)); err != nil {
		return errors.Wrap(err, "upload program")
	}
	return nil
}

// Stop sends the dashboard stop command, halting whatever program the
// controller is running.
func (c *Client) Stop(ctx context.Context) error {
	if err := c.send(ctx, c.cfg.DashboardPort, "stop\n"); err != nil {
		return errors.Wrap(err, "stop")
	}
	return nil
}

// Popup shows a popup dialog on the controller's teach pendant.
func (c *Client) Popup(ctx context.Context, text string) error {
	if err := c.send(ctx, c.cfg.ProgramPort, "popup(\""+escape(text)+"\")\n"); err != nil {
		return errors.Wrap(err, "popup")
	}
	return nil
}

// TextMsg writes a message to the controller's log.
func (c *Client) TextMsg(ctx context.Context, text string) error {
	if err := c.send(ctx, c.cfg.ProgramPort, "textmsg(\""+escape(text)+"\")\n"); err != nil {
		return errors.Wrap(err, "textmsg")
	}
	return nil
}

// send opens a connection to the given port, writes payload, and closes.
func (c *Client) send(ctx context.Context, port int, payload string) error {
	d := net.Dialer{Timeout: c.cfg.DialTimeout}
	addr := net.JoinHostPort(c.cfg.Host, strconv.Itoa(port))

	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "dial %s", addr)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetWriteDeadline(deadline); err != nil {
			return errors.Wrap(err, "set write deadline")
		}
	}
	if _, err := io.WriteString(conn, payload); err != nil {
		return errors.Wrapf(err, "write %s", addr)
	}
	return nil
}

// escape neutralizes backslashes and double quotes before embedding text
// into a URScript string literal.
func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
