// Package mailtest runs an in-process SMTP server for tests.
//
// The server speaks enough ESMTP for net/smtp clients: EHLO, AUTH PLAIN,
// MAIL, RCPT, DATA, RSET, NOOP and QUIT. It never offers STARTTLS, so clients
// must not require TLS, and it listens on 127.0.0.1 so PLAIN auth is allowed
// over the unencrypted connection.
package mailtest

import (
	"encoding/base64"
	"errors"
	"io"
	"net"
	"net/textproto"
	"slices"
	"strings"
	"sync"
	"testing"
)

// Options configures the fake server.
type Options struct {
	// Username and Password are the only credentials AUTH PLAIN accepts.
	// Leaving both empty accepts any credentials.
	Username string
	Password string
	// RejectRecipients are answered with 550 at RCPT.
	RejectRecipients []string
}

// Envelope is one accepted message.
type Envelope struct {
	From string
	To   []string
	Data string
}

// Server is a running fake SMTP server.
type Server struct {
	// Host is always 127.0.0.1.
	Host string
	// Port is the ephemeral listening port.
	Port int

	opts Options
	ln   net.Listener
	wg   sync.WaitGroup

	mu       sync.Mutex
	messages []Envelope
	authOK   int
	authFail int
}

// NewServer starts a server that is stopped when the test ends.
func NewServer(tb testing.TB, opts Options) *Server {
	tb.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		tb.Fatalf("mailtest: listen: %v", err)
	}

	s := &Server{
		Host: "127.0.0.1",
		Port: ln.Addr().(*net.TCPAddr).Port,
		opts: opts,
		ln:   ln,
	}

	s.wg.Add(1)
	go s.serve()

	tb.Cleanup(func() {
		_ = ln.Close()
		s.wg.Wait()
	})

	return s
}

// Messages returns a copy of every accepted message.
func (s *Server) Messages() []Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.messages)
}

// AuthAttempts reports successful and failed AUTH exchanges.
func (s *Server) AuthAttempts() (ok, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.authOK, s.authFail
}

func (s *Server) serve() {
	defer s.wg.Done()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer conn.Close()
			s.session(textproto.NewConn(conn))
		}()
	}
}

func (s *Server) session(tc *textproto.Conn) {
	reply := func(code int, msg string) bool {
		return tc.PrintfLine("%d %s", code, msg) == nil
	}

	if !reply(220, "mailtest ESMTP ready") {
		return
	}

	var env Envelope
	for {
		line, err := tc.ReadLine()
		if err != nil {
			return
		}

		verb, arg, _ := strings.Cut(line, " ")
		switch strings.ToUpper(verb) {
		case "EHLO", "HELO":
			if tc.PrintfLine("250-mailtest") != nil || !reply(250, "AUTH PLAIN") {
				return
			}
		case "AUTH":
			if !reply(s.auth(arg)) {
				return
			}
		case "*":
			reply(501, "5.7.0 authentication cancelled")
		case "MAIL":
			env = Envelope{From: address(arg)}
			reply(250, "2.1.0 OK")
		case "RCPT":
			rcpt := address(arg)
			if slices.Contains(s.opts.RejectRecipients, rcpt) {
				reply(550, "5.1.1 mailbox unavailable")
				continue
			}
			env.To = append(env.To, rcpt)
			reply(250, "2.1.5 OK")
		case "DATA":
			if !reply(354, "end data with <CR><LF>.<CR><LF>") {
				return
			}
			data, err := readAll(tc.DotReader())
			if err != nil {
				return
			}
			env.Data = data
			s.mu.Lock()
			s.messages = append(s.messages, env)
			s.mu.Unlock()
			env = Envelope{}
			reply(250, "2.0.0 queued")
		case "RSET":
			env = Envelope{}
			reply(250, "2.0.0 OK")
		case "NOOP":
			reply(250, "2.0.0 OK")
		case "QUIT":
			reply(221, "2.0.0 bye")
			return
		default:
			reply(502, "5.5.2 command not recognized")
		}
	}
}

func (s *Server) auth(arg string) (int, string) {
	mech, initial, _ := strings.Cut(arg, " ")
	if !strings.EqualFold(mech, "PLAIN") {
		return 504, "5.5.4 unrecognized authentication type"
	}

	raw, err := base64.StdEncoding.DecodeString(initial)
	if err != nil {
		return 501, "5.5.2 cannot decode response"
	}

	// authzid NUL authcid NUL passwd
	parts := strings.SplitN(string(raw), "\x00", 3)
	ok := len(parts) == 3
	if ok && (s.opts.Username != "" || s.opts.Password != "") {
		ok = parts[1] == s.opts.Username && parts[2] == s.opts.Password
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !ok {
		s.authFail++
		return 535, "5.7.8 Username and Password not accepted"
	}
	s.authOK++
	return 235, "2.7.0 Authentication successful"
}

func address(arg string) string {
	_, addr, found := strings.Cut(arg, ":")
	if !found {
		return ""
	}
	addr, _, _ = strings.Cut(strings.TrimSpace(addr), " ")
	return strings.Trim(addr, "<>")
}

func readAll(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	return string(data), err
}
