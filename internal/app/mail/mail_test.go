package mail

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/quotedprintable"
	"net"
	netmail "net/mail"
	"net/textproto"
	"strings"
	"testing"
	"time"
)

func TestRenderOTP(t *testing.T) {
	body, err := RenderOTP("<alice>@x.com", "012345", 10*time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(body, "012345") {
		t.Error("body does not contain the OTP")
	}
	if !strings.Contains(body, "10 minutes") {
		t.Error("body does not mention the expiry")
	}
	if strings.Contains(body, "<alice>") {
		t.Error("email was not HTML-escaped")
	}
}

// relaySession is what the local relay saw during one connection.
type relaySession struct {
	rcpt []string
	data []byte
}

// startRelay accepts one SMTP session on a loopback port. Every RCPT is
// answered with rcptReply.
func startRelay(t *testing.T, rcptReply string) (int, <-chan relaySession) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	done := make(chan relaySession, 1)
	go func() {
		var s relaySession
		defer func() { done <- s }()

		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		_ = c.SetDeadline(time.Now().Add(5 * time.Second))

		tp := textproto.NewConn(c)
		_ = tp.PrintfLine("220 localhost ESMTP")
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			verb, _, _ := strings.Cut(line, " ")
			switch strings.ToUpper(verb) {
			case "EHLO", "HELO":
				_ = tp.PrintfLine("250 localhost")
			case "RCPT":
				s.rcpt = append(s.rcpt, line)
				_ = tp.PrintfLine("%s", rcptReply)
			case "DATA":
				_ = tp.PrintfLine("354 end with <CRLF>.<CRLF>")
				if s.data, err = tp.ReadDotBytes(); err != nil {
					return
				}
				_ = tp.PrintfLine("250 queued")
			case "QUIT":
				_ = tp.PrintfLine("221 bye")
				return
			default:
				_ = tp.PrintfLine("250 OK")
			}
		}
	}()

	return ln.Addr().(*net.TCPAddr).Port, done
}

func waitSession(t *testing.T, done <-chan relaySession) relaySession {
	t.Helper()
	select {
	case s := <-done:
		return s
	case <-time.After(5 * time.Second):
		t.Fatal("relay session did not finish")
		return relaySession{}
	}
}

func relayConfig(port int) SMTPConfig {
	return SMTPConfig{Host: "127.0.0.1", Port: port, From: "bot@backbench.test", Plaintext: true}
}

func TestSMTPDispatcherDeliversHTML(t *testing.T) {
	port, done := startRelay(t, "250 OK")
	body, err := RenderOTP("alice@x.com", "012345", 10*time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := NewSMTPDispatcher(relayConfig(port)).Send(ctx, "alice@x.com", OTPSubject, body); err != nil {
		t.Fatalf("Send: %v", err)
	}

	s := waitSession(t, done)
	if len(s.rcpt) != 1 || !strings.Contains(s.rcpt[0], "<alice@x.com>") {
		t.Fatalf("RCPT = %q, want alice@x.com", s.rcpt)
	}

	msg, err := netmail.ReadMessage(bytes.NewReader(s.data))
	if err != nil {
		t.Fatalf("parse message: %v\n%s", err, s.data)
	}
	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	if err != nil || subject != OTPSubject {
		t.Errorf("Subject = %q (%v), want %q", subject, err, OTPSubject)
	}
	if !strings.Contains(msg.Header.Get("From"), "bot@backbench.test") {
		t.Errorf("From = %q", msg.Header.Get("From"))
	}
	if msg.Header.Get("Message-Id") == "" {
		t.Error("message has no Message-ID")
	}
	if ct := msg.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}

	var r io.Reader = msg.Body
	if strings.EqualFold(msg.Header.Get("Content-Transfer-Encoding"), "quoted-printable") {
		r = quotedprintable.NewReader(msg.Body)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(decoded), "012345") || !strings.Contains(string(decoded), "<h1") {
		t.Errorf("body does not carry the rendered OTP email:\n%s", decoded)
	}
}

func TestSMTPDispatcherReportsRejectedRecipient(t *testing.T) {
	port, done := startRelay(t, "550 5.1.1 no such user")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := NewSMTPDispatcher(relayConfig(port)).Send(ctx, "ghost@x.com", OTPSubject, "<p>hi</p>")
	if err == nil {
		t.Fatal("Send succeeded although the relay rejected the recipient")
	}

	if s := waitSession(t, done); s.data != nil {
		t.Errorf("relay received a message body after rejecting the recipient:\n%s", s.data)
	}
}

func TestSMTPDispatcherValidatesAddresses(t *testing.T) {
	d := NewSMTPDispatcher(SMTPConfig{Host: "127.0.0.1", Port: 1, From: "bot@backbench.test"})
	err := d.Send(context.Background(), "a@x.com\r\nBcc: everyone@x.com", "s", "b")
	if err == nil || !strings.Contains(err.Error(), "invalid recipient") {
		t.Errorf("err = %v, want invalid recipient", err)
	}

	d = NewSMTPDispatcher(SMTPConfig{Host: "127.0.0.1", Port: 1, From: "not an address"})
	err = d.Send(context.Background(), "a@x.com", "s", "b")
	if err == nil || !strings.Contains(err.Error(), "invalid sender") {
		t.Errorf("err = %v, want invalid sender", err)
	}
}

func TestLogDispatcher(t *testing.T) {
	if err := NewLogDispatcher().Send(context.Background(), "a@x.com", "s", "b"); err != nil {
		t.Fatal(err)
	}
}
