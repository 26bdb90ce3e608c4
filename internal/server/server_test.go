package server

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/rsciampacone/kvhacking/internal/config"
	"github.com/rsciampacone/kvhacking/internal/logging"
)

// startTestServer boots a Server on an OS-assigned loopback port and returns
// its address, mirroring the reference implementation's pattern of booting a
// real listener in a test goroutine and dialing it with net.Dial.
func startTestServer(t *testing.T) string {
	t.Helper()

	srv := New(config.Config{Addr: "127.0.0.1:0"}, logging.Nop())
	ready := make(chan string, 1)
	go func() {
		ln, err := net.Listen("tcp", srv.cfg.Addr)
		if err != nil {
			t.Errorf("listen: %v", err)
			ready <- ""
			return
		}
		srv.listener = ln
		ready <- ln.Addr().String()

		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go srv.handle(conn)
		}
	}()

	addr := <-ready
	if addr == "" {
		t.FailNow()
	}
	t.Cleanup(func() { srv.Close() })
	return addr
}

func dial(t *testing.T, addr string) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestConnectToServer(t *testing.T) {
	addr := startTestServer(t)
	conn := dial(t, addr)
	defer conn.Close()
}

func TestServerRoundTrip(t *testing.T) {
	addr := startTestServer(t)
	conn := dial(t, addr)
	defer conn.Close()

	reader := bufio.NewReader(conn)

	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"SET", "*3\r\n$3\r\nSET\r\n$5\r\nmykey\r\n$3\r\nfoo\r\n", "+OK\r\n"},
		{"GET", "*2\r\n$3\r\nGET\r\n$5\r\nmykey\r\n", "$3\r\nfoo\r\n"},
		{"GET missing", "*2\r\n$3\r\nGET\r\n$7\r\nnothere\r\n", "$-1\r\n"},
		{"LPUSH", "*3\r\n$5\r\nLPUSH\r\n$1\r\nl\r\n$1\r\na\r\n", ":1\r\n"},
		{"LLEN", "*2\r\n$4\r\nLLEN\r\n$1\r\nl\r\n", ":1\r\n"},
		{"unknown command", "*1\r\n$4\r\nNOPE\r\n", "-ERR unknown command 'NOPE'\r\n"},
	}

	for _, tc := range tests {
		if _, err := conn.Write([]byte(tc.payload)); err != nil {
			t.Fatalf("%s: write: %v", tc.name, err)
		}
		got := make([]byte, len(tc.want))
		if _, err := readFull(reader, got); err != nil {
			t.Fatalf("%s: read: %v", tc.name, err)
		}
		if string(got) != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

// TestServerPipelining covers P8: several statements written back to back
// without waiting for intervening replies must be answered in order.
func TestServerPipelining(t *testing.T) {
	addr := startTestServer(t)
	conn := dial(t, addr)
	defer conn.Close()

	payload := "*3\r\n$3\r\nSET\r\n$1\r\na\r\n$1\r\n1\r\n" +
		"*3\r\n$3\r\nSET\r\n$1\r\nb\r\n$1\r\n2\r\n" +
		"*2\r\n$3\r\nGET\r\n$1\r\na\r\n" +
		"*2\r\n$3\r\nGET\r\n$1\r\nb\r\n"
	if _, err := conn.Write([]byte(payload)); err != nil {
		t.Fatalf("write: %v", err)
	}

	want := "+OK\r\n+OK\r\n$1\r\n1\r\n$1\r\n2\r\n"
	got := make([]byte, len(want))
	reader := bufio.NewReader(conn)
	if _, err := readFull(reader, got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestServerClosesOnClientDisconnect(t *testing.T) {
	addr := startTestServer(t)
	conn := dial(t, addr)

	if _, err := conn.Write([]byte("*3\r\n$3\r\nSET\r\n$1\r\na\r\n$1\r\n1\r\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	reader := bufio.NewReader(conn)
	got := make([]byte, len("+OK\r\n"))
	if _, err := readFull(reader, got); err != nil {
		t.Fatalf("read: %v", err)
	}
	conn.Close()
}

func readFull(r *bufio.Reader, buf []byte) (int, error) {
	read := 0
	for read < len(buf) {
		n, err := r.Read(buf[read:])
		read += n
		if err != nil {
			return read, err
		}
	}
	return read, nil
}
