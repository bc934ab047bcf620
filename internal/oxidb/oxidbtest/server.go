// Package oxidbtest runs an in-process oxidb-server double speaking the same
// length-prefixed JSON protocol, for tests that exercise the real client.
package oxidbtest

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"net"
	"reflect"
	"strconv"
	"sync"
	"testing"
)

type object struct {
	data        []byte
	contentType string
}

// Server is a minimal oxidb-server supporting the commands the client issues.
// Documents get numeric auto-increment _id values like the real server.
type Server struct {
	ln net.Listener
	wg sync.WaitGroup

	mu          sync.Mutex
	collections map[string][]map[string]any
	nextID      int
	buckets     map[string]map[string]object
	failures    map[string]string
	conns       map[net.Conn]struct{}
	closed      bool
}

// NewServer starts a server on a loopback port and stops it on test cleanup.
func NewServer(t testing.TB) *Server {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("oxidbtest: listen: %v", err)
	}
	s := &Server{
		ln:          ln,
		collections: map[string][]map[string]any{},
		buckets:     map[string]map[string]object{},
		failures:    map[string]string{},
		conns:       map[net.Conn]struct{}{},
	}
	s.wg.Add(1)
	go s.serve()
	t.Cleanup(s.Close)
	return s
}

// Host returns the listening host.
func (s *Server) Host() string {
	return s.ln.Addr().(*net.TCPAddr).IP.String()
}

// Port returns the listening port.
func (s *Server) Port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

// FailNext makes the next request for cmd answer with an error response.
func (s *Server) FailNext(cmd, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[cmd] = msg
}

// Docs returns a copy of the documents stored in a collection.
func (s *Server) Docs(collection string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.collections[collection]))
	for _, d := range s.collections[collection] {
		out = append(out, clone(d))
	}
	return out
}

// Object returns a stored blob and its content type.
func (s *Server) Object(bucket, key string) ([]byte, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.buckets[bucket][key]
	return o.data, o.contentType, ok
}

// DropConnections closes every open client connection, simulating a server restart.
func (s *Server) DropConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		c.Close()
	}
}

// Close stops the listener and waits for connection handlers to exit.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.ln.Close()
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		lenBuf := make([]byte, 4)
		if _, err := io.ReadFull(conn, lenBuf); err != nil {
			return
		}
		payload := make([]byte, binary.LittleEndian.Uint32(lenBuf))
		if _, err := io.ReadFull(conn, payload); err != nil {
			return
		}

		var req map[string]any
		var resp map[string]any
		if err := json.Unmarshal(payload, &req); err != nil {
			resp = map[string]any{"ok": false, "error": "invalid json"}
		} else if data, err := s.dispatch(req); err != nil {
			resp = map[string]any{"ok": false, "error": err.Error()}
		} else {
			resp = map[string]any{"ok": true, "data": data}
		}

		out, _ := json.Marshal(resp)
		frame := make([]byte, 4+len(out))
		binary.LittleEndian.PutUint32(frame, uint32(len(out)))
		copy(frame[4:], out)
		if _, err := conn.Write(frame); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(req map[string]any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd, _ := req["cmd"].(string)
	if msg, ok := s.failures[cmd]; ok {
		delete(s.failures, cmd)
		return nil, errors.New(msg)
	}

	coll, _ := req["collection"].(string)
	query, _ := req["query"].(map[string]any)

	switch cmd {
	case "ping":
		return "pong", nil
	case "create_index", "create_bucket":
		if b, ok := req["bucket"].(string); ok && s.buckets[b] == nil {
			s.buckets[b] = map[string]object{}
		}
		return "ok", nil
	case "drop_collection":
		delete(s.collections, coll)
		return "ok", nil
	case "insert":
		doc, _ := req["doc"].(map[string]any)
		s.nextID++
		stored := clone(doc)
		stored["_id"] = float64(s.nextID)
		s.collections[coll] = append(s.collections[coll], stored)
		return map[string]any{"id": float64(s.nextID)}, nil
	case "find":
		matched := s.match(coll, query)
		if skip, ok := req["skip"].(float64); ok {
			if int(skip) >= len(matched) {
				matched = nil
			} else {
				matched = matched[int(skip):]
			}
		}
		if limit, ok := req["limit"].(float64); ok && int(limit) < len(matched) {
			matched = matched[:int(limit)]
		}
		out := make([]any, 0, len(matched))
		for _, d := range matched {
			out = append(out, clone(d))
		}
		return out, nil
	case "find_one":
		matched := s.match(coll, query)
		if len(matched) == 0 {
			return nil, nil
		}
		return clone(matched[0]), nil
	case "count":
		return map[string]any{"count": float64(len(s.match(coll, query)))}, nil
	case "put_object":
		bucket, _ := req["bucket"].(string)
		key, _ := req["key"].(string)
		if s.buckets[bucket] == nil {
			return nil, errors.New("bucket not found: " + bucket)
		}
		raw, _ := req["data"].(string)
		data, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, err
		}
		ct, _ := req["content_type"].(string)
		s.buckets[bucket][key] = object{data: data, contentType: ct}
		return map[string]any{"key": key, "size": float64(len(data))}, nil
	case "get_object":
		bucket, _ := req["bucket"].(string)
		key, _ := req["key"].(string)
		o, ok := s.buckets[bucket][key]
		if !ok {
			return nil, errors.New("object not found: " + key)
		}
		return map[string]any{
			"content":  base64.StdEncoding.EncodeToString(o.data),
			"metadata": map[string]any{"content_type": o.contentType, "size": strconv.Itoa(len(o.data))},
		}, nil
	}
	return nil, errors.New("unknown command: " + cmd)
}

func (s *Server) match(coll string, query map[string]any) []map[string]any {
	var out []map[string]any
	for _, d := range s.collections[coll] {
		ok := true
		for k, v := range query {
			if !reflect.DeepEqual(d[k], v) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, d)
		}
	}
	return out
}

func clone(doc map[string]any) map[string]any {
	data, _ := json.Marshal(doc)
	var out map[string]any
	json.Unmarshal(data, &out)
	return out
}
