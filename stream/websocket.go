// Copyright (c) 2025 BVK Chaitanya

package stream

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// WebsocketSource reads quote messages from a websocket feed that
// publishes the same wire-format arrays as the Kafka topic. Used by
// deployments without a broker in front of the exchange feed.
type WebsocketSource struct {
	url string

	mu   sync.Mutex
	conn *websocket.Conn
}

var _ Source = &WebsocketSource{}

func NewWebsocketSource(url string) *WebsocketSource {
	return &WebsocketSource{url: url}
}

func (s *WebsocketSource) Receive(ctx context.Context) ([]byte, error) {
	conn, err := s.connection(ctx)
	if err != nil {
		return nil, err
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		// Force a reconnect on the next Receive.
		s.dropConnection(conn)
		if ctx.Err() != nil {
			return nil, context.Cause(ctx)
		}
		return nil, fmt.Errorf("could not read from websocket feed: %w", err)
	}
	return data, nil
}

func (s *WebsocketSource) connection(ctx context.Context) (*websocket.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return s.conn, nil
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not dial websocket feed %q: %w", s.url, err)
	}
	s.conn = conn
	return conn, nil
}

func (s *WebsocketSource) dropConnection(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == conn {
		s.conn = nil
	}
	conn.Close()
}

func (s *WebsocketSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}
