// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package services

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/thejerf/suture/v4"
)

var (
	_ suture.Service = (*HTTPServerService)(nil)
	_ suture.Service = (*MessageRouterService)(nil)
)

type mockHTTPServer struct {
	listenErr error
	started   chan struct{}
	stop      chan struct{}
	shutdowns atomic.Int32
}

func newMockHTTPServer(listenErr error) *mockHTTPServer {
	return &mockHTTPServer{listenErr: listenErr, started: make(chan struct{}), stop: make(chan struct{})}
}

func (m *mockHTTPServer) ListenAndServe() error {
	close(m.started)
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.stop
	return http.ErrServerClosed
}

func (m *mockHTTPServer) Shutdown(context.Context) error {
	m.shutdowns.Add(1)
	close(m.stop)
	return nil
}

func TestHTTPServerService_GracefulShutdown(t *testing.T) {
	t.Parallel()
	srv := newMockHTTPServer(nil)
	svc := NewHTTPServerService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	<-srv.started
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return")
	}
	if srv.shutdowns.Load() != 1 {
		t.Errorf("Shutdown called %d times, want 1", srv.shutdowns.Load())
	}
}

func TestHTTPServerService_ListenFailure(t *testing.T) {
	t.Parallel()
	bind := errors.New("address already in use")
	svc := NewHTTPServerService(newMockHTTPServer(bind), 0)
	if err := svc.Serve(context.Background()); !errors.Is(err, bind) {
		t.Errorf("Serve() = %v, want wrapped bind error", err)
	}
	if svc.shutdownTimeout != 10*time.Second || svc.String() != "http-server" {
		t.Errorf("defaults = %v %q", svc.shutdownTimeout, svc)
	}
}

func TestMessageRouterService_DeliversUntilCanceled(t *testing.T) {
	t.Parallel()
	logger := watermill.NopLogger{}
	bus := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, logger)
	defer func() { _ = bus.Close() }()

	received := make(chan string, 1)
	var builds atomic.Int32
	svc := NewMessageRouterService("engagement-sync", func() (*message.Router, error) {
		builds.Add(1)
		r, err := message.NewRouter(message.RouterConfig{CloseTimeout: time.Second}, logger)
		if err != nil {
			return nil, err
		}
		r.AddConsumerHandler("record", "topic", bus, func(msg *message.Message) error {
			received <- string(msg.Payload)
			return nil
		})
		return r, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	// gochannel drops messages published before the subscription exists.
	deadline := time.After(2 * time.Second)
	for got := false; !got; {
		if err := bus.Publish("topic", message.NewMessage(watermill.NewUUID(), []byte("hello"))); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
		select {
		case payload := <-received:
			if payload != "hello" {
				t.Errorf("payload = %q", payload)
			}
			got = true
		case <-time.After(20 * time.Millisecond):
		case <-deadline:
			t.Fatal("message never delivered")
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Serve() did not return")
	}
	if builds.Load() != 1 || svc.String() != "engagement-sync" {
		t.Errorf("builds = %d name = %q", builds.Load(), svc)
	}
}

func TestMessageRouterService_BuildError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	svc := NewMessageRouterService("sync", func() (*message.Router, error) { return nil, boom })
	if err := svc.Serve(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Serve() = %v, want boom", err)
	}
}
