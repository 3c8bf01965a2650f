// Package server implements the LC-3 language server handlers.
package server

import (
	"fmt"
	"sync"

	"github.com/corymhall/lc3lsp/dispatch"
	"github.com/corymhall/lc3lsp/lsp"
	"github.com/corymhall/lc3lsp/metrics"
)

const (
	// Name is reported to the client as serverInfo.name.
	Name = "lc3_lsp"
	// Version is reported to the client as serverInfo.version.
	Version = "0.1.0"
)

type serverState int

const (
	serverCreated      = serverState(iota)
	serverInitializing // set once the server has received "initialize" request
	serverInitialized  // set once the server has received "initialized" request
	serverShutDown
)

func (s serverState) String() string {
	switch s {
	case serverCreated:
		return "created"
	case serverInitializing:
		return "initializing"
	case serverInitialized:
		return "initialized"
	case serverShutDown:
		return "shutDown"
	}
	return fmt.Sprintf("(unknown state: %d)", int(s))
}

// Server holds the handshake state and the outbound client. Document text
// lives in the dispatcher's store and is passed to each handler.
type Server struct {
	client  lsp.Client
	metrics *metrics.Metrics

	stateMu sync.Mutex
	state   serverState
}

// New creates a server that talks back through client. A nil m records no
// metrics.
func New(client lsp.Client, m *metrics.Metrics) *Server {
	return &Server{
		client:  client,
		metrics: m,
	}
}

// Register adds every handler of the server to r.
func (s *Server) Register(r *dispatch.Router) {
	r.HandleRequest(lsp.MethodInitialize, dispatch.RequestFunc(s.Initialize))
	r.HandleNotification(lsp.MethodInitialized, dispatch.NotificationFunc(s.Initialized))
	r.HandleShutdown(lsp.MethodShutdown, dispatch.RequestFunc(s.Shutdown))
	r.HandleExit(lsp.MethodExit, dispatch.NotificationFunc(s.Exit))

	r.HandleNotification(lsp.MethodDidOpen, dispatch.NotificationFunc(s.DidOpen))
	r.HandleNotification(lsp.MethodDidChange, dispatch.NotificationFunc(s.DidChange))

	r.HandleRequest(lsp.MethodCompletion, dispatch.RequestFunc(s.Completion))
	r.HandleRequest(lsp.MethodDefinition, dispatch.RequestFunc(s.Definition))
	r.HandleRequest(lsp.MethodHover, dispatch.RequestFunc(s.Hover))
}

// ExitCode is the process exit status once the dispatch loop has ended:
// 0 after a shutdown request, 1 otherwise.
func (s *Server) ExitCode() int {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.state == serverShutDown {
		return 0
	}
	return 1
}

func (s *Server) currentState() serverState {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}
