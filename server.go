package ircd

import (
	"crypto/tls"
	"net"
	"sync"

	"github.com/pkg/errors"
	"github.com/sourcegraph/conc"
)

// Server accepts connections and runs a session goroutine for each.
// Build one with New, optionally UseTLS, then Start.
type Server struct {
	state     *ServerState
	tlsConfig *tls.Config

	mu       sync.Mutex
	listener net.Listener

	shutdown     chan struct{}
	shutdownOnce sync.Once
	// Closed once the listener is bound. Lets tests dial :0 listeners.
	ready chan struct{}

	sessions *conc.WaitGroup
}

// New creates a server. Callback fields left nil get permissive
// defaults.
func New(settings ServerSettings, callbacks ServerCallbacks) *Server {
	return &Server{
		state:    newServerState(settings, callbacks.withDefaults()),
		shutdown: make(chan struct{}),
		ready:    make(chan struct{}),
		sessions: conc.NewWaitGroup(),
	}
}

// UseTLS makes the server speak TLS on its listener. Call before Start.
func (s *Server) UseTLS(config *tls.Config) {
	s.tlsConfig = config
}

// Addr returns the bound listen address, or nil before Start binds it.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start validates the settings, binds the listener, and serves until
// Shutdown. It returns nil on clean shutdown.
func (s *Server) Start() error {
	if err := s.state.settings.validate(); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", s.state.settings.ListenAddr)
	if err != nil {
		return errors.Wrap(err, "unable to listen")
	}
	if s.tlsConfig != nil {
		ln = tls.NewListener(ln, s.tlsConfig)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	close(s.ready)

	log.WithField("addr", ln.Addr().String()).Info("server listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return nil
			default:
			}
			return errors.Wrap(err, "unable to accept")
		}

		ok, err := s.state.callbacks.OnClientConnect(conn.RemoteAddr())
		if err != nil {
			log.WithField("addr", conn.RemoteAddr().String()).Infof(
				"connection refused: %s", err)
			ok = false
		}
		if !ok {
			_ = conn.Close()
			continue
		}

		log.WithField("addr", conn.RemoteAddr().String()).Info(
			"accepted connection")

		client := newClient(s.state, conn)
		s.state.addClient(client)
		s.sessions.Go(client.run)
	}
}

// Shutdown closes the listener and every live connection, then waits
// for the sessions to unwind. Safe to call more than once.
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdown)

		s.mu.Lock()
		if s.listener != nil {
			_ = s.listener.Close()
		}
		s.mu.Unlock()

		s.state.clientsMu.Lock()
		clients := make([]*Client, 0, len(s.state.clients))
		for _, c := range s.state.clients {
			clients = append(clients, c)
		}
		s.state.clientsMu.Unlock()

		for _, c := range clients {
			_ = c.conn.close()
		}

		s.sessions.Wait()
		log.Info("server shut down")
	})
}
