package utils

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	serverReadTimeout  = 60 * time.Second
	serverWriteTimeout = 60 * time.Second
	serverDrainTimeout = 30 * time.Second

	inheritedEnvKey = "LISTENER_INHERITED"
	inheritedEnv    = inheritedEnvKey + "=1"
	inheritedFd     = 3
)

// GraceServer serves handler on addr until SIGTERM drains it. On SIGUSR2 it
// forks a fresh copy of the binary that inherits the listener on fd 3, then
// drains the old process, so restarts drop no connections. The replacement
// detects the inherited listener through the environment.
func GraceServer(addr string, handler http.Handler) error {
	s := &gracefulServer{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  serverReadTimeout,
			WriteTimeout: serverWriteTimeout,
		},
		inherited: os.Getenv(inheritedEnvKey) != "",
		signals:   make(chan os.Signal, 1),
		drained:   make(chan struct{}),
	}
	return s.listenAndServe()
}

type gracefulServer struct {
	httpServer *http.Server
	listener   net.Listener
	inherited  bool
	signals    chan os.Signal
	drained    chan struct{}
}

func (s *gracefulServer) listenAndServe() error {
	ln, err := s.listen()
	if err != nil {
		return err
	}
	s.listener = ln

	go s.handleSignals()
	err = s.httpServer.Serve(ln)
	// Serve returns as soon as the listener closes; in-flight requests are
	// still draining until Shutdown finishes.
	<-s.drained
	return err
}

func (s *gracefulServer) listen() (net.Listener, error) {
	if s.inherited {
		ln, err := net.FileListener(os.NewFile(inheritedFd, ""))
		if err != nil {
			return nil, fmt.Errorf("inherit listener: %w", err)
		}
		return ln, nil
	}
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
	}
	return ln, nil
}

func (s *gracefulServer) handleSignals() {
	signal.Notify(s.signals, syscall.SIGTERM, syscall.SIGUSR2)

	for sig := range s.signals {
		switch sig {
		case syscall.SIGTERM:
			Sugar.Info("SIGTERM received, draining")
			s.drain()
		case syscall.SIGUSR2:
			Sugar.Info("SIGUSR2 received, starting replacement process")
			pid, err := s.forkReplacement()
			if err != nil {
				Sugar.Errorf("replacement failed to start, still serving: %v", err)
				continue
			}
			Sugar.Infof("replacement running with pid %d, draining old process", pid)
			s.drain()
		}
	}
}

func (s *gracefulServer) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), serverDrainTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		Sugar.Errorf("shutdown: %v", err)
	}
	close(s.drained)
}

// forkReplacement re-execs the binary with the listener fd appended after
// stdin, stdout and stderr, and the inheritance marker in the environment.
func (s *gracefulServer) forkReplacement() (int, error) {
	tcpLn, ok := s.listener.(*net.TCPListener)
	if !ok {
		return 0, fmt.Errorf("listener is %T, cannot pass its fd", s.listener)
	}
	file, err := tcpLn.File()
	if err != nil {
		return 0, fmt.Errorf("listener fd: %w", err)
	}

	env := []string{inheritedEnv}
	for _, e := range os.Environ() {
		if e != inheritedEnv {
			env = append(env, e)
		}
	}

	pid, err := syscall.ForkExec(os.Args[0], os.Args, &syscall.ProcAttr{
		Env:   env,
		Files: []uintptr{os.Stdin.Fd(), os.Stdout.Fd(), os.Stderr.Fd(), file.Fd()},
	})
	if err != nil {
		return 0, fmt.Errorf("forkexec: %w", err)
	}
	return pid, nil
}
