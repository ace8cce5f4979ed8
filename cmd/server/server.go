package main

import (
	"time"

	"github.com/JaimeStill/transflow/internal/config"
	"github.com/JaimeStill/transflow/internal/infrastructure"
)

// Server owns the infrastructure, the routed modules and the HTTP listener.
type Server struct {
	infra   *infrastructure.Infrastructure
	http    *httpServer
	version string
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra)
	modules.Mount(router)

	infra.Logger.Info("transflow initialized",
		"version", cfg.Version,
		"env", cfg.Env(),
		"addr", cfg.Server.Addr(),
		"auth_mode", cfg.Auth.Mode,
	)

	return &Server{
		infra:   infra,
		http:    newHTTPServer(&cfg.Server, router, infra.Logger),
		version: cfg.Version,
	}, nil
}

// Start brings up infrastructure then the listener. Readiness flips once
// every startup hook has finished.
func (s *Server) Start() error {
	if err := s.infra.Start(); err != nil {
		return err
	}
	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("transflow ready", "version", s.version)
	}()
	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("transflow shutting down", "timeout", timeout)
	if err := s.infra.Lifecycle.Shutdown(timeout); err != nil {
		return err
	}
	s.infra.Logger.Info("transflow stopped")
	return nil
}
