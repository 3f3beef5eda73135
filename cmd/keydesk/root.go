package main

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/keydesk/keydesk/api"
	"github.com/keydesk/keydesk/cache"
	"github.com/keydesk/keydesk/config"
	"github.com/keydesk/keydesk/logger"
	"github.com/keydesk/keydesk/service"
	"github.com/keydesk/keydesk/session"
	"github.com/keydesk/keydesk/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// publicAnnotation marks commands that run without a session.
const publicAnnotation = "keydesk/public"

// app is the state shared by every command of one invocation.
type app struct {
	cfg     *config.Config
	logger  logger.Logger
	session *session.Session
	client  *api.Client
	cache   cache.Cache
	svc     *service.Service
	metrics *prometheus.Registry
	out     io.Writer
	in      io.Reader
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "keydesk",
		Short:         "Administra keys de licencia, clientes, lotes y tipos de key",
		Version:       api.Version + " (" + api.Commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	config.BindFlags(root)
	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newKeysCmd(a),
		newClientsCmd(a),
		newBatchesCmd(a),
		newKeyTypesCmd(a),
		newPermissionsCmd(a),
		newLoginsCmd(a),
		newDashboardCmd(a),
		newBrowseCmd(a),
	)
	return root
}

func public(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[publicAnnotation] = "true"
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	a.out = cmd.OutOrStdout()
	a.in = cmd.InOrStdin()

	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cfg.NewLogger()
	a.logger.Debug("configuration: %s", cfg)
	for _, w := range cfg.Warnings() {
		a.logger.Warn("%s", w)
	}

	if a.session, err = session.Load(cfg.SessionFile); err != nil {
		return err
	}
	if cmd.Annotations[publicAnnotation] == "" {
		if !a.session.Authenticated() {
			return errors.WithHint(session.ErrNotAuthenticated, "ejecuta keydesk login")
		}
		if a.session.Expired() {
			a.logger.Warn("the session token has expired, run keydesk login again")
		}
	}

	a.client = api.New(a.logger, cfg.APIURL, a.session, api.WithTimeout(cfg.Timeout))
	if a.cache, err = cfg.OpenCache(cmd.Context()); err != nil {
		return err
	}
	a.metrics = prometheus.NewRegistry()
	m, err := store.NewMetrics(a.metrics)
	if err != nil {
		return err
	}
	a.svc = service.New(a.client, a.cache, a.logger,
		store.WithCollectionTTL(cfg.CollectionTTL),
		store.WithMetrics(m),
		store.WithLoadTimeout(cfg.Timeout),
	)
	return nil
}

func (a *app) close() error {
	if a.cache == nil {
		return nil
	}
	err := a.cache.Close()
	a.cache = nil
	return err
}

// offset converts a 1-based page number to a record offset.
func (a *app) offset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * a.cfg.PageSize
}
