// cmd/vadmin/main.go
//
// This is the entry point for the vadmin CLI.
//
// `vadmin tui <version>` opens the interactive admin widget. The schedule,
// unschedule and priority subcommands send the same actions without a UI.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kingrea/vadmin/internal/admin"
	"github.com/kingrea/vadmin/internal/config"
	"github.com/kingrea/vadmin/internal/logbook"
	"github.com/kingrea/vadmin/internal/versionapi"
)

var (
	configFile string
	serviceURL string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vadmin",
		Short:         "vadmin activates, aborts and reprioritizes CI versions",
		Long:          "vadmin sends admin actions for a CI version to the version action service.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "the config file to use (default $VADMIN_HOME/config.yaml)")
	root.PersistentFlags().StringVar(&serviceURL, "url", "", "base URL of the version action service")
	root.AddCommand(
		newTUICmd(),
		newScheduleCmd(),
		newUnscheduleCmd(),
		newPriorityCmd(),
		newShowCmd(),
		newConfigCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", admin.UserMessage(err))
		os.Exit(1)
	}
}

// session bundles what every subcommand needs.
type session struct {
	cfg     *config.Config
	client  *versionapi.Client
	logbook *logbook.Logbook
}

func openSession() (*session, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	lb, err := logbook.New(cfg.LogPath(), cfg.LogLevel())
	if err != nil {
		// keep working without a log file
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		lb = logbook.Discard()
	}
	settings := versionapi.SettingsFromConfig(cfg).WithBaseURL(serviceURL)
	return &session{
		cfg:     cfg,
		client:  versionapi.NewClient(settings),
		logbook: lb,
	}, nil
}

func (s *session) dispatcher(versionID string) *admin.Dispatcher {
	return admin.NewDispatcher(s.client, versionID, admin.WithLogbook(s.logbook))
}

func (s *session) Close() {
	_ = s.logbook.Close()
}
