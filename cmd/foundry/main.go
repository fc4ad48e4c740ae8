// Command foundry is the operator CLI for the development supervisor. It
// initializes the persisted state, enqueues tasks, runs the control loop
// and inspects or halts a run in progress.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ai-supervisor-foundry/foundry/internal/adapter/redisstore"
	"github.com/ai-supervisor-foundry/foundry/internal/config"
	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

var (
	version   = "0.1.0"
	buildTime = "dev"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and maps errors onto exit codes: 0 on success, 2 on
// an invariant violation, 1 for everything recoverable.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, domain.ErrInvariantViolation) {
			return 2
		}
		return 1
	}
	return 0
}

// rootOptions carries the merged configuration: environment first, then any
// persistent flag the operator set explicitly.
type rootOptions struct {
	cfg config.Config

	redisHost   string
	redisPort   int
	stateKey    string
	queueName   string
	stateDB     int
	queueDB     int
	sandboxRoot string
}

func (o *rootOptions) bind(cmd *cobra.Command) {
	fl := cmd.PersistentFlags()
	fl.StringVar(&o.redisHost, "redis-host", "", "Redis host (overrides REDIS_HOST)")
	fl.IntVar(&o.redisPort, "redis-port", 0, "Redis port (overrides REDIS_PORT)")
	fl.StringVar(&o.stateKey, "state-key", "", "state blob key (overrides STATE_KEY)")
	fl.StringVar(&o.queueName, "queue-name", "", "task queue list key (overrides QUEUE_NAME)")
	fl.IntVar(&o.stateDB, "state-db", 0, "logical DB holding state (overrides STATE_DB)")
	fl.IntVar(&o.queueDB, "queue-db", 0, "logical DB holding the queue (overrides QUEUE_DB)")
	fl.StringVar(&o.sandboxRoot, "sandbox-root", "", "sandbox root directory (overrides SANDBOX_ROOT)")
}

func (o *rootOptions) load(cmd *cobra.Command) error {
	if err := config.LoadEnvFiles(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	fl := cmd.Flags()
	if fl.Changed("redis-host") {
		cfg.RedisHost = o.redisHost
	}
	if fl.Changed("redis-port") {
		cfg.RedisPort = o.redisPort
	}
	if fl.Changed("state-key") {
		cfg.StateKey = o.stateKey
	}
	if fl.Changed("queue-name") {
		cfg.QueueName = o.queueName
	}
	if fl.Changed("state-db") {
		cfg.StateDB = o.stateDB
	}
	if fl.Changed("queue-db") {
		cfg.QueueDB = o.queueDB
	}
	if fl.Changed("sandbox-root") {
		cfg.SandboxRoot = o.sandboxRoot
	}
	if cfg.StateDB == cfg.QueueDB {
		return fmt.Errorf("state-db and queue-db must differ, both are %d", cfg.StateDB)
	}
	o.cfg = cfg
	return nil
}

// openState connects to the logical DB holding the state blob and the
// circuit breaker keys.
func (o *rootOptions) openState(ctx context.Context) (*redisstore.Store, error) {
	s := redisstore.New(redisstore.Options{
		Addr:     o.cfg.RedisAddr(),
		Password: o.cfg.RedisPassword,
		DB:       o.cfg.StateDB,
	})
	if err := s.Ping(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("redis %s db %d: %w", o.cfg.RedisAddr(), o.cfg.StateDB, err)
	}
	return s, nil
}

// openQueue connects to the logical DB holding the task queue.
func (o *rootOptions) openQueue(ctx context.Context) (*redisstore.Store, error) {
	s := redisstore.New(redisstore.Options{
		Addr:     o.cfg.RedisAddr(),
		Password: o.cfg.RedisPassword,
		DB:       o.cfg.QueueDB,
	})
	if err := s.Ping(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("redis %s db %d: %w", o.cfg.RedisAddr(), o.cfg.QueueDB, err)
	}
	return s, nil
}

func rootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "foundry",
		Short:         "Supervisor for autonomous AI-assisted development",
		Long:          "Foundry drives AI coding agents through a persistent control loop:\ntasks go in a Redis queue, agents implement them in a sandboxed\nworkspace, and a validation pipeline decides what counts as done.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return opts.load(cmd)
		},
	}
	opts.bind(cmd)

	cmd.AddCommand(
		newInitStateCmd(opts),
		newSetGoalCmd(opts),
		newEnqueueCmd(opts),
		newStartCmd(opts),
		newHaltCmd(opts),
		newResumeCmd(opts),
		newStatusCmd(opts),
		newMetricsCmd(opts),
		newVersionCmd(),
	)
	return cmd
}
