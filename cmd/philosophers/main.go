package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/alecthomas/kong"

	"github.com/block/unsync"
	"github.com/block/unsync/executor"
	"github.com/block/unsync/internal/log"
)

var version = "dev"

var cli struct {
	Version      kong.VersionFlag `help:"Show version information."`
	LogConfig    log.Config       `embed:"" prefix:"log-" group:"Logging:"`
	Philosophers int              `default:"5" help:"Number of philosophers (and of shared resources)."`
	Rounds       int              `default:"100" help:"Rounds of eating per philosopher."`
	Jitter       int              `default:"10" help:"Upper bound on random yields between steps."`
	Seed         uint64           `default:"0" help:"Random seed; 0 seeds from entropy."`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Description(`Dining philosophers contending for unsync mutexes on a single-threaded cooperative executor.`),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	logger := log.Configure(os.Stderr, cli.LogConfig)
	ctx := log.ContextWithLogger(context.Background(), logger)

	seed := cli.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, 0))

	resources := make([]*unsync.Mutex[int], cli.Philosophers)
	for i := range resources {
		resources[i] = unsync.New(i)
	}

	e := executor.New()
	for i := range cli.Philosophers {
		first, second := resources[i], resources[(i+1)%cli.Philosophers]
		if i == cli.Philosophers-1 {
			// The last philosopher reaches for their resources in the
			// opposite order. Without this the table forms a cycle of
			// tasks each holding one resource and waiting on the next,
			// and every task parks forever.
			first, second = resources[0], resources[cli.Philosophers-1]
		}
		e.Spawn(fmt.Sprintf("philosopher-%d", i), &philosopher{
			id:     i,
			first:  first,
			second: second,
			rounds: cli.Rounds,
			jitter: cli.Jitter,
			rng:    rng,
			logger: logger,
		})
	}

	err := e.Run(ctx)
	kctx.FatalIfErrorf(err)
	logger.Infof("The table is cleared: %d philosophers ate %d rounds each", cli.Philosophers, cli.Rounds)
}
