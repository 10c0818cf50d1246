// Command pokercfr trains, evaluates, and plays CFR+/RNR/DBR poker
// strategies over the games pkg/game defines, per spec.md §6's CLI
// surface. Grounded on lox-pokerforbots/cmd/holdem/main.go's kong CLI +
// charmbracelet/log setup idiom.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/mkemp/pokercfr/internal/config"
	"github.com/mkemp/pokercfr/pkg/errs"
	"github.com/mkemp/pokercfr/pkg/game"
)

// CLI is the top-level kong command struct: one field per subcommand,
// plus the flags shared across all of them.
type CLI struct {
	LogLevel string `help:"Set the log level" enum:"debug,info,warn,error" default:"info"`
	LogFile  string `help:"The logfile to write logs to" default:"pokercfr.log"`
	Config   string `help:"Optional .hcl file with CFR+/RNR/DBR/portfolio options" default:"pokercfr.hcl"`

	Train          TrainCmd          `cmd:"" help:"Train a CFR or CFR+ strategy"`
	BestResponse   BestResponseCmd   `cmd:"best-response" help:"Compute an exact best response to a strategy file"`
	Evaluate       EvaluateCmd       `cmd:"" help:"Play two strategy files against each other and print the utility vector"`
	BuildPortfolio BuildPortfolioCmd `cmd:"build-portfolio" help:"Train RNR responses against a set of opponents and greedily select a portfolio"`
	Play           PlayCmd           `cmd:"" help:"Play a trained strategy against a dealer session"`
}

// appContext is threaded to every subcommand's Run method via kong's
// bindings, carrying the things every command needs: a logger and the
// resolved option set.
type appContext struct {
	Logger *log.Logger
	Config *config.Config
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pokercfr"),
		kong.Description("Train and evaluate CFR+/RNR/DBR poker strategies."),
	)

	logger, closer, err := createLogger(cli.LogFile, cli.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "creating logger:", err)
		ctx.Exit(errs.ExitCode(err))
	}
	defer closer()

	cfg, err := config.Load(cli.Config)
	if err != nil {
		logger.Error("loading config", "error", err)
		ctx.Exit(errs.ExitCode(err))
	}

	app := &appContext{Logger: logger, Config: cfg}
	if err := ctx.Run(app); err != nil {
		logger.Error("command failed", "error", err)
		ctx.Exit(errs.ExitCode(err))
	}
	ctx.Exit(0)
}

func createLogger(logFile, level string) (*log.Logger, func() error, error) {
	nilCloser := func() error { return nil }

	parsedLevel, err := log.ParseLevel(level)
	if err != nil {
		return nil, nilCloser, errs.Wrap(errs.ParameterOutOfRange, err, "parsing log level %q", level)
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nilCloser, errs.Wrap(errs.IOFailure, err, "opening log file %s", logFile)
	}

	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Prefix:          "pokercfr",
		TimeFormat:      "15:04:05",
		Level:           parsedLevel,
	})
	return logger, f.Close, nil
}

// loadGame resolves a game name from the CLI into the corresponding
// built-in Game record. Only the two the core ships are supported; a real
// game-definition file reader is an external collaborator's job (spec.md §1).
func loadGame(name string) (*game.Game, error) {
	switch name {
	case "kuhn":
		return game.Kuhn(), nil
	case "leduc":
		return game.Leduc(), nil
	default:
		return nil, errs.New(errs.UnsupportedGame, "unknown game %q, want kuhn or leduc", name)
	}
}
