package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/luanzeba/gh-csm/cmd"
	"pkt.systems/psi"
	"pkt.systems/pslog"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole, MinLevel: pslog.WarnLevel}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	err := cmd.Execute(ctx)
	var exitErr *cmd.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		cmd.PrintError(err)
	}
	return cmd.ExitCode(err)
}
