package main

import (
	"StockAnalyser/internal/server"

	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			rec := a.openRecorder()
			defer rec.Close()

			s := server.New(addr, server.Resources{
				Service:  a.service,
				Recorder: rec,
				Defaults: a.cfg.Request(""),
				Logger:   &a.logger,
			})
			ctx, cancel := signalContext()
			defer cancel()

			a.logger.Info().Str("addr", addr).Msg("serving api")
			return server.Serve(ctx, s, &a.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to server.addr)")
	return cmd
}
