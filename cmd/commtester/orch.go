package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"commtester/internal/peer"
	"commtester/internal/pkg/logger"
	"commtester/internal/transport"
)

func newOrchCmd() *cobra.Command {
	var (
		orchId    int
		rangeArgs []int
		show      bool
	)

	cmd := &cobra.Command{
		Use:   "orch <addr:port>",
		Short: "Run the Orchestrator Peer subscribe/echo loop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(rangeArgs) != 6 {
				return argError("--range needs exactly 6 values: msgType start/end, customerId start/end, clientId start/end")
			}

			cfg := peer.OrchConfig{
				OrchId:     orchId,
				MsgType:    peer.Range{Start: rangeArgs[0], End: rangeArgs[1]},
				CustomerId: peer.Range{Start: rangeArgs[2], End: rangeArgs[3]},
				ClientId:   peer.Range{Start: rangeArgs[4], End: rangeArgs[5]},
				Show:       show,
			}

			certs := transport.CertConfig{
				CAPath:   caPath,
				CertPath: defaultStr(certPath, "orch.crt"),
				KeyPath:  defaultStr(keyPath, "orch.key"),
			}

			return runOrch(args[0], certs, cfg)
		},
	}

	flags := cmd.Flags()
	flags.IntSliceVar(&rangeArgs, "range", nil, "msgType start end customerId start end clientId start end")
	flags.IntVar(&orchId, "orch-id", 0, "orchestrator id")
	flags.BoolVar(&show, "show", false, "print each received message")

	cmd.MarkFlagRequired("range")

	return cmd
}

func runOrch(addr string, certs transport.CertConfig, cfg peer.OrchConfig) error {
	entry := logger.ConnectionEntry("orch", 0, 0).WithField("orch_id", cfg.OrchId)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	conn, err := transport.Dial(ctx, addr, legacy, certs)
	if err != nil {
		entry.Warnf("dial %s: %v", addr, err)
		return err
	}
	defer transport.Close(conn)
	entry.Infof("connected to %s", addr)

	orch := peer.NewOrchestrator(conn, cfg)
	if cfg.Show {
		orch.OnFrame(func(raw []byte) {
			pterm.Printfln("received %d bytes: %x", len(raw), raw)
		})
	}

	if err := orch.Run(ctx); err != nil && ctx.Err() == nil {
		entry.Warnf("run: %v", err)
		return fmt.Errorf("orch run: %w", err)
	}
	entry.Info("done")
	return nil
}
