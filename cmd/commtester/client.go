package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"commtester/internal/codec"
	"commtester/internal/peer"
	"commtester/internal/pkg/logger"
	"commtester/internal/transport"
)

func newClientCmd() *cobra.Command {
	var (
		customerId       int
		clientId         int
		msgType          int
		size             int
		count            int
		gapSecs          float64
		payloadFile      string
		payloadHex       string
		payloadText      string
		startTransaction int
	)

	cmd := &cobra.Command{
		Use:   "client <addr:port>",
		Short: "Run the Crazy Client synthetic send/recv loop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set := 0
			for _, s := range []string{payloadFile, payloadHex, payloadText} {
				if s != "" {
					set++
				}
			}
			if set > 1 {
				return argError("--payload-file, --payload-hex and --payload-text are mutually exclusive")
			}

			override, err := resolveOverride(payloadFile, payloadHex, payloadText)
			if err != nil {
				return argError("%v", err)
			}

			cfg := peer.ClientConfig{
				CustomerId:       customerId,
				ClientId:         clientId,
				Type:             msgType,
				Size:             size,
				Count:            count,
				StartTransaction: startTransaction,
				Gap:              time.Duration(gapSecs * float64(time.Second)),
				Dialect:          dialectFor(legacy),
				Override:         override,
			}

			certs := transport.CertConfig{
				CAPath:   caPath,
				CertPath: defaultStr(certPath, fmt.Sprintf("client-%d-%d.crt", customerId, clientId)),
				KeyPath:  defaultStr(keyPath, fmt.Sprintf("client-%d-%d.key", customerId, clientId)),
			}

			return runClient(args[0], certs, cfg)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&customerId, "customer-id", 0, "customer id")
	flags.IntVar(&clientId, "client-id", 0, "client id")
	flags.IntVar(&msgType, "type", 384, "header message type")
	flags.IntVar(&size, "len", 16384, "synthetic payload size in bytes")
	flags.IntVar(&count, "count", -1, "number of messages to send (-1 = infinite)")
	flags.Float64Var(&gapSecs, "gap", 0, "seconds to sleep between messages")
	flags.StringVar(&payloadFile, "payload-file", "", "read payload bytes from this file")
	flags.StringVar(&payloadHex, "payload-hex", "", "payload bytes as a hex string")
	flags.StringVar(&payloadText, "payload-text", "", "payload bytes as literal text")
	flags.IntVar(&startTransaction, "start-transaction", 0, "first transaction id / synthetic payload seed")

	cmd.MarkFlagRequired("customer-id")
	cmd.MarkFlagRequired("client-id")

	return cmd
}

func resolveOverride(file, hexStr, text string) (*peer.PayloadOverride, error) {
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("--payload-file: %w", err)
		}
		return &peer.PayloadOverride{Bytes: data, Source: "file"}, nil
	case hexStr != "":
		data, err := hex.DecodeString(hexStr)
		if err != nil {
			return nil, fmt.Errorf("--payload-hex: %w", err)
		}
		return &peer.PayloadOverride{Bytes: data, Source: "hex"}, nil
	case text != "":
		return &peer.PayloadOverride{Bytes: []byte(text), Source: "text"}, nil
	default:
		return nil, nil
	}
}

func dialectFor(legacy bool) codec.Dialect {
	if legacy {
		return codec.DialectV2
	}
	return codec.DialectV3
}

func defaultStr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// runClient dials addr, builds a Client, and runs it until completion or
// CTRL-C. CTRL-C cancels the context and is treated as clean termination
// (exit 0), matching the documented CLI contract.
func runClient(addr string, certs transport.CertConfig, cfg peer.ClientConfig) error {
	entry := logger.ConnectionEntry("client", cfg.CustomerId, cfg.ClientId)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	conn, err := transport.Dial(ctx, addr, legacy, certs)
	if err != nil {
		entry.Warnf("dial %s: %v", addr, err)
		return err
	}
	defer transport.Close(conn)
	entry.Infof("connected to %s", addr)

	client := peer.NewClient(conn, cfg)
	if err := client.Run(ctx); err != nil && ctx.Err() == nil {
		entry.Warnf("run: %v", err)
		return err
	}
	entry.Info("done")
	return nil
}
