package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	mqlink "github.com/glimte/mqlink-go"
	"github.com/glimte/mqlink-go/contracts"
	"github.com/glimte/mqlink-go/directory"
	"github.com/glimte/mqlink-go/health"
	"github.com/glimte/mqlink-go/messaging"
)

var (
	// Version information
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mqlink",
		Short: "Send and receive messages on a single queue",
		Long: `Mqlink is a command line front end for the mqlink-go messaging library.
It sends and receives messages on one queue, addressed either directly by
broker URL or by alias through a registry file.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildTime),
	}

	// Global flags
	var (
		brokerURL   string
		queueName   string
		dirPath     string
		factoryName string
		verbose     bool
	)

	rootCmd.PersistentFlags().StringVarP(&brokerURL, "url", "u", "", "Broker URL; when empty the registry file is used")
	rootCmd.PersistentFlags().StringVarP(&queueName, "queue", "q", "", "Queue name, or registry alias in directory mode")
	rootCmd.PersistentFlags().StringVarP(&dirPath, "directory", "d", "", "Registry file path (default $MQLINK_DIRECTORY or ./mqlink.yaml)")
	rootCmd.PersistentFlags().StringVar(&factoryName, "name", "", "Connection factory entry to use from the registry")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	newConnector := func() (*mqlink.Connector, error) {
		if queueName == "" {
			return nil, fmt.Errorf("--queue is required")
		}
		var opts []mqlink.ConnectorOption
		if verbose {
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
			opts = append(opts, mqlink.WithLogger(logger))
		}
		if brokerURL != "" {
			return mqlink.NewDirectConnector(brokerURL, queueName, opts...), nil
		}
		if dirPath != "" {
			opts = append(opts, mqlink.WithDirectory(dirPath))
		}
		if factoryName != "" {
			opts = append(opts, mqlink.WithFactoryName(factoryName))
		}
		return mqlink.NewConnector(queueName, opts...), nil
	}

	// Send command
	var (
		filePath    string
		contentType string
		entries     []string
		intEntries  []string
	)
	sendCmd := &cobra.Command{
		Use:   "send [text...]",
		Short: "Send one message to the queue",
		Long: `Send the argument text as a text message, the contents of --file as a
bytes message, or --entry/--int-entry pairs as a map message.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			modes := 0
			if len(args) > 0 {
				modes++
			}
			if filePath != "" {
				modes++
			}
			if len(entries)+len(intEntries) > 0 {
				modes++
			}
			if modes != 1 {
				return fmt.Errorf("provide exactly one of: message text, --file, or --entry/--int-entry")
			}

			conn, err := newConnector()
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx := context.Background()

			switch {
			case filePath != "":
				data, err := os.ReadFile(filePath)
				if err != nil {
					return fmt.Errorf("failed to read payload: %w", err)
				}
				if err := conn.SendBytes(ctx, data, contentType); err != nil {
					return fmt.Errorf("failed to send: %w", err)
				}
				fmt.Printf("Sent %d bytes to %s\n", len(data), conn.QueueName())

			case len(entries)+len(intEntries) > 0:
				builder, err := conn.StartMapMessage(ctx)
				if err != nil {
					return fmt.Errorf("failed to start map message: %w", err)
				}
				for _, entry := range entries {
					key, value, ok := strings.Cut(entry, "=")
					if !ok {
						return fmt.Errorf("invalid --entry %q, expected key=value", entry)
					}
					builder.AddString(key, value)
				}
				for _, entry := range intEntries {
					key, raw, ok := strings.Cut(entry, "=")
					if !ok {
						return fmt.Errorf("invalid --int-entry %q, expected key=value", entry)
					}
					value, err := strconv.ParseInt(raw, 10, 64)
					if err != nil {
						return fmt.Errorf("invalid --int-entry %q: %w", entry, err)
					}
					builder.AddInt(key, value)
				}
				if err := builder.Send(ctx); err != nil {
					return fmt.Errorf("failed to send: %w", err)
				}
				fmt.Printf("Sent map message with %d entries to %s\n", len(entries)+len(intEntries), conn.QueueName())

			default:
				if err := conn.SendText(ctx, strings.Join(args, " ")); err != nil {
					return fmt.Errorf("failed to send: %w", err)
				}
				fmt.Printf("Sent text message to %s\n", conn.QueueName())
			}
			return nil
		},
	}
	sendCmd.Flags().StringVarP(&filePath, "file", "f", "", "Send the file contents as a bytes message")
	sendCmd.Flags().StringVar(&contentType, "content-type", "", "Content type for --file; sniffed when empty")
	sendCmd.Flags().StringArrayVar(&entries, "entry", nil, "String entry as key=value; repeatable, sends a map message")
	sendCmd.Flags().StringArrayVar(&intEntries, "int-entry", nil, "Integer entry as key=value; repeatable")

	// Receive command
	var (
		timeoutSec int
		noWait     bool
		count      int
	)
	recvCmd := &cobra.Command{
		Use:   "recv",
		Short: "Receive messages from the queue",
		Long:  "Receive up to --count messages, waiting up to --timeout seconds for each.",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := newConnector()
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx := context.Background()
			received := 0
			for received < count {
				var msg contracts.Message
				if noWait {
					msg, err = conn.ConsumeNoWait(ctx)
				} else {
					msg, err = conn.ConsumeTimeout(ctx, time.Duration(timeoutSec)*time.Second)
				}
				if err != nil {
					return fmt.Errorf("failed to receive: %w", err)
				}
				if msg == nil {
					break
				}
				printMessage(msg)
				received++
			}
			if received == 0 {
				fmt.Println("No messages")
			}
			return nil
		},
	}
	recvCmd.Flags().IntVarP(&timeoutSec, "timeout", "t", 5, "Seconds to wait for each message; 0 polls without waiting")
	recvCmd.Flags().BoolVar(&noWait, "no-wait", false, "Poll without waiting instead of using --timeout")
	recvCmd.Flags().IntVarP(&count, "count", "n", 1, "Maximum number of messages to receive")

	// Health command
	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check broker reachability or registry configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := health.NewRegistry()

			if brokerURL != "" {
				registry.Register(health.NewCheckerFunc("broker", func(ctx context.Context) health.CheckResult {
					return probeBroker(ctx, brokerURL)
				}))
			} else {
				path := dirPath
				if path == "" {
					path = directory.DefaultPath()
				}
				checker := health.NewDirectoryChecker("directory", path)
				if factoryName != "" {
					checker = checker.WithFactoryName(factoryName)
				}
				registry.Register(checker)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			overall := registry.Check(ctx)
			printHealth(overall)

			if overall.Status == health.StatusUnhealthy {
				return fmt.Errorf("unhealthy")
			}
			return nil
		},
	}

	rootCmd.AddCommand(sendCmd, recvCmd, healthCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

// probeBroker resolves a connection factory for url and dials it once.
func probeBroker(ctx context.Context, url string) health.CheckResult {
	start := time.Now()
	result := health.CheckResult{Name: "broker", Timestamp: start}

	factory, err := messaging.OpenFactory(url)
	if err != nil {
		result.Status = health.StatusUnhealthy
		result.Message = "no transport for URL"
		result.Error = err.Error()
		result.Duration = time.Since(start)
		return result
	}

	conn, err := factory.CreateConnection(ctx)
	if err != nil {
		result.Status = health.StatusUnhealthy
		result.Message = "broker unreachable"
		result.Error = err.Error()
		result.Duration = time.Since(start)
		return result
	}
	_ = conn.Close()

	result.Status = health.StatusHealthy
	result.Message = "broker reachable"
	result.Duration = time.Since(start)
	return result
}

// Output formatting functions

func printMessage(msg contracts.Message) {
	fmt.Printf("Message %s:\n", msg.GetID())
	fmt.Printf("  Kind: %s\n", msg.GetKind())
	fmt.Printf("  Timestamp: %s\n", msg.GetTimestamp().Format(time.RFC3339))
	if cid := msg.GetCorrelationID(); cid != "" {
		fmt.Printf("  Correlation ID: %s\n", cid)
	}

	switch m := msg.(type) {
	case *contracts.TextMessage:
		fmt.Printf("  Text: %s\n", m.Text)
	case *contracts.MapMessage:
		fmt.Printf("  Entries:\n")
		for key, value := range m.Entries {
			fmt.Printf("    %s: %s\n", key, value.String())
		}
	case *contracts.BytesMessage:
		fmt.Printf("  Content Type: %s\n", m.ContentType)
		fmt.Printf("  Size: %d bytes\n", len(m.Data))
	}
	fmt.Println(strings.Repeat("-", 60))
}

func printHealth(overall health.OverallHealth) {
	fmt.Printf("Overall: %s (%s)\n", overall.Status, overall.Duration.Truncate(time.Millisecond))
	for name, check := range overall.Checks {
		fmt.Printf("  %-12s %-10s %s\n", name, check.Status, check.Message)
		if check.Error != "" {
			fmt.Printf("  %-12s error: %s\n", "", check.Error)
		}
	}
}
