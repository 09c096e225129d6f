// Command titlechat talks to Title Tom from a terminal. The dialogue runs
// locally; record lookups and free-form questions go to a running server.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"titlechat/internal/chat"
	"titlechat/internal/conversation"
	"titlechat/internal/logging"
	"titlechat/internal/records"
	"titlechat/internal/region"
)

var (
	serverURL  string
	regionsDir string
	noDelay    bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "titlechat",
	Short: "Chat with Title Tom in the terminal",
	Long: `Run the Title Tom conversation in a terminal.

Record checks use the server's /check-client endpoint and fall back to
reading /data/client_data.csv. Free-form questions go through /chat.
Buttons are shown numbered; type the number or the label.`,
	RunE: runChat,
}

func init() {
	rootCmd.Flags().StringVarP(&serverURL, "server", "s", "http://localhost:3000", "Title Tom server base URL")
	rootCmd.Flags().StringVar(&regionsDir, "regions-dir", "", "Directory of extra region bundle YAML files")
	rootCmd.Flags().BoolVar(&noDelay, "no-delay", false, "Print bot messages without their typing delays")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runChat(cmd *cobra.Command, _ []string) error {
	level := "warn"
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(level)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	var extra fs.FS
	if regionsDir != "" {
		extra = os.DirFS(regionsDir)
	}
	regions, err := region.Default(extra, logger)
	if err != nil {
		return err
	}

	base := strings.TrimRight(serverURL, "/")
	lookup := records.NewFallback(
		records.NewRemoteLookup(base),
		records.NewCSVLookup(base+"/data/client_data.csv"),
		logger,
	)
	m := conversation.NewMachine(lookup, regions, chat.NewProxyClient(base), logger)

	out := cmd.OutOrStdout()
	p := &printer{w: out, delays: !noDelay}
	p.print(m.Start())

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "/quit" || line == "/exit" {
			return nil
		}

		in := conversation.Input{Text: line}
		if label, ok := p.choiceFor(line); ok {
			in = conversation.Input{Choice: label}
		}

		msgs, err := m.Submit(context.Background(), in)
		if err != nil {
			logger.Debug("titlechat: turn rejected", zap.Error(err))
			fmt.Fprintln(out, "  (that option isn't available right now)")
			continue
		}
		p.print(msgs)
	}
}

type printer struct {
	w       io.Writer
	delays  bool
	choices []string
}

func (p *printer) print(msgs []conversation.OutboundMessage) {
	var elapsed time.Duration
	for _, msg := range msgs {
		if p.delays && msg.Delay > elapsed {
			time.Sleep(msg.Delay - elapsed)
			elapsed = msg.Delay
		}
		if msg.Region != "" {
			fmt.Fprintf(p.w, "  [region: %s]\n", msg.Region)
		}
		if msg.Text != "" {
			text := msg.Text
			if msg.HTML {
				text = plainText(text)
			}
			fmt.Fprintf(p.w, "Tom: %s\n", text)
		}
		if len(msg.Choices) > 0 {
			p.choices = msg.Choices
			for i, c := range msg.Choices {
				fmt.Fprintf(p.w, "  %d) %s\n", i+1, c)
			}
		}
	}
}

// choiceFor maps a typed menu number to the label it stands for.
func (p *printer) choiceFor(line string) (string, bool) {
	var n int
	if _, err := fmt.Sscanf(line, "%d", &n); err != nil || fmt.Sprint(n) != line {
		return "", false
	}
	if n < 1 || n > len(p.choices) {
		return "", false
	}
	return p.choices[n-1], true
}
