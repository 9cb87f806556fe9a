package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ZaguanLabs/glosslive"
	"github.com/spf13/cobra"
)

type routeFlags struct {
	from string
	to   string
}

func (f *routeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "source language (KO or JA); detect from the script when empty")
	cmd.Flags().StringVar(&f.to, "to", "", "target language (default: KO when --from is set)")
}

func (f *routeFlags) request(text, apiKey string) glosslive.Request {
	return glosslive.Request{
		Text:       text,
		APIKey:     apiKey,
		AutoDetect: f.from == "" && f.to == "",
		From:       glosslive.Language(f.from),
		To:         glosslive.Language(f.to),
	}
}

func (c *cli) listenCommand() *cobra.Command {
	var (
		route routeFlags
		lang  string
	)

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Translate transcript lines from stdin into a new session",
		Long: `Read recognised transcript lines from standard input, translate each one
in order and record it in a fresh history session. The session is saved
when input ends or the process is interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if lang == "" {
				lang = a.cfg.ListenLanguage
			}
			return listen(cmd.Context(), a, c.stdin, c.stdout, &route, strings.ToLower(lang))
		},
	}

	route.register(cmd)
	cmd.Flags().StringVar(&lang, "lang", "", "listening language recorded on the session: ko or ja (default: LISTEN_LANGUAGE)")
	return cmd
}

// listen translates lines one at a time so history order follows input order.
func listen(ctx context.Context, a *app, in io.Reader, out io.Writer, route *routeFlags, lang string) error {
	session, err := a.store.CreateSession(ctx, lang)
	if err != nil {
		return err
	}
	a.logger.Infow("listening", "session", session.ID, "language", lang)

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	count := 0
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			result, err := a.translator.Translate(ctx, route.request(line, a.apiKey("")))
			if err != nil {
				fmt.Fprintf(out, "! %s\n", glosslive.UserMessage(err))
				continue
			}

			detected := glosslive.LowerCode(result.DetectedSourceLang)
			if _, err := a.store.Append(ctx, result.Source, result.Translated, detected); err != nil {
				return err
			}
			count++
			fmt.Fprintf(out, "[%s→%s] %s\n", result.DetectedSourceLang, result.TargetLang, result.Translated)
		}
	}

	// Save even when interrupted; the listening context may already be done.
	if err := a.store.Stop(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	a.logger.Infow("session saved", "session", session.ID, "items", count)

	select {
	case err := <-scanErr:
		if err != nil {
			return fmt.Errorf("reading transcripts: %w", err)
		}
	default:
	}
	return nil
}

func (c *cli) translateCommand() *cobra.Command {
	var (
		route       routeFlags
		apiKey      string
		asJSON      bool
		record      bool
		file        string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "translate [text]",
		Short: "Translate a single text, or every line of a file",
		Args: func(cmd *cobra.Command, args []string) error {
			if file == "" && len(args) == 0 {
				return errors.New("text to translate or --file is required")
			}
			if file != "" && len(args) > 0 {
				return errors.New("pass either text or --file, not both")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if file != "" {
				return c.translateFile(cmd.Context(), a, file, &route, a.apiKey(apiKey), concurrency)
			}

			text := strings.Join(args, " ")
			result, err := a.translator.Translate(cmd.Context(), route.request(text, a.apiKey(apiKey)))
			if err != nil {
				return errors.New(glosslive.UserMessage(err))
			}

			if record {
				if err := a.recordLatest(cmd.Context(), result); err != nil {
					return err
				}
			}

			if asJSON {
				enc := json.NewEncoder(c.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			fmt.Fprintln(c.stdout, result.Translated)
			return nil
		},
	}

	route.register(cmd)
	cmd.Flags().StringVar(&apiKey, "api-key", "", "translation API key (default: DEEPL_API_KEY or OPENAI_API_KEY)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	cmd.Flags().BoolVar(&record, "record", false, "append the translation to the most recent history session (a new one when none exist)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "translate each non-empty line of this file (- for stdin)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "parallel requests when translating a file")
	return cmd
}

// translateFile translates unrelated lines in parallel and prints them in input order.
func (c *cli) translateFile(ctx context.Context, a *app, path string, route *routeFlags, apiKey string, concurrency int) error {
	var in io.Reader = c.stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		in = f
	}

	var reqs []glosslive.Request
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			reqs = append(reqs, route.request(line, apiKey))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	failed := 0
	for _, r := range a.translator.TranslateBatch(ctx, reqs, concurrency) {
		if r.Err != nil {
			failed++
			fmt.Fprintf(c.stdout, "! %s\n", glosslive.UserMessage(r.Err))
			continue
		}
		fmt.Fprintln(c.stdout, r.Result.Translated)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d lines failed", failed, len(reqs))
	}
	return nil
}
