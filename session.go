// session.go
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// Session runs the console dialogue: pick a file, print its table, read
// one formula and print the result.
type Session struct {
	in     *bufio.Reader
	out    io.Writer
	cfg    *Config
	eval   *Evaluator
	logger *zap.Logger
}

func NewSession(in io.Reader, out io.Writer, cfg *Config, logger *zap.Logger) *Session {
	return &Session{
		in:     bufio.NewReader(in),
		out:    out,
		cfg:    cfg,
		eval:   NewEvaluator(cfg.Mode(), logger),
		logger: logger,
	}
}

// Run asks for a file unless one is given, then shows it and evaluates one
// formula. Ingestion errors are returned; formula errors are printed as the
// result.
func (s *Session) Run(ctx context.Context, file string) error {
	if file == "" {
		chosen, ok, err := s.chooseFile()
		if err != nil || !ok {
			return err
		}
		file = chosen
	}

	t, err := LoadFile(ctx, file, s.cfg.Delimiter)
	if err != nil {
		return err
	}
	s.logger.Info("table loaded",
		zap.String("file", file),
		zap.Int("columns", len(t.Header)),
		zap.Int("rows", len(t.Rows)),
	)
	if err := RenderTable(s.out, t); err != nil {
		return err
	}

	formula, err := s.ask("Enter a formula: ")
	if errors.Is(err, io.EOF) && formula == "" {
		return nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	fmt.Fprintln(s.out, s.eval.Evaluate(formula, t.Cells))
	return nil
}

// chooseFile offers the default file and falls back to asking for a name.
// ok is false when the answer was neither yes nor no.
func (s *Session) chooseFile() (string, bool, error) {
	answer, err := s.ask(fmt.Sprintf("Do you want to use the default file(%s)?(yes/no): ", s.cfg.DefaultFile))
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, err
	}
	switch strings.ToLower(answer) {
	case "yes":
		fmt.Fprintf(s.out, "Using default file: %s\n", s.cfg.DefaultFile)
		return s.cfg.DefaultFile, true, nil
	case "no":
		name, err := s.ask("Enter the name of the file: ")
		if err != nil && !errors.Is(err, io.EOF) {
			return "", false, err
		}
		fmt.Fprintf(s.out, "Using custom file: %s\n", name)
		return name, true, nil
	}
	fmt.Fprintln(s.out, `Invalid input. Please enter "yes" or "no".`)
	return "", false, nil
}

// ask prints prompt and reads one line without its line ending. At end of
// input it returns whatever was read together with io.EOF.
func (s *Session) ask(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	line, err := s.in.ReadString('\n')
	return strings.TrimSpace(line), err
}
