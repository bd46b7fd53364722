package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gaicli/gai/internal/pkg/ai"
	apperrors "github.com/gaicli/gai/internal/pkg/errors"
)

// ChatService is a line based chat with a streaming model.
type ChatService struct {
	streamer ai.Streamer
	in       *bufio.Reader
	out      io.Writer
}

// NewChatService creates a ChatService reading questions from in.
func NewChatService(streamer ai.Streamer, in io.Reader, out io.Writer) *ChatService {
	return &ChatService{
		streamer: streamer,
		in:       bufio.NewReader(in),
		out:      out,
	}
}

// Ask streams the answer to prompt, printing chunks as they arrive.
func (s *ChatService) Ask(ctx context.Context, prompt string) error {
	fmt.Fprint(s.out, "AI: ")
	err := s.streamer.Stream(ctx, prompt, func(chunk string) error {
		_, werr := io.WriteString(s.out, chunk)
		return werr
	})
	fmt.Fprintln(s.out)
	return err
}

// Run reads questions until exit, quit, end of input or cancellation.
// A failed request is reported and the session continues.
func (s *ChatService) Run(ctx context.Context, model string) error {
	fmt.Fprintf(s.out, "Starting interactive chat with model: %s\n", model)
	fmt.Fprintln(s.out, "Type 'exit' or 'quit' to end the session.")

	for {
		if ctx.Err() != nil {
			fmt.Fprintln(s.out, "\nExiting chat.")
			return nil
		}

		fmt.Fprint(s.out, "You: ")
		line, err := s.in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out, "\nExiting chat.")
				return nil
			}
			return err
		}

		prompt := strings.TrimSpace(line)
		switch strings.ToLower(prompt) {
		case "exit", "quit":
			fmt.Fprintln(s.out, "Exiting chat.")
			return nil
		case "":
			continue
		}

		if err := s.Ask(ctx, prompt); err != nil {
			apperrors.Debug("chat request failed: %v", err)
			fmt.Fprintln(s.out, apperrors.FormatError(err))
		}
	}
}
