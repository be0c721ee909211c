package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"Stash/internal/cli/api"
	"Stash/internal/config"
)

// Коды выхода
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// Dispatch выполняет команду из args и возвращает код выхода процесса.
func Dispatch(ctx context.Context, cfg *config.Config, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(Out, FormatGlobalUsage())
		return exitUsage
	}

	switch args[0] {
	case "help", "-h", "--help":
		return help(args[1:])
	}

	c, ok := Get(args[0])
	if !ok {
		fmt.Fprintf(Out, "Unknown command: %s\n\n", args[0])
		fmt.Fprint(Out, FormatGlobalUsage())
		return exitUsage
	}

	err := c.Run(ctx, cfg, args[1:])
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, ErrUsage):
		fmt.Fprintf(Out, "Usage: %s\n", c.Usage())
		return exitUsage
	default:
		fmt.Fprintf(Out, "%s error: %v\n", c.Name(), err)
		if hint := hintFor(err); hint != "" {
			fmt.Fprintln(Out, hint)
		}
		return exitFailure
	}
}

func help(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(Out, FormatGlobalUsage())
		return exitOK
	}
	c, ok := Get(args[0])
	if !ok {
		fmt.Fprintf(Out, "Unknown command: %s\n\n", args[0])
		fmt.Fprint(Out, FormatGlobalUsage())
		return exitUsage
	}
	fmt.Fprintf(Out, "%s\n\nUsage: %s\n", c.Description(), c.Usage())
	return exitOK
}

// hintFor подсказывает следующее действие для типичных ошибок.
func hintFor(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		return "hint: the stored token is expired or revoked, run `stash login`"
	}
	return ""
}
