// Package commands — подкоманды CLI Stash и их реестр.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"Stash/internal/config"
)

// ErrUsage возвращается командой при неверных аргументах; диспетчер печатает Usage.
var ErrUsage = errors.New("usage")

// Command — одна подкоманда CLI.
type Command interface {
	// Name — имя, которое набирает пользователь, например "upload".
	Name() string
	Description() string
	// Usage — строка использования, например "login <email> <password>".
	Usage() string
	// Run получает аргументы без имени команды.
	Run(ctx context.Context, cfg *config.Config, args []string) error
}

// Группы команд в порядке вывода справки
const (
	groupAccount  = "Account"
	groupSubjects = "Subjects"
	groupFiles    = "Files"
	groupRemote   = "Remote storage"
)

var groupOrder = []string{groupAccount, groupSubjects, groupFiles, groupRemote}

type entry struct {
	group string
	cmd   Command
}

var registry = map[string]entry{}

// Out — writer для вывода CLI, в тестах подменяется буфером.
var Out io.Writer = os.Stdout

// RegisterCmd добавляет команду в реестр; вызывается из init() файла команды.
func RegisterCmd(group string, cmd Command) {
	if _, dup := registry[cmd.Name()]; dup {
		panic("commands: duplicate command " + cmd.Name())
	}
	registry[cmd.Name()] = entry{group: group, cmd: cmd}
}

// Get ищет команду по имени без учёта регистра.
func Get(name string) (Command, bool) {
	e, ok := registry[strings.ToLower(name)]
	return e.cmd, ok
}

// List возвращает команды группы, отсортированные по имени.
func List(group string) []Command {
	var list []Command
	for _, e := range registry {
		if e.group == group {
			list = append(list, e.cmd)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// FormatGlobalUsage собирает общую справку по всем командам.
func FormatGlobalUsage() string {
	var b strings.Builder
	b.WriteString("Stash CLI\n\n")
	b.WriteString("Usage:\n  stash [--base-url <host:port>] [--https] [--token-file <path>] <command> [args]\n")
	for _, g := range groupOrder {
		cmds := List(g)
		if len(cmds) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", g)
		for _, c := range cmds {
			fmt.Fprintf(&b, "  %-40s %s\n", c.Usage(), c.Description())
		}
	}
	b.WriteString("\nRun `stash help <command>` for details.\n")
	return b.String()
}
