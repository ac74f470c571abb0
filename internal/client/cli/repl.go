package cli

import (
	"bufio"
	"context"
	"fmt"
	"sort"
	"strings"
)

// printlnFn and printFn are test seams for REPL output. In tests, replace
// them with a stub.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

// command is one REPL verb.
type command struct {
	usage      string
	needsLogin bool
	run        func(ctx context.Context, args []string) error
}

// execIface is the command surface the REPL needs. The real App satisfies
// it; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	commands() map[string]command
}

// runREPL reads one command per line from reader and dispatches it through
// the command table. The first token is the verb, the rest are arguments.
// "help", "exit" and "quit" are handled here. Errors returned by a command
// are printed and the loop goes on. The loop exits on EOF, on exit/quit or
// when ctx is done.
//
// The prompt, which carries the current status from statusFn, is printed
// only when interactive is set.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, interactive bool) {
	table := a.commands()

	for ctx.Err() == nil {
		if interactive {
			printFn(fmt.Sprintf("nobs%s> ", statusFn()))
		}
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		name, args := parts[0], parts[1:]

		switch name {
		case "help":
			printlnFn(helpText(table, a.isLoggedIn()))
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		cmd, ok := table[name]
		if !ok {
			printlnFn("Unknown command:", name)
			continue
		}
		if cmd.needsLogin && !a.isLoggedIn() {
			printlnFn("Please log in first (type 'login')")
			continue
		}
		if err := cmd.run(ctx, args); err != nil {
			printlnFn("Error:", err)
		}
	}
}

func helpText(table map[string]command, loggedIn bool) string {
	names := make([]string, 0, len(table))
	for name, c := range table {
		if c.needsLogin && !loggedIn {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %s\n", table[name].usage)
	}
	b.WriteString("  help\n  exit")
	return b.String()
}
