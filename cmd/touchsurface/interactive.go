package main

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"
)

func getPrompt() string {
	return "touchsurface> "
}

func startInteractiveMode() error {
	fmt.Print(getBanner())
	fmt.Println("Entering interactive mode. Type 'help' for commands, 'exit' to quit.")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:              getPrompt(),
		HistoryFile:         "/tmp/touchsurface-history",
		AutoComplete:        buildCompleter(),
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		args := strings.Fields(line)

		switch args[0] {
		case "exit", "quit":
			fmt.Println("Goodbye!")
			return nil
		case "clear":
			fmt.Print("\033[H\033[2J")
		case "help", "?":
			showInteractiveHelp(args)
		default:
			if err := executeCobraCommand(args); err != nil {
				errorColor.Printf("Error: %v\n", err)
			}
		}
	}

	return nil
}

// executeCobraCommand re-invokes the root command with a fresh set of
// args, the same way a new process invocation would, so the
// interactive shell and a one-shot CLI call share exactly one
// implementation per subcommand.
func executeCobraCommand(args []string) error {
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func showInteractiveHelp(args []string) {
	if len(args) > 1 {
		if cmd, _, err := rootCmd.Find([]string{args[1]}); err == nil && cmd != rootCmd {
			cmd.Help()
			return
		}
		fmt.Printf("%s Command not found: %s\n", errorColor.Sprint("✗"), args[1])
		return
	}

	fmt.Println(successColor.Sprint("\nAvailable commands:"))
	for _, sub := range rootCmd.Commands() {
		if sub.Hidden || !sub.IsAvailableCommand() {
			continue
		}
		fmt.Printf("  %-15s %s\n", cmdColor.Sprint(sub.Name()), sub.Short)
	}
	fmt.Println(grayColor.Sprint("\nclear          Clear the screen"))
	fmt.Println(grayColor.Sprint("exit           Exit touchsurface"))
	fmt.Println(infoColor.Sprint("\nUse '<command> --help' for flags on any command."))
}

func buildCompleter() *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem("help"),
		readline.PcItem("?"),
		readline.PcItem("clear"),
		readline.PcItem("exit"),
		readline.PcItem("quit"),
	}
	for _, sub := range rootCmd.Commands() {
		if !sub.Hidden && sub.IsAvailableCommand() {
			items = append(items, readline.PcItem(sub.Name()))
		}
	}
	return readline.NewPrefixCompleter(items...)
}

func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}
