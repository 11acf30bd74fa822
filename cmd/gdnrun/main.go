// Command gdnrun loads the demo plugin into the headless engine and calls
// its script methods from the command line.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

func main() {
	var (
		list        = flag.Bool("list", false, "List script classes and exit")
		class       = flag.String("class", "", "Script class to instantiate")
		method      = flag.String("call", "", "Method to call")
		args        = flag.String("args", "", "Comma-separated arguments")
		verbose     = flag.Bool("v", false, "Log debug output to stderr")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if !*list && !*interactive && (*class == "" || *method == "") {
		fmt.Fprintln(os.Stderr, "Usage: gdnrun -list")
		fmt.Fprintln(os.Stderr, "       gdnrun -class <name> -call <method> [-args a,b,...]")
		fmt.Fprintln(os.Stderr, "       gdnrun -i  (interactive mode)")
		os.Exit(1)
	}

	log := newLogger(*verbose)
	defer func() { _ = log.Sync() }()

	s, err := startSession(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *interactive:
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			err = fmt.Errorf("interactive mode needs a terminal")
			break
		}
		err = runInteractive(s)
	case *list:
		printClasses(s)
	default:
		err = run(s, *class, *method, splitArgs(*args))
	}
	s.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func printClasses(s *session) {
	for _, c := range s.classes() {
		fmt.Println(titleStyle.Render(c.Name) + " " + helpStyle.Render("extends "+c.Base))
		if c.Doc != "" {
			fmt.Println("  " + c.Doc)
		}
		for _, m := range c.Methods {
			fmt.Println("  " + funcStyle.Render(formatMethod(m)))
		}
		for _, p := range c.Properties {
			access := "rw"
			switch {
			case !p.HasSetter:
				access = "r"
			case !p.HasGetter:
				access = "w"
			}
			fmt.Printf("  %s %s %s\n", p.Path, typeStyle.Render(typeName(p.Type)), helpStyle.Render(access))
		}
	}
}

func run(s *session, class, method string, args []string) error {
	fmt.Printf("Calling %s.%s(%s)...\n", class, method, strings.Join(args, ", "))
	out, err := s.call(class, method, args)
	if err != nil {
		return fmt.Errorf("call %s.%s: %w", class, method, err)
	}
	fmt.Printf("Result: %s\n", out)
	return nil
}

func splitArgs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
