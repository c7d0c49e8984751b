package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/chzyer/readline"
	"github.com/zibot/farmconnect/internal/core/domain"
	"github.com/zibot/farmconnect/internal/core/service"
)

type command struct {
	name  string
	args  string
	help  string
	run   func(ctx context.Context, args []string) error
	alias []string
}

// Shell is the interactive front end. It shows one workspace at a time,
// starting at the auth screen.
type Shell struct {
	svc Services
	out io.Writer

	workspace domain.Workspace
	user      domain.User
	done      bool

	catalog    *service.Catalog
	moderation *service.Moderation
	listings   *service.Listings
	submission service.Submission
	input      service.ProductInput

	commands map[domain.Workspace][]command
}

func NewShell(svc Services, out io.Writer) *Shell {
	s := &Shell{svc: svc, out: out, workspace: domain.WorkspaceAuth}
	s.commands = map[domain.Workspace][]command{
		domain.WorkspaceAuth:   s.authCommands(),
		domain.WorkspaceBuyer:  s.buyerCommands(),
		domain.WorkspaceSeller: s.sellerCommands(),
		domain.WorkspaceAdd:    s.addProductCommands(),
		domain.WorkspaceAdmin:  s.adminCommands(),
	}
	return s
}

func (s *Shell) Workspace() domain.Workspace {
	return s.workspace
}

func (s *Shell) User() domain.User {
	return s.user
}

func (s *Shell) Done() bool {
	return s.done
}

func (s *Shell) Prompt() string {
	if s.workspace == domain.WorkspaceAuth {
		return "farmconnect> "
	}
	name := s.user.Name
	if name == "" {
		name = string(s.user.Role)
	}
	return fmt.Sprintf("farmconnect[%s %s]> ", strings.ToLower(string(s.workspace)), name)
}

// Enter switches to dst and loads its data.
func (s *Shell) Enter(ctx context.Context, dst domain.Destination) {
	s.user = dst.User
	s.workspace = dst.Workspace
	s.catalog, s.moderation, s.listings = nil, nil, nil
	s.input = service.ProductInput{}

	fmt.Fprintf(s.out, "Signed in as %s (%s).\n", displayName(s.user), s.user.Role)

	switch s.workspace {
	case domain.WorkspaceBuyer:
		s.catalog = s.svc.Catalog()
		_ = s.catalog.Load(ctx)
		s.showCatalog()
	case domain.WorkspaceSeller:
		s.openSellerDashboard(ctx)
	case domain.WorkspaceAdmin:
		s.moderation = s.svc.Moderation()
		_ = s.moderation.Load(ctx)
		renderModeration(s.out, s.moderation)
	}
}

func (s *Shell) openSellerDashboard(ctx context.Context) {
	s.workspace = domain.WorkspaceSeller
	if s.listings == nil {
		s.listings = s.svc.Listings(s.user)
	}
	_ = s.listings.Load(ctx)
	renderProducts(s.out, "Hi "+displayName(s.user), s.listings.Products())
}

func (s *Shell) logout() {
	s.workspace = domain.WorkspaceAuth
	s.user = domain.User{}
	s.catalog, s.moderation, s.listings = nil, nil, nil
	s.input = service.ProductInput{}
	fmt.Fprintln(s.out, "Signed out.")
}

// Exec runs one command line against the current workspace.
func (s *Shell) Exec(ctx context.Context, line string) error {
	args, err := splitArgs(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}

	name, rest := strings.ToLower(args[0]), args[1:]
	switch name {
	case "exit", "quit", `\q`:
		s.done = true
		return nil
	case "help", "?":
		s.printHelp()
		return nil
	case "logout":
		if s.workspace != domain.WorkspaceAuth {
			s.logout()
			return nil
		}
	}

	for _, c := range s.commands[s.workspace] {
		if c.name == name || slices.Contains(c.alias, name) {
			return c.run(ctx, rest)
		}
	}
	return fmt.Errorf("unknown command %q, type help", name)
}

// Run reads commands until exit, EOF or ctx is done.
func (s *Shell) Run(ctx context.Context, historyFile string) error {
	const op = "Shell.Run"
	log := slog.With("op", op)

	if historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(historyFile), 0o700); err != nil {
			log.Debug("history disabled", "err", err)
			historyFile = ""
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            s.Prompt(),
		HistoryFile:       historyFile,
		AutoComplete:      completer{s},
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		Stdout:            s.out,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer rl.Close()

	stop := closeOnDone(ctx, rl)
	defer stop()

	fmt.Fprintln(s.out, "FarmConnect marketplace. Type 'help' for commands, 'exit' to quit.")

	for !s.done {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) || ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if err := s.Exec(ctx, line); err != nil {
			fmt.Fprintf(s.out, "Error: %s\n", errorText(err))
		}
		rl.SetPrompt(s.Prompt())
	}
	return nil
}

func (s *Shell) printHelp() {
	fmt.Fprintf(s.out, "%s commands:\n", s.workspace)
	for _, c := range s.commands[s.workspace] {
		fmt.Fprintf(s.out, "  %-32s %s\n", strings.TrimSpace(c.name+" "+c.args), c.help)
	}
	if s.workspace != domain.WorkspaceAuth {
		fmt.Fprintf(s.out, "  %-32s %s\n", "logout", "return to the sign in screen")
	}
	fmt.Fprintf(s.out, "  %-32s %s\n", "help", "show this help")
	fmt.Fprintf(s.out, "  %-32s %s\n", "exit", "leave the shell")
}

func (s *Shell) commandNames() []string {
	names := []string{"help", "exit"}
	if s.workspace != domain.WorkspaceAuth {
		names = append(names, "logout")
	}
	for _, c := range s.commands[s.workspace] {
		names = append(names, c.name)
	}
	slices.Sort(names)
	return names
}

// completer completes command names of the current workspace.
type completer struct {
	s *Shell
}

func (c completer) Do(line []rune, pos int) ([][]rune, int) {
	prefix := string(line[:pos])
	if strings.ContainsAny(prefix, " \t") {
		return nil, 0
	}
	var out [][]rune
	for _, name := range c.s.commandNames() {
		if strings.HasPrefix(name, prefix) {
			out = append(out, []rune(name[len(prefix):]+" "))
		}
	}
	return out, len([]rune(prefix))
}

func displayName(u domain.User) string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	}
	return "guest"
}

// closeOnDone closes c when ctx is done. stop ends the watch and waits for
// it to exit.
func closeOnDone(ctx context.Context, c io.Closer) (stop func()) {
	quit := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-ctx.Done():
			_ = c.Close()
		case <-quit:
		}
	}()
	return func() {
		close(quit)
		<-exited
	}
}
