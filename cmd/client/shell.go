package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atinyakov/GophNotes/internal/client/conversation"
	"github.com/atinyakov/GophNotes/internal/client/editor"
	"github.com/atinyakov/GophNotes/internal/client/notes"
	"github.com/atinyakov/GophNotes/internal/client/notify"
	"github.com/atinyakov/GophNotes/internal/client/remote"
	"github.com/atinyakov/GophNotes/internal/client/render"
	"github.com/atinyakov/GophNotes/internal/client/session"
	"github.com/atinyakov/GophNotes/internal/client/workspace"
	"github.com/atinyakov/GophNotes/internal/models"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const shellHelp = `Commands:
  list                  show your notes
  new                   create a note and open it
  open <n|id>           open a note by list number or id
  show                  print the open note
  title <text>          rename the open note
  write <text>          replace the content (\n starts a new line)
  append <text>         add a line to the content
  tag add <tag>         add a tag
  tag rm <tag>          remove a tag
  delete [-y] [n|id]    delete a note (default: the open one)
  close                 close the open note
  summarize             ask the AI for a summary of the open note
  ask <question>        ask the AI a follow-up question
  chat                  print the conversation
  reload                fetch the notes again
  logout                save pending edits, sign out and leave
  help                  show this help
  exit                  save pending edits and leave`

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open the interactive notes shell",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a := current

		sess := session.New(a.auth)
		if err := sess.Init(ctx); err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		defer sess.Close()
		if !sess.Authenticated() {
			return errors.New("not signed in: run 'gophnotes login' first")
		}

		notifier := notify.NewConsole(cmd.OutOrStdout(), a.log)
		out := notifier.Writer()
		store := notes.NewStore(remote.NewNotes(a.client, a.opts.BaseURL, a.auth), sess, notifier, a.log)
		ed := editor.New(store, a.opts.Debounce, a.log)
		ws := workspace.New(sess, store, ed, remote.NewSummarizer(a.client, a.opts.BaseURL, a.auth), notifier, a.log)
		defer ws.Close()

		_ = ws.Load(ctx)

		isTTY := term.IsTerminal(int(os.Stdout.Fd()))
		sh := newShell(ws, sess, out, render.ForTerminal(isTTY, 0))
		sh.prompt = isTTY
		return sh.run(ctx, cmd.InOrStdin())
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

type shell struct {
	ws     *workspace.Workspace
	sess   *session.Context
	out    *notify.SyncWriter
	render *render.Renderer
	prompt bool
	now    func() time.Time

	in *bufio.Scanner
}

// newShell prints through out, which must be the writer of the notifier
// the workspace reports to.
func newShell(ws *workspace.Workspace, sess *session.Context, out *notify.SyncWriter, r *render.Renderer) *shell {
	return &shell{ws: ws, sess: sess, out: out, render: r, now: time.Now}
}

// run reads commands from in until exit, logout or end of input.
func (s *shell) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	s.in = scanner
	defer func() { s.in = nil }()

	for {
		if s.prompt {
			fmt.Fprint(s.out, s.promptText())
		}
		if !scanner.Scan() {
			break
		}
		if done := s.exec(ctx, scanner.Text()); done {
			return nil
		}
		if ctx.Err() != nil {
			break
		}
	}
	return scanner.Err()
}

func (s *shell) promptText() string {
	if s.ws.Editor.IsOpen() {
		return fmt.Sprintf("gophnotes [%s]> ", s.ws.Editor.Title())
	}
	return "gophnotes> "
}

func (s *shell) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

// exec runs one command line and reports whether the shell should stop.
func (s *shell) exec(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	if name == "" {
		return false
	}

	switch name {
	case "help":
		s.println(shellHelp)
	case "list", "ls":
		s.list()
	case "new":
		if n, err := s.ws.Create(ctx); err == nil {
			s.println("Opened", n.ID)
		}
	case "open":
		s.open(rest)
	case "show":
		s.show()
	case "title":
		s.edit(func(ed *editor.Session) error { return ed.SetTitle(rest) })
	case "write":
		s.edit(func(ed *editor.Session) error { return ed.SetContent(unescape(rest)) })
	case "append":
		s.edit(func(ed *editor.Session) error {
			content := ed.Content()
			if content != "" && !strings.HasSuffix(content, "\n") {
				content += "\n"
			}
			return ed.SetContent(content + unescape(rest))
		})
	case "tag":
		s.tag(rest)
	case "delete", "rm":
		s.deleteNote(ctx, rest)
	case "close":
		s.ws.Deselect()
	case "summarize":
		s.converse(func(c *conversation.Session) error { return c.Summarize(ctx) })
	case "ask":
		s.converse(func(c *conversation.Session) error { return c.Send(ctx, rest) })
	case "chat":
		s.chat()
	case "reload":
		_ = s.ws.Load(ctx)
	case "logout":
		// Pending edits need the token that SignOut discards.
		s.ws.Close()
		if err := s.sess.SignOut(ctx); err != nil {
			s.println("Sign out failed:", err)
		}
		s.println("Signed out")
		return true
	case "exit", "quit":
		s.println("Bye")
		return true
	default:
		s.println("Unknown command. Type 'help' for a list of commands.")
	}
	return false
}

func (s *shell) list() {
	list := s.ws.Notes.Notes()
	if len(list) == 0 {
		s.println("No notes yet. Type 'new' to create one.")
		return
	}
	selected := s.ws.Notes.SelectedID()
	now := s.now()
	s.out.Do(func(w io.Writer) {
		for i, n := range list {
			mark := " "
			if n.ID == selected {
				mark = "*"
			}
			st := notes.StatsOf(n)
			long := ""
			if st.Long {
				long = "  [long]"
			}
			fmt.Fprintf(w, "%s %2d. %s  (%d words)%s\n", mark, i+1, notes.DisplayTitle(n), st.Words, long)
			if len(n.Tags) > 0 {
				fmt.Fprintf(w, "      #%s\n", strings.Join(n.Tags, " #"))
			}
			fmt.Fprintf(w, "      %s\n", notes.Preview(n, 60))
			if !n.UpdatedAt.IsZero() {
				fmt.Fprintf(w, "      updated %s\n", humanize.RelTime(n.UpdatedAt, now, "ago", "from now"))
			}
		}
	})
}

// resolve maps a 1-based list number or a note id onto an id.
func (s *shell) resolve(arg string) (string, bool) {
	if arg == "" {
		return "", false
	}
	list := s.ws.Notes.Notes()
	if i, err := strconv.Atoi(arg); err == nil && i >= 1 && i <= len(list) {
		return list[i-1].ID, true
	}
	if _, ok := s.ws.Notes.Get(arg); ok {
		return arg, true
	}
	return "", false
}

func (s *shell) open(arg string) {
	id, ok := s.resolve(arg)
	if !ok {
		s.println("Usage: open <n|id> (see 'list')")
		return
	}
	if _, err := s.ws.Select(id); err != nil {
		s.println("Note not found")
		return
	}
	s.show()
}

func (s *shell) show() {
	ed := s.ws.Editor
	if !ed.IsOpen() {
		s.println("No note is open")
		return
	}
	title := ed.Title()
	if strings.TrimSpace(title) == "" {
		title = models.DefaultNoteTitle
	}
	s.println(s.render.Markdown("# " + title))
	if tags := ed.Tags(); len(tags) > 0 {
		s.println("#" + strings.Join(tags, " #"))
	}
	if content := ed.Content(); content != "" {
		s.println(s.render.Markdown(content))
	}
}

func (s *shell) edit(fn func(ed *editor.Session) error) {
	if err := fn(s.ws.Editor); errors.Is(err, editor.ErrNoNote) {
		s.println("Open a note first")
	}
}

func (s *shell) tag(rest string) {
	op, tag, _ := strings.Cut(rest, " ")
	var (
		changed bool
		err     error
	)
	switch op {
	case "add":
		changed, err = s.ws.Editor.AddTag(tag)
	case "rm", "remove":
		changed, err = s.ws.Editor.RemoveTag(strings.TrimSpace(tag))
	default:
		s.println("Usage: tag add|rm <tag>")
		return
	}
	switch {
	case errors.Is(err, editor.ErrNoNote):
		s.println("Open a note first")
	case !changed:
		s.println("Tags unchanged")
	default:
		s.println("Tags:", strings.Join(s.ws.Editor.Tags(), ", "))
	}
}

func (s *shell) deleteNote(ctx context.Context, arg string) {
	yes := false
	if a, ok := strings.CutPrefix(arg, "-y"); ok && (a == "" || a[0] == ' ') {
		yes = true
		arg = strings.TrimSpace(a)
	}

	id := s.ws.Editor.NoteID()
	if arg != "" {
		var ok bool
		if id, ok = s.resolve(arg); !ok {
			s.println("Note not found")
			return
		}
	}
	if id == "" {
		s.println("Usage: delete [-y] [n|id]")
		return
	}
	if !yes {
		n, _ := s.ws.Notes.Get(id)
		if !s.confirm(fmt.Sprintf("Delete %q? This cannot be undone. [y/N] ", notes.DisplayTitle(n))) {
			s.println("Cancelled")
			return
		}
	}
	_ = s.ws.Delete(ctx, id)
}

// confirm asks a yes/no question on the shell input. No answer means no.
func (s *shell) confirm(question string) bool {
	fmt.Fprint(s.out, question)
	if s.in == nil || !s.in.Scan() {
		s.println()
		return false
	}
	switch strings.ToLower(strings.TrimSpace(s.in.Text())) {
	case "y", "yes":
		return true
	}
	return false
}

func (s *shell) converse(fn func(c *conversation.Session) error) {
	c := s.ws.Conversation()
	if c == nil {
		s.println("Open a note first")
		return
	}
	err := fn(c)
	switch {
	case errors.Is(err, conversation.ErrBusy):
		s.println("The assistant is still answering")
	case errors.Is(err, conversation.ErrEmptyMessage):
		s.println("Usage: ask <question>")
	case err == nil:
		msgs := c.Messages()
		s.printMessage(msgs[len(msgs)-1])
	}
}

func (s *shell) chat() {
	c := s.ws.Conversation()
	if c == nil || len(c.Messages()) == 0 {
		s.println("No conversation yet. Try 'summarize'.")
		return
	}
	for _, m := range c.Messages() {
		s.printMessage(m)
	}
}

func (s *shell) printMessage(m models.Message) {
	if m.Role == models.RoleUser {
		s.println("you:", m.Content)
		return
	}
	s.println("ai:")
	s.println(s.render.Markdown(m.Content))
}

func unescape(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
