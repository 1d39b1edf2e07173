package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// Loop reads commands from an input stream and dispatches them to the
// controller until EOF or "quit". The reader is shared with the terminal
// presenter so confirmation prompts consume from the same buffer.
type Loop struct {
	controller *Controller
	in         *bufio.Reader
	out        io.Writer
}

func NewLoop(controller *Controller, in *bufio.Reader, out io.Writer) *Loop {
	return &Loop{controller: controller, in: in, out: out}
}

// Run processes one command per line. Handler errors are already surfaced as
// toasts; the loop only stops on EOF, quit, or a cancelled context.
func (l *Loop) Run(ctx context.Context) error {
	fmt.Fprintln(l.out, `fintrack ready. Type "help" for commands.`)

	for {
		fmt.Fprint(l.out, "> ")
		line, err := l.in.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		l.dispatch(ctx, fields[0], fields[1:])
	}
}

func (l *Loop) dispatch(ctx context.Context, command string, args []string) {
	var err error
	switch command {
	case "help":
		l.printHelp()
	case "show":
		snap := l.controller.store.Snapshot()
		l.controller.renderSection(snap, snap.UIPreferences.ActiveSection)
	case "go":
		if len(args) == 1 {
			l.controller.Navigate(ctx, args[0])
		} else {
			err = errors.New("usage: go <dashboard|finance|budgets|goals|notes|settings>")
		}
	case "sidebar":
		l.controller.ToggleSidebar(ctx)
	case "income":
		err = l.addTransaction(ctx, core.FilterIncome, args)
	case "expense":
		err = l.addTransaction(ctx, core.FilterExpense, args)
	case "edit":
		err = l.editTransaction(ctx, args)
	case "delete":
		err = l.deleteByID(ctx, args)
	case "template":
		if len(args) == 1 {
			err = l.controller.AddFromTemplate(ctx, args[0])
		} else {
			err = errors.New("usage: template <transaction-id>")
		}
	case "goal":
		err = l.addGoal(ctx, args)
	case "note":
		if len(args) > 0 {
			err = l.controller.AddNote(ctx, strings.Join(args, " "))
		} else {
			err = errors.New("usage: note <text>")
		}
	case "category":
		err = l.category(ctx, args)
	case "budget":
		err = l.budget(ctx, args)
	case "currency":
		if len(args) == 1 {
			err = l.controller.SetCurrency(ctx, args[0])
		} else {
			err = errors.New("usage: currency <INR|USD|EUR|GBP|JPY>")
		}
	case "theme":
		l.controller.ToggleTheme(ctx)
	case "filter":
		err = l.filter(args)
	case "sort":
		if len(args) == 2 {
			l.controller.SetSort(core.SortSpec{Key: args[0], Direction: args[1]})
		} else {
			err = errors.New("usage: sort <date|amount|category> <asc|desc>")
		}
	case "notesearch":
		l.controller.SetNotesSearch(strings.Join(args, " "))
	case "export":
		err = l.controller.ExportBackup(ctx)
	case "import":
		err = l.importBackup(ctx, args)
	case "clear":
		err = l.controller.ClearAll(ctx)
	default:
		err = fmt.Errorf("unknown command %q", command)
	}

	if err != nil && !errors.Is(err, ErrCancelled) {
		fmt.Fprintf(l.out, "error: %v\n", err)
	}
}

// income <amount> <date> <description...>
// expense <amount> <date> <category> <description...> [trailing "+r" saves a template]
func (l *Loop) addTransaction(ctx context.Context, kind string, args []string) error {
	minArgs := 3
	if kind == core.FilterExpense {
		minArgs = 4
	}
	if len(args) < minArgs {
		if kind == core.FilterExpense {
			return errors.New("usage: expense <amount> <date> <category> <description> [+r]")
		}
		return errors.New("usage: income <amount> <date> <description> [+r]")
	}

	amount, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("bad amount %q", args[0])
	}

	in := TransactionInput{Amount: amount, Type: kind, Date: args[1]}
	rest := args[2:]
	if kind == core.FilterExpense {
		in.Category = rest[0]
		rest = rest[1:]
	}
	if len(rest) > 0 && rest[len(rest)-1] == "+r" {
		in.Recurring = true
		rest = rest[:len(rest)-1]
	}
	in.Description = strings.Join(rest, " ")
	return l.controller.AddTransaction(ctx, in)
}

// edit <id> <income|expense> <amount> <date> [category] <description...>
func (l *Loop) editTransaction(ctx context.Context, args []string) error {
	if len(args) < 4 {
		return errors.New("usage: edit <id> <income|expense> <amount> <date> [category] <description>")
	}
	id, kind := args[0], args[1]
	amount, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("bad amount %q", args[2])
	}

	in := TransactionInput{Amount: amount, Type: kind, Date: args[3]}
	rest := args[4:]
	if kind == core.FilterExpense {
		if len(rest) < 2 {
			return errors.New("expense edits need a category and a description")
		}
		in.Category = rest[0]
		rest = rest[1:]
	}
	in.Description = strings.Join(rest, " ")
	return l.controller.UpdateTransaction(ctx, id, in)
}

// deleteByID routes on the entity prefix baked into every identifier.
func (l *Loop) deleteByID(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: delete <id>")
	}
	id := args[0]
	switch {
	case strings.HasPrefix(id, "txn_"):
		return l.controller.DeleteTransaction(ctx, id)
	case strings.HasPrefix(id, "goal_"):
		return l.controller.DeleteGoal(ctx, id)
	case strings.HasPrefix(id, "note_"):
		return l.controller.DeleteNote(ctx, id)
	default:
		return fmt.Errorf("cannot tell what %q identifies", id)
	}
}

// goal <target> <description...>
func (l *Loop) addGoal(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: goal <target> <description>")
	}
	target, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("bad target %q", args[0])
	}
	return l.controller.AddGoal(ctx, strings.Join(args[1:], " "), target)
}

// category add <name...> | category delete <name...>
func (l *Loop) category(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: category <add|delete> <name>")
	}
	name := strings.Join(args[1:], " ")
	switch args[0] {
	case "add":
		return l.controller.AddCategory(ctx, name)
	case "delete":
		return l.controller.DeleteCategory(ctx, name)
	default:
		return errors.New("usage: category <add|delete> <name>")
	}
}

// budget overall <amount|-> | budget <category> <amount|->
// "-" removes the limit.
func (l *Loop) budget(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: budget <overall|category-name> <amount|->")
	}
	target := strings.Join(args[:len(args)-1], " ")
	raw := args[len(args)-1]

	var amount *float64
	if raw != "-" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("bad amount %q", raw)
		}
		amount = &parsed
	}

	if strings.EqualFold(target, "overall") {
		l.controller.SetOverallBudget(ctx, amount)
	} else {
		l.controller.SetCategoryBudget(ctx, target, amount)
	}
	return nil
}

// filter <type|category|from|to|search|reset> [value...]
func (l *Loop) filter(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: filter <type|category|from|to|search|reset> [value]")
	}
	if args[0] == "reset" {
		l.controller.ResetFilters()
		return nil
	}
	if len(args) < 2 {
		return fmt.Errorf("filter %s needs a value", args[0])
	}

	filters := l.controller.store.Snapshot().UITransient.Filters
	value := strings.Join(args[1:], " ")
	switch args[0] {
	case "type":
		filters.Type = value
	case "category":
		filters.Category = value
	case "from":
		filters.DateStart = value
	case "to":
		filters.DateEnd = value
	case "search":
		filters.SearchTerm = value
	default:
		return fmt.Errorf("unknown filter %q", args[0])
	}
	l.controller.SetFilters(filters)
	return nil
}

func (l *Loop) importBackup(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: import <path-to-backup.json>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read backup file: %w", err)
	}
	return l.controller.ImportBackup(ctx, backupContentType(args[0]), data)
}

// backupContentType maps the file extension to a declared media type, so a
// non-JSON file is rejected the same way a browser upload would be.
func backupContentType(path string) string {
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return "application/json"
	}
	return "application/octet-stream"
}

func (l *Loop) printHelp() {
	fmt.Fprint(l.out, `commands:
  go <section>                         switch view (dashboard finance budgets goals notes settings)
  show                                 re-render the current view
  income  <amount> <date> <desc> [+r]  record income (date YYYY-MM-DD)
  expense <amount> <date> <cat> <desc> [+r]
  edit <id> <income|expense> <amount> <date> [cat] <desc>
  delete <id>                          delete a transaction, goal, or note by id
  template <id>                        add a transaction from a recurring template
  goal <target> <desc>                 add a savings goal
  note <text>                          add a note
  notesearch [term]                    filter notes
  category <add|delete> <name>
  budget <overall|category> <amount|->
  filter <type|category|from|to|search|reset> [value]
  sort <date|amount|category> <asc|desc>
  currency <code>   theme   sidebar
  export   import <path>   clear
  quit
`)
}
