package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"syscall"
	"time"

	"github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/tusthegr8/campus-companion/core"
	"github.com/tusthegr8/campus-companion/core/portal"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
	errQuit = errors.New("bye")
)

type commandLine struct {
	app      *portal.App
	renderer *textRenderer
	out      io.Writer
	now      func() time.Time
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Commands:")
	fmt.Fprintln(cli.out, "  show SECTION                                   - home|features|login|register|dashboard|profile")
	fmt.Fprintln(cli.out, "  login -email EMAIL -type student|admin         - the password is prompted next")
	fmt.Fprintln(cli.out, "  register -name NAME -email EMAIL -type TYPE    - the password is prompted next")
	fmt.Fprintln(cli.out, "  announce -title T -content C -priority P       - admin: post an announcement")
	fmt.Fprintln(cli.out, "  event -title T -date YYYY-MM-DD -time HH:MM -location L -description D")
	fmt.Fprintln(cli.out, "  schedule -course C -date YYYY-MM-DD -time HH:MM -room R -instructor I")
	fmt.Fprintln(cli.out, "  adduser -name NAME -email EMAIL -type TYPE     - admin: add a user account")
	fmt.Fprintln(cli.out, "  delete LIST ID                                 - admin: announcements|events|schedules|users")
	fmt.Fprintln(cli.out, "  profile [edit|cancel|save -name N -email E [-phone P] [-department D] [-address A]]")
	fmt.Fprintln(cli.out, "  logout")
	fmt.Fprintln(cli.out, "  yes | no                                       - answer the pending confirmation")
	fmt.Fprintln(cli.out, "  help | quit")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// exec runs one input line and prints the resulting view.
func (cli *commandLine) exec(line string) error {
	args, err := splitArgs(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}

	switch args[0] {
	case "help":
		cli.printUsage()
		return nil
	case "quit", "exit":
		return errQuit
	case "yes", "no":
	default:
		// an expired session must be answered first
		if cli.app.CheckTimeout(cli.now()) {
			return cli.render()
		}
	}

	if err = cli.run(args); err != nil {
		if err == errHelp || errors.Cause(err) == flag.ErrHelp {
			return nil
		}
		if rErr := cli.render(); rErr != nil {
			return rErr
		}
		return err
	}
	return cli.render()
}

func (cli *commandLine) run(args []string) error {
	app := cli.app

	switch args[0] {
	case "show":
		section := ""
		if len(args) > 1 {
			section = args[1]
		}
		sec, err := portal.ParseSection(section)
		if err != nil {
			return err
		}
		return app.Show(sec)

	case "login", "register":
		fs := cli.newFlagSet(args[0])
		email := fs.String("email", "", "the account email")
		userType := fs.String("type", "student", "student or admin")
		var name *string
		if args[0] == "register" {
			name = fs.String("name", "", "the full name")
		}
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return errors.Wrap(err, "reading password")
		}

		fields := core.Fields{
			portal.FieldEmail:    *email,
			portal.FieldPassword: string(pwd),
			portal.FieldUserType: *userType,
		}
		ctx, cancel := interruptContext()
		defer cancel()
		if name == nil {
			if err = app.Show(portal.SectionLogin); err != nil {
				return err
			}
			return app.Login(ctx, fields)
		}
		fields[portal.FieldName] = *name
		if err = app.Show(portal.SectionRegister); err != nil {
			return err
		}
		return app.Register(ctx, fields)

	case "announce":
		return cli.submit(args, app.AddAnnouncement,
			portal.FieldTitle, portal.FieldContent, portal.FieldPriority)

	case "event":
		return cli.submit(args, app.AddEvent,
			portal.FieldTitle, portal.FieldDescription, portal.FieldDate, portal.FieldTime, portal.FieldLocation)

	case "schedule":
		return cli.submit(args, app.AddSchedule,
			portal.FieldCourse, portal.FieldDate, portal.FieldTime, portal.FieldRoom, portal.FieldInstructor)

	case "adduser":
		fs := cli.newFlagSet(args[0])
		name := fs.String("name", "", "the full name")
		email := fs.String("email", "", "the account email")
		userType := fs.String("type", "", "student or admin")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		return app.AddAccount(core.Fields{
			portal.FieldName:     *name,
			portal.FieldEmail:    *email,
			portal.FieldUserType: *userType,
		})

	case "delete":
		if len(args) != 3 {
			cli.printUsage()
			return errHelp
		}
		list, err := portal.ParseList(args[1])
		if err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return errors.Wrapf(portal.ErrNotFound, "id %q", args[2])
		}
		return app.RequestDelete(list, id)

	case "profile":
		if len(args) == 1 {
			return app.Show(portal.SectionProfile)
		}
		switch args[1] {
		case "edit":
			return app.EditProfile()
		case "cancel":
			app.CancelProfileEdit()
			return nil
		case "save":
			return cli.submit(args[1:], app.UpdateProfile,
				portal.FieldName, portal.FieldEmail, portal.FieldPhone, portal.FieldDepartment, portal.FieldAddress)
		default:
			cli.printUsage()
			return errHelp
		}

	case "logout":
		return app.RequestLogout()

	case "yes":
		return app.ConfirmPrompt()

	case "no":
		app.DismissPrompt()
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}

// submit parses `-<field> value` flags for every field & posts them with `op`.
func (cli *commandLine) submit(args []string, op func(core.Fields) error, fields ...string) error {
	fs := cli.newFlagSet(args[0])
	values := make(map[string]*string, len(fields))
	for _, name := range fields {
		values[name] = fs.String(name, "", name)
	}
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	form := make(core.Fields, len(values))
	for name, val := range values {
		form[name] = *val
	}
	return op(form)
}

// render prints the current view, following a pending redirect right away.
func (cli *commandLine) render() error {
	now := cli.now()
	vm := cli.app.View(now)
	if vm.Redirect != nil {
		if err := cli.app.Show(vm.Redirect.Section); err != nil {
			return err
		}
		vm = cli.app.View(now)
	}
	return cli.renderer.Render(cli.out, vm)
}

// splitArgs splits `line` like a shell would: quotes group words and a backslash escapes the next rune.
func splitArgs(line string) ([]string, error) {
	args, err := shellwords.Parse(line)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %q", line)
	}
	return args, nil
}
