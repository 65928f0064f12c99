// Command cli is the terminal client of the campus portal.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/go-playground/validator/v10"

	appfs "github.com/tusthegr8/campus-companion/assets"
	"github.com/tusthegr8/campus-companion/core"
	"github.com/tusthegr8/campus-companion/core/portal"
	"github.com/tusthegr8/campus-companion/core/user"
	emailsvc "github.com/tusthegr8/campus-companion/services/email"
	logsvc "github.com/tusthegr8/campus-companion/services/logger"
)

var logger core.Logger

func main() {
	stdLogger := log.New(os.Stderr, "CLI : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	if err != nil {
		stdLogger.Fatal(err)
	}
	logger = logsvc.NewRollbarLogger(stdLogger, conf)
	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, logger)

	renderer, err := newTextRenderer(appfs.FS, appfs.CLITemplatesDir)
	errAndDie(err)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	var auth user.Authenticator = user.NewSimulatedAuthenticator(conf.Auth.Latency)
	if conf.Auth.Mode == core.AuthModeDirectory {
		auth = user.NewDirectoryAuthenticator(conf.Auth.Latency)
	}

	// start CLI
	cli := commandLine{
		app: portal.NewApp(portal.OptionsFromConfig(conf), portal.Deps{
			Auth:      auth,
			Validator: core.NewFieldValidator(validate, translator),
			Mailer:    emailsvc.NewConsoleService(log.New(os.Stderr, "MAIL : ", log.LstdFlags), logger, conf),
			Logger:    logger,
		}),
		renderer: renderer,
		out:      os.Stdout,
		now:      time.Now,
	}
	errAndDie(cli.render())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		if err := cli.exec(scanner.Text()); err != nil {
			if err == errQuit {
				break
			}
			fmt.Printf("error: %s\n", err)
		}
	}
	errAndDie(scanner.Err())
}

// interruptContext is cancelled by Ctrl+C, eg: to abort a slow sign in.
func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
