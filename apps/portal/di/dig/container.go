package dig_container

import (
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoportal "github.com/tusthegr8/campus-companion/apps/portal/echo"
	"github.com/tusthegr8/campus-companion/apps/portal/views"
	appfs "github.com/tusthegr8/campus-companion/assets"
	"github.com/tusthegr8/campus-companion/core"
	"github.com/tusthegr8/campus-companion/core/portal"
	"github.com/tusthegr8/campus-companion/core/user"
	emailsvc "github.com/tusthegr8/campus-companion/services/email"
	logsvc "github.com/tusthegr8/campus-companion/services/logger"
	inmemdb "github.com/tusthegr8/campus-companion/storage/inmem"
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "PORTAL : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		stdLogger := log.New(os.Stdout, "MAIL : ", log.LstdFlags)
		return emailsvc.NewConsoleService(stdLogger, logger, conf)
	}
	return emailsvc.NewSendgridService(logger, conf)
}

func newFieldValidator(validate *validator.Validate, translator ut.Translator) *core.FieldValidator {
	core.InitValidators(validate, translator)
	return core.NewFieldValidator(validate, translator)
}

func newAuthenticator(conf *core.Config) user.Authenticator {
	if conf.Auth.Mode == core.AuthModeDirectory {
		return user.NewDirectoryAuthenticator(conf.Auth.Latency)
	}
	return user.NewSimulatedAuthenticator(conf.Auth.Latency)
}

// newSessionRegistry gives every browser session its own portal.App; the authenticator is shared.
func newSessionRegistry(
	conf *core.Config,
	auth user.Authenticator,
	fieldValidator *core.FieldValidator,
	mailer core.EmailService,
	logger core.Logger,
) *inmemdb.SessionRegistry {
	opts := portal.OptionsFromConfig(conf)
	deps := portal.Deps{
		Auth:      auth,
		Validator: fieldValidator,
		Mailer:    mailer,
		Logger:    logger,
	}
	return inmemdb.NewSessionRegistry(func() *portal.App {
		return portal.NewApp(opts, deps)
	})
}

func newRenderer() (*views.Renderer, error) {
	return views.NewRenderer(appfs.FS, appfs.PortalTemplatesDir)
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newFieldValidator))
	must(c.Provide(newAuthenticator))
	must(c.Provide(newSessionRegistry))
	must(c.Provide(newRenderer))
	must(c.Provide(echoportal.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
