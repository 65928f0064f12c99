package echoportal

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tusthegr8/campus-companion/apps/portal/views"
	"github.com/tusthegr8/campus-companion/core"
	"github.com/tusthegr8/campus-companion/core/portal"
)

type portalUI struct {
	renderer *views.Renderer
}

// sessionState is the payload of the browser's session poll.
type sessionState struct {
	LoggedIn bool              `json:"loggedIn"`
	Prompt   portal.PromptKind `json:"prompt,omitempty"`
}

func registerPortal(e *echo.Echo, renderer *views.Renderer) {
	ui := portalUI{renderer: renderer}

	e.GET("/", ui.show)
	e.GET("/session", ui.session)
	e.GET("/profile/edit", ui.editProfile)
	e.GET("/:section", ui.show)

	e.POST("/login", ui.login)
	e.POST("/register", ui.register)
	e.POST("/logout", ui.logout)
	e.POST("/activity", ui.activity)
	e.POST("/prompt/confirm", ui.confirmPrompt)
	e.POST("/prompt/dismiss", ui.dismissPrompt)

	e.POST("/announcements", ui.add((*portal.App).AddAnnouncement))
	e.POST("/events", ui.add((*portal.App).AddEvent))
	e.POST("/schedules", ui.add((*portal.App).AddSchedule))
	e.POST("/users", ui.add((*portal.App).AddAccount))
	e.POST("/:list/:id/delete", ui.requestDelete)

	e.POST("/profile", ui.updateProfile)
	e.POST("/profile/cancel", ui.cancelProfileEdit)
}

// Helpers

func csrfToken(ctx echo.Context) string {
	token, _ := ctx.Get(csrfContextKey).(string)
	return token
}

// formFields returns the first value of every posted field, except the CSRF token.
func formFields(ctx echo.Context) (core.Fields, error) {
	params, err := ctx.FormParams()
	if err != nil {
		return nil, errors.Wrap(err, "parsing form")
	}
	fields := make(core.Fields, len(params))
	for name, values := range params {
		if name == csrfField || len(values) == 0 {
			continue
		}
		fields[name] = values[0]
	}
	return fields, nil
}

func (ui portalUI) render(ctx echo.Context, app *portal.App, code int) error {
	var buff bytes.Buffer
	page := views.Page{ViewModel: app.View(time.Now()), CSRFToken: csrfToken(ctx)}
	if err := ui.renderer.Render(&buff, page); err != nil {
		return errors.Wrap(err, "rendering page")
	}
	return ctx.HTMLBlob(code, buff.Bytes())
}

func redirectTo(ctx echo.Context, section portal.Section) error {
	if section == portal.SectionHome {
		return ctx.Redirect(http.StatusSeeOther, "/")
	}
	return ctx.Redirect(http.StatusSeeOther, "/"+string(section))
}

// Handlers

func (ui portalUI) show(ctx echo.Context) error {
	app, err := getContextApp(ctx)
	if err != nil {
		return err
	}
	section, err := portal.ParseSection(ctx.Param("section"))
	if err != nil {
		return err
	}
	if err = app.Show(section); err != nil {
		return err
	}
	return ui.render(ctx, app, http.StatusOK)
}

func (ui portalUI) session(ctx echo.Context) error {
	app, err := getContextApp(ctx)
	if err != nil {
		return err
	}
	_, loggedIn := app.CurrentUser()
	kind, _ := app.PendingPrompt()
	return ctx.JSON(http.StatusOK, sessionState{LoggedIn: loggedIn, Prompt: kind})
}

func (ui portalUI) activity(ctx echo.Context) error {
	app, err := getContextApp(ctx)
	if err != nil {
		return err
	}
	app.Touch()
	return ctx.NoContent(http.StatusNoContent)
}

// authenticate runs the login/register `op`. While the success transition is pending, the page is rendered
// right away and refreshes itself onto the dashboard.
func (ui portalUI) authenticate(ctx echo.Context, op func(*portal.App, core.Fields) error) error {
	app, err := getContextApp(ctx)
	if err != nil {
		return err
	}
	fields, err := formFields(ctx)
	if err != nil {
		return err
	}
	if err = op(app, fields); err != nil {
		return err
	}
	if vm := app.View(time.Now()); vm.Redirect != nil {
		return ui.render(ctx, app, http.StatusOK)
	}
	return redirectTo(ctx, portal.SectionDashboard)
}

func (ui portalUI) login(ctx echo.Context) error {
	return ui.authenticate(ctx, func(app *portal.App, fields core.Fields) error {
		return app.Login(ctx.Request().Context(), fields)
	})
}

func (ui portalUI) register(ctx echo.Context) error {
	return ui.authenticate(ctx, func(app *portal.App, fields core.Fields) error {
		return app.Register(ctx.Request().Context(), fields)
	})
}

func (ui portalUI) logout(ctx echo.Context) error {
	app, err := getContextApp(ctx)
	if err != nil {
		return err
	}
	if err = app.RequestLogout(); err != nil {
		return err
	}
	return redirectTo(ctx, app.Section())
}

func (ui portalUI) confirmPrompt(ctx echo.Context) error {
	app, err := getContextApp(ctx)
	if err != nil {
		return err
	}
	if err = app.ConfirmPrompt(); err != nil {
		return err
	}
	return redirectTo(ctx, app.Section())
}

func (ui portalUI) dismissPrompt(ctx echo.Context) error {
	app, err := getContextApp(ctx)
	if err != nil {
		return err
	}
	app.DismissPrompt()
	return redirectTo(ctx, app.Section())
}

func (ui portalUI) add(op func(*portal.App, core.Fields) error) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		app, err := getContextApp(ctx)
		if err != nil {
			return err
		}
		fields, err := formFields(ctx)
		if err != nil {
			return err
		}
		if err = op(app, fields); err != nil {
			return err
		}
		return redirectTo(ctx, portal.SectionDashboard)
	}
}

func (ui portalUI) requestDelete(ctx echo.Context) error {
	app, err := getContextApp(ctx)
	if err != nil {
		return err
	}
	list, err := portal.ParseList(ctx.Param("list"))
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return errors.Wrapf(portal.ErrNotFound, "id %q", ctx.Param("id"))
	}
	if err = app.RequestDelete(list, id); err != nil {
		return err
	}
	return redirectTo(ctx, app.Section())
}

func (ui portalUI) editProfile(ctx echo.Context) error {
	app, err := getContextApp(ctx)
	if err != nil {
		return err
	}
	if err = app.EditProfile(); err != nil {
		return err
	}
	return ui.render(ctx, app, http.StatusOK)
}

func (ui portalUI) updateProfile(ctx echo.Context) error {
	app, err := getContextApp(ctx)
	if err != nil {
		return err
	}
	fields, err := formFields(ctx)
	if err != nil {
		return err
	}
	if err = app.UpdateProfile(fields); err != nil {
		return err
	}
	return redirectTo(ctx, portal.SectionProfile)
}

func (ui portalUI) cancelProfileEdit(ctx echo.Context) error {
	app, err := getContextApp(ctx)
	if err != nil {
		return err
	}
	app.CancelProfileEdit()
	return redirectTo(ctx, portal.SectionProfile)
}
