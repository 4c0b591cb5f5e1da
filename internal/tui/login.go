package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"timewallet/internal/api"
	"timewallet/internal/stores"
)

type loginMode int

const (
	modeSignIn loginMode = iota
	modeRegister
)

type loginModel struct {
	ctx    context.Context
	stores *stores.Set
	width  int
	height int

	mode       loginMode
	form       *huh.Form
	note       string
	submitting bool

	// Form field pointers (survive value copies)
	username *string
	password *string
	email    *string
	name     *string
}

func newLoginModel(ctx context.Context, set *stores.Set) loginModel {
	username, password, email, name := "", "", "", ""
	return loginModel{
		ctx:      ctx,
		stores:   set,
		username: &username,
		password: &password,
		email:    &email,
		name:     &name,
	}
}

func (l *loginModel) setSize(w, h int) {
	l.width = w
	l.height = h
}

// focus (re)builds the form for the current mode.
func (l *loginModel) focus() tea.Cmd {
	l.submitting = false
	if l.mode == modeRegister {
		l.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Username").Value(l.username),
				huh.NewInput().Title("Email").Value(l.email),
				huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(l.password),
				huh.NewInput().Title("Name").Value(l.name),
			),
		).WithShowHelp(false).WithShowErrors(true)
	} else {
		l.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Username").Value(l.username),
				huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(l.password),
			),
		).WithShowHelp(false).WithShowErrors(true)
	}
	return l.form.Init()
}

type loginDoneMsg struct{ err error }
type registerDoneMsg struct{ err error }

func (l loginModel) update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return l, tea.Quit
		case "ctrl+r":
			if l.mode == modeSignIn {
				l.mode = modeRegister
			} else {
				l.mode = modeSignIn
			}
			l.note = ""
			l.stores.Auth.ClearError()
			return l, l.focus()
		}

	case loginDoneMsg:
		if msg.err != nil {
			// Draft preserved; the error banner comes from the store.
			return l, l.focus()
		}
		l.submitting = false
		return l, func() tea.Msg { return loggedInMsg{} }

	case registerDoneMsg:
		if msg.err != nil {
			return l, l.focus()
		}
		l.mode = modeSignIn
		l.note = "Account created, sign in to continue"
		*l.password = ""
		return l, l.focus()
	}

	if l.form == nil {
		return l, nil
	}

	// One request per form completion; keys pressed while the request is
	// in flight must not re-fire it.
	if l.submitting {
		return l, nil
	}

	form, cmd := l.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		l.form = f
	}

	if l.form.State == huh.StateCompleted {
		l.submitting = true
		if l.mode == modeRegister {
			return l, l.registerCmd()
		}
		return l, l.loginCmd()
	}

	return l, cmd
}

func (l loginModel) loginCmd() tea.Cmd {
	username, password := *l.username, *l.password
	return func() tea.Msg {
		err := l.stores.Auth.Login(l.ctx, username, password)
		return loginDoneMsg{err: err}
	}
}

func (l loginModel) registerCmd() tea.Cmd {
	req := api.RegisterRequest{
		Username: *l.username,
		Email:    *l.email,
		Password: *l.password,
		Name:     *l.name,
	}
	return func() tea.Msg {
		err := l.stores.Auth.Register(l.ctx, req)
		return registerDoneMsg{err: err}
	}
}

func (l loginModel) view() string {
	title := titleStyle.Render("timewallet")
	subtitle := mutedStyle.Render("Sign in to your time wallet")
	hint := mutedStyle.Render("ctrl+r: switch to register  ctrl+c: quit")
	if l.mode == modeRegister {
		subtitle = mutedStyle.Render("Create an account")
		hint = mutedStyle.Render("ctrl+r: switch to sign in  ctrl+c: quit")
	}

	rows := []string{title, subtitle, ""}
	if l.form != nil {
		rows = append(rows, l.form.View())
	}
	if l.note != "" {
		rows = append(rows, "", successStyle.Render(l.note))
	}
	if errText := l.stores.Auth.Err(); errText != "" {
		rows = append(rows, "", errorStyle.Render(errText))
		for _, f := range l.stores.Auth.FieldErrors() {
			if f.Message != errText {
				rows = append(rows, errorStyle.Render("  "+f.Field+": "+f.Message))
			}
		}
	}
	rows = append(rows, "", hint)

	panel := activePanelStyle.Width(min(l.width-4, 60)).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))

	return lipgloss.Place(l.width, l.height, lipgloss.Center, lipgloss.Center, panel)
}
