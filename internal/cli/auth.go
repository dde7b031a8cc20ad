package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/boddenberg/fintrack-go/internal/domain"
	"github.com/boddenberg/fintrack-go/internal/service"
)

func (a *App) login(ctx context.Context, st *streams, args []string) error {
	fs := newFlags("login", st)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password (prompted if omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if *username == "" {
		if *username, err = st.prompt("Username: "); err != nil {
			return err
		}
	}
	if *password == "" {
		if *password, err = st.promptPassword("Password: "); err != nil {
			return err
		}
	}

	user, err := a.deps.Session.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(st.stdout, "Logged in as %s\n", displayName(user))
	return nil
}

func (a *App) logout(ctx context.Context, st *streams, _ []string) error {
	if err := a.deps.Session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(st.stdout, "Logged out")
	return nil
}

func (a *App) register(ctx context.Context, st *streams, args []string) error {
	fs := newFlags("register", st)
	var form service.RegistrationForm
	fs.StringVar(&form.Username, "u", "", "username")
	fs.StringVar(&form.Email, "email", "", "email")
	fs.StringVar(&form.FullName, "name", "", "full name")
	fs.StringVar(&form.Password, "p", "", "password (prompted if omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if form.Password == "" {
		var err error
		if form.Password, err = st.promptPassword("Password: "); err != nil {
			return err
		}
		if form.ConfirmPassword, err = st.promptPassword("Confirm password: "); err != nil {
			return err
		}
	} else {
		form.ConfirmPassword = form.Password
	}

	user, err := a.deps.Session.Register(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintf(st.stdout, "Registered %s, now run `fintrack login`\n", user.Username)
	return nil
}

func (a *App) forgot(ctx context.Context, st *streams, args []string) error {
	fs := newFlags("forgot", st)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	msg, err := a.deps.Session.RequestPasswordReset(ctx, *email)
	if err != nil {
		return err
	}
	fmt.Fprintln(st.stdout, msg.Message)
	return nil
}

func (a *App) whoami(ctx context.Context, st *streams, _ []string) error {
	if err := requireSession(a.deps.Session); err != nil {
		return err
	}
	if a.deps.Session.CurrentUser() != nil {
		if _, err := a.deps.Session.RefreshUser(ctx); err != nil {
			fmt.Fprintln(st.stderr, "could not refresh profile, showing stored copy")
			report(st.stderr, err)
		}
	}
	if u := a.deps.Session.CurrentUser(); u != nil {
		fmt.Fprintf(st.stdout, "%s (id %d)\n", displayName(u), u.ID)
		if u.Email != "" {
			fmt.Fprintf(st.stdout, "email: %s\n", u.Email)
		}
	}

	info, err := a.deps.Session.TokenInfo()
	if err != nil {
		return err
	}
	switch {
	case info.Opaque:
		fmt.Fprintln(st.stdout, "token: opaque")
	case info.ExpiresAt.IsZero():
		fmt.Fprintln(st.stdout, "token: no expiry")
	case info.Expired:
		fmt.Fprintf(st.stdout, "token: expired at %s\n", info.ExpiresAt.Local().Format("02/01/2006 15:04:05"))
	default:
		fmt.Fprintf(st.stdout, "token: valid until %s\n", info.ExpiresAt.Local().Format("02/01/2006 15:04:05"))
	}
	return nil
}

func (a *App) password(ctx context.Context, st *streams, _ []string) error {
	if err := requireSession(a.deps.Session); err != nil {
		return err
	}
	var form service.PasswordForm
	var err error
	if form.CurrentPassword, err = st.promptPassword("Current password: "); err != nil {
		return err
	}
	if form.NewPassword, err = st.promptPassword("New password: "); err != nil {
		return err
	}
	if form.ConfirmPassword, err = st.promptPassword("Confirm new password: "); err != nil {
		return err
	}

	msg, err := a.deps.Session.ChangePassword(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintln(st.stdout, nonEmpty(msg.Message, "Password changed"))
	return nil
}

func (a *App) profile(ctx context.Context, st *streams, args []string) error {
	fs := newFlags("profile", st)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireSession(a.deps.Session); err != nil {
		return err
	}

	current := a.deps.Session.CurrentUser()
	if *name == "" && *email == "" {
		if current == nil {
			return &domain.ErrNoSession{}
		}
		fmt.Fprintf(st.stdout, "username: %s\nname: %s\nemail: %s\n", current.Username, current.FullName, current.Email)
		return nil
	}

	update := domain.ProfileUpdate{FullName: *name, Email: *email}
	if current != nil {
		update.FullName = nonEmpty(update.FullName, current.FullName)
		update.Email = nonEmpty(update.Email, current.Email)
	}
	user, err := a.deps.Session.UpdateProfile(ctx, update)
	if err != nil {
		return err
	}
	fmt.Fprintf(st.stdout, "Profile updated: %s <%s>\n", displayName(user), user.Email)
	return nil
}

func (a *App) health(ctx context.Context, st *streams, _ []string) error {
	var h *domain.HealthStatus
	err := a.read(ctx, func() error {
		var err error
		h, err = a.deps.API.Health(ctx)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(st.stdout, "%s: %s\n", nonEmpty(h.Status, "unknown"), h.Message)
	return nil
}

func displayName(u *domain.User) string {
	if strings.TrimSpace(u.FullName) != "" {
		return u.FullName
	}
	return u.Username
}

func nonEmpty(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

