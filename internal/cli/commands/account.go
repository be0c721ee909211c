package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"Stash/internal/cli/api"
	"Stash/internal/config"
)

type registerCmd struct{}

func (registerCmd) Name() string        { return "register" }
func (registerCmd) Description() string { return "Create an account and store the auth token" }
func (registerCmd) Usage() string       { return "register <name> <email> <password>" }

func (registerCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 3 {
		return ErrUsage
	}
	var data tokenData
	_, err := anonClient(cfg).Do(ctx, http.MethodPost, "/api/user/register", map[string]string{
		"name": args[0], "email": args[1], "password": args[2],
	}, &data)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
			return errors.New("email already registered")
		}
		return err
	}
	if err := tokenFile(cfg).Save(data.Token); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}
	fmt.Fprintf(Out, "Registered as %s <%s>\n", data.User.Name, data.User.Email)
	return nil
}

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Login and store the auth token" }
func (loginCmd) Usage() string       { return "login <email> <password>" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	var data tokenData
	_, err := anonClient(cfg).Do(ctx, http.MethodPost, "/api/user/login", map[string]string{
		"email": args[0], "password": args[1],
	}, &data)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return errors.New("invalid email or password")
		}
		return err
	}
	if err := tokenFile(cfg).Save(data.Token); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}
	fmt.Fprintln(Out, "Logged in successfully")
	return nil
}

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Description() string { return "Forget the stored auth token" }
func (logoutCmd) Usage() string       { return "logout" }

func (logoutCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	if err := tokenFile(cfg).Clear(); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Logged out")
	return nil
}

func init() {
	RegisterCmd(groupAccount, registerCmd{})
	RegisterCmd(groupAccount, loginCmd{})
	RegisterCmd(groupAccount, logoutCmd{})
}
