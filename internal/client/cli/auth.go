package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/catalogkeeper/internal/client/validation"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and runs the login mutation. The password
// buffer is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer clear(password)

	in := validation.LoginInput{Username: userName, Password: string(password)}
	if _, err := a.catalog.Auth.LoginMutation().Mutate(ctx, in); err != nil {
		return a.report(ctx, err)
	}
	return nil
}

// Logout forgets the stored tokens and every cached response.
func (a *App) Logout(ctx context.Context) error {
	if err := a.catalog.Auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// WhoAmI asks the API for the current user.
func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.catalog.Auth.Session().Fetch(ctx)
	if err != nil {
		return err
	}
	if !u.Authenticated || u.User == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	fmt.Fprintf(a.out, "%s (%s %s) <%s>\n", u.User.Username, u.User.FirstName, u.User.LastName, u.User.Email)
	return nil
}
