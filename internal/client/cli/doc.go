// Package cli provides the interactive catalog command-line client.
//
// It is a thin presentation layer over services.Catalog: it reads commands
// and form fields from the terminal, calls queries and mutations, and prints
// their results. Notifications are printed by whatever notify.Notifier the
// catalog was built with.
//
// Key features:
//   - Login / Logout / Whoami
//   - List / Show products
//   - Add / Edit / Delete products with per-field validation messages
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
